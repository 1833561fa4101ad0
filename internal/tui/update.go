package tui

import (
	"strings"

	"moodboard/internal/model"
	"moodboard/internal/render"

	tea "github.com/charmbracelet/bubbletea"
)

func (m canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-4, 10)
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.showMinibuffer(msg.err.Error())
			return m, nil
		}
		if msg.sel != (render.Selection{}) {
			m.sel = msg.sel
		}
		m.normalizeSelection()
		if msg.note != "" {
			m.showMinibuffer(msg.note)
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode != modeCanvas {
			return m, nil
		}
		return m.updateMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeDetail, modeHelp:
			switch msg.String() {
			case "esc", "enter", "q", "?":
				m.mode = modeCanvas
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		return m.updateCanvasKey(msg)
	}
	return m, nil
}

func (m canvasModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := cellToScreen(msg.X, msg.Y)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.vp.ZoomAt(1, p)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.vp.ZoomAt(-1, p)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.sel = m.hitTest(p)
		m.dragFrom = &p
	case tea.MouseActionMotion:
		if m.dragFrom == nil {
			return m, nil
		}
		m.vp.Pan(p.X-m.dragFrom.X, p.Y-m.dragFrom.Y)
		m.dragFrom = &p
	case tea.MouseActionRelease:
		m.dragFrom = nil
	}
	return m, nil
}

func (m canvasModel) updateCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.mode = modeHelp
	case "esc":
		m.sel = render.Selection{}
		m.minibufferText = ""
		m.s.ClearErrors()

	case "left", "h":
		m.vp.Pan(panStep, 0)
	case "right", "l":
		m.vp.Pan(-panStep, 0)
	case "up", "k":
		m.vp.Pan(0, panStep)
	case "down", "j":
		m.vp.Pan(0, -panStep)
	case "+", "=":
		m.vp.ZoomIn(m.center())
	case "-", "_":
		m.vp.ZoomOut(m.center())
	case "0":
		m.vp.Reset()

	case "tab":
		m.cycleSection(1)
	case "shift+tab":
		m.cycleSection(-1)
	case "]":
		m.cycleItem(1)
	case "[":
		m.cycleItem(-1)

	case "H":
		return m, m.nudgeSection(-nudgeStep, 0)
	case "L":
		return m, m.nudgeSection(nudgeStep, 0)
	case "K":
		return m, m.nudgeSection(0, -nudgeStep)
	case "J":
		return m, m.nudgeSection(0, nudgeStep)

	case "a":
		cmd := m.openInput(inputAddSection, "Section title", "")
		return m, cmd
	case "n":
		if m.sel.SectionID == "" {
			m.showMinibuffer("Select a section first (tab)")
			return m, nil
		}
		cmd := m.openInput(inputAddNote, "Note", "")
		return m, cmd
	case "i":
		if m.sel.SectionID == "" {
			m.showMinibuffer("Select a section first (tab)")
			return m, nil
		}
		cmd := m.openInput(inputAddLink, "https://", "")
		return m, cmd
	case "r":
		v := m.s.Snapshot()
		if i := v.SectionIndex(m.sel.SectionID); i >= 0 {
			cmd := m.openInput(inputRename, "Section title", v.Sections[i].Section.Title)
			return m, cmd
		}
		cmd := m.openInput(inputRename, "Board name", v.Board.Name)
		return m, cmd
	case "d", "delete":
		if m.sel.SectionID != "" {
			m.mode = modeConfirm
		}
	case "enter":
		m.openDetail()
	case "t":
		return m, m.captureThumbnail()
	case "ctrl+r":
		return m, m.reload()
	}
	return m, nil
}

func (m *canvasModel) cycleSection(step int) {
	v := m.s.Snapshot()
	n := len(v.Sections)
	if n == 0 {
		return
	}
	i := v.SectionIndex(m.sel.SectionID)
	if i < 0 {
		if step > 0 {
			i = 0
		} else {
			i = n - 1
		}
	} else {
		i = ((i+step)%n + n) % n
	}
	m.sel = render.Selection{SectionID: v.Sections[i].Section.ID}
}

func (m *canvasModel) cycleItem(step int) {
	v := m.s.Snapshot()
	si := v.SectionIndex(m.sel.SectionID)
	if si < 0 {
		m.cycleSection(1)
		si = v.SectionIndex(m.sel.SectionID)
		if si < 0 {
			return
		}
	}
	items := v.Sections[si].Items
	if len(items) == 0 {
		m.sel.ItemID = ""
		return
	}
	k := -1
	for j := range items {
		if items[j].ID == m.sel.ItemID {
			k = j
		}
	}
	if k < 0 {
		if step > 0 {
			k = 0
		} else {
			k = len(items) - 1
		}
	} else {
		k = ((k+step)%len(items) + len(items)) % len(items)
	}
	m.sel.ItemID = items[k].ID
}

func (m *canvasModel) openDetail() {
	v := m.s.Snapshot()
	si, k := v.ItemIndex(m.sel.ItemID)
	if si < 0 {
		return
	}
	m.detail = ItemMarkdown(v.Sections[si].Items[k], modalBodyWidth(m.width))
	m.mode = modeDetail
}

func (m *canvasModel) openInput(p inputPurpose, placeholder, value string) tea.Cmd {
	m.purpose = p
	m.mode = modeInput
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m canvasModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode = modeCanvas
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.mode = modeCanvas
		m.input.Blur()
		if value == "" {
			return m, nil
		}
		return m, m.submitInput(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m canvasModel) submitInput(value string) tea.Cmd {
	ctx, s, sel := m.ctx, m.s, m.sel
	switch m.purpose {
	case inputAddSection:
		return func() tea.Msg {
			sec, err := s.AddSection(ctx, value)
			return opDoneMsg{op: "add section", err: err, sel: render.Selection{SectionID: sec.ID}}
		}
	case inputAddNote:
		return func() tea.Msg {
			it, err := s.AddItem(ctx, sel.SectionID, model.TextContent{Body: value})
			return opDoneMsg{op: "add note", err: err, sel: render.Selection{SectionID: sel.SectionID, ItemID: it.ID}}
		}
	case inputAddLink:
		return func() tea.Msg {
			it, err := s.AddItem(ctx, sel.SectionID, model.LinkContent{URL: value})
			return opDoneMsg{op: "add link", err: err, sel: render.Selection{SectionID: sel.SectionID, ItemID: it.ID}}
		}
	case inputRename:
		if sel.SectionID != "" {
			return func() tea.Msg {
				_, err := s.RenameSection(ctx, sel.SectionID, value)
				return opDoneMsg{op: "rename section", err: err}
			}
		}
		return func() tea.Msg {
			_, err := s.RenameBoard(ctx, value)
			return opDoneMsg{op: "rename board", err: err}
		}
	}
	return nil
}

func (m canvasModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = modeCanvas
		ctx, s, sel := m.ctx, m.s, m.sel
		if sel.ItemID != "" {
			return m, func() tea.Msg {
				return opDoneMsg{op: "delete item", err: s.DeleteItem(ctx, sel.ItemID), note: "Item deleted"}
			}
		}
		return m, func() tea.Msg {
			return opDoneMsg{op: "delete section", err: s.DeleteSection(ctx, sel.SectionID), note: "Section deleted"}
		}
	case "n", "esc", "ctrl+g":
		m.mode = modeCanvas
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m canvasModel) nudgeSection(dx, dy float64) tea.Cmd {
	if m.sel.SectionID == "" {
		return nil
	}
	ctx, s, id := m.ctx, m.s, m.sel.SectionID
	return func() tea.Msg {
		_, err := s.NudgeSection(ctx, id, model.Point{X: dx, Y: dy})
		return opDoneMsg{op: "move section", err: err}
	}
}

func (m canvasModel) captureThumbnail() tea.Cmd {
	ctx, s, snap := m.ctx, m.s, m.snap
	return func() tea.Msg {
		_, err := s.CaptureThumbnail(ctx, snap)
		return opDoneMsg{op: "capture thumbnail", err: err, note: "Thumbnail saved"}
	}
}

func (m canvasModel) reload() tea.Cmd {
	ctx, s := m.ctx, m.s
	return func() tea.Msg {
		return opDoneMsg{op: "reload", err: s.Reload(ctx), note: "Reloaded"}
	}
}
