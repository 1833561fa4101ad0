package tui

import (
	"context"
	"fmt"
	"strings"

	"moodboard/internal/model"
	"moodboard/internal/render"
	"moodboard/internal/session"
	"moodboard/internal/viewport"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type canvasMode int

const (
	modeCanvas canvasMode = iota
	modeInput
	modeConfirm
	modeDetail
	modeHelp
)

type inputPurpose int

const (
	inputAddSection inputPurpose = iota
	inputAddNote
	inputAddLink
	inputRename
)

const (
	// panStep is the keyboard pan distance in screen pixels.
	panStep = 4 * render.CellW
	// nudgeStep moves the selected section, in board pixels.
	nudgeStep = 10
)

// opDoneMsg reports a finished session mutation.
type opDoneMsg struct {
	op  string
	err error
	// sel, when non-zero, becomes the new selection.
	sel render.Selection
	// note is shown in the minibuffer on success.
	note string
}

type canvasModel struct {
	ctx  context.Context
	s    *session.Session
	snap session.Snapshotter

	vp     viewport.Viewport
	width  int
	height int
	sel    render.Selection

	mode    canvasMode
	purpose inputPurpose
	input   textinput.Model
	detail  string

	minibufferText string
	dragFrom       *model.Point
}

func newCanvasModel(ctx context.Context, s *session.Session) canvasModel {
	in := textinput.New()
	in.CharLimit = 500
	in.Width = 48
	return canvasModel{
		ctx:    ctx,
		s:      s,
		snap:   render.Snapshotter{MaxSide: 2048},
		vp:     viewport.New(),
		width:  80,
		height: 24,
		input:  in,
	}
}

func (m canvasModel) Init() tea.Cmd {
	return nil
}

func (m canvasModel) canvasRows() int {
	return max(m.height-1, 1)
}

// center is the middle of the canvas in screen pixels.
func (m canvasModel) center() model.Point {
	return model.Point{
		X: float64(m.width*render.CellW) / 2,
		Y: float64(m.canvasRows()*render.CellH) / 2,
	}
}

func cellToScreen(x, y int) model.Point {
	return model.Point{X: float64(x*render.CellW) + render.CellW/2, Y: float64(y*render.CellH) + render.CellH/2}
}

// hitTest returns what is under a screen point: an item beats its section.
func (m canvasModel) hitTest(p model.Point) render.Selection {
	w := m.vp.ScreenToWorld(p)
	v := m.s.Snapshot()
	for i := len(v.Sections) - 1; i >= 0; i-- {
		sv := v.Sections[i]
		frame := sv.Rect()
		if w.X < frame.X || w.Y < frame.Y || w.X >= frame.X+frame.W || w.Y >= frame.Y+frame.H {
			continue
		}
		for k, it := range sv.Items {
			r := sv.ItemRect(k)
			if w.X >= r.X && w.Y >= r.Y && w.X < r.X+r.W && w.Y < r.Y+r.H {
				return render.Selection{SectionID: sv.Section.ID, ItemID: it.ID}
			}
		}
		return render.Selection{SectionID: sv.Section.ID}
	}
	return render.Selection{}
}

// normalizeSelection drops selections whose targets were deleted.
func (m *canvasModel) normalizeSelection() {
	v := m.s.Snapshot()
	if m.sel.ItemID != "" {
		if si, _ := v.ItemIndex(m.sel.ItemID); si < 0 {
			m.sel.ItemID = ""
		}
	}
	if m.sel.SectionID != "" && v.SectionIndex(m.sel.SectionID) < 0 {
		m.sel = render.Selection{}
	}
}

func (m *canvasModel) showMinibuffer(s string) {
	m.minibufferText = s
}

func (m canvasModel) View() string {
	switch m.mode {
	case modeDetail:
		return m.overlay(renderModalBox(m.width, "Item", m.detail+"\n\n"+styleMuted().Render("esc/enter: close")))
	case modeHelp:
		return m.overlay(renderModalBox(m.width, "Keys", helpText))
	case modeConfirm:
		return m.overlay(renderConfirmModal(m.width, "Delete", m.confirmBody()))
	}
	return m.renderCanvas() + "\n" + m.statusLine()
}

func (m canvasModel) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m canvasModel) renderCanvas() string {
	cells := render.NewCells(m.width, m.canvasRows())
	render.DrawBoard(cells, m.s.Snapshot(), m.vp, m.sel)
	return strings.Join(cells.Lines(func(st render.Style, s string) string {
		return roleStyle(st).Render(s)
	}), "\n")
}

func (m canvasModel) statusLine() string {
	if m.mode == modeInput {
		return renderInputLine(m.width, m.input.View())
	}
	v := m.s.Snapshot()
	left := fmt.Sprintf(" %s  %d%%  %d sections", v.Board.Name, m.vp.Percent(), len(v.Sections))
	var right string
	switch {
	case m.s.LastError() != nil:
		right = lipgloss.NewStyle().Foreground(colorError).Render(m.s.LastError().Error())
	case m.minibufferText != "":
		right = m.minibufferText
	default:
		right = styleMuted().Render("?: help")
	}
	line := lipgloss.NewStyle().Bold(true).Render(left) + "  " + right
	if xansi.StringWidth(line) > m.width {
		line = xansi.Truncate(line, m.width, "…")
	}
	return line
}

func (m canvasModel) confirmBody() string {
	v := m.s.Snapshot()
	if m.sel.ItemID != "" {
		return "Delete the selected item?"
	}
	if i := v.SectionIndex(m.sel.SectionID); i >= 0 {
		sv := v.Sections[i]
		return fmt.Sprintf("Delete section %q and its %d items?", sv.Section.Title, len(sv.Items))
	}
	return ""
}

const helpText = `arrows/hjkl   pan              + / -   zoom
mouse wheel   zoom at pointer  drag    pan
0             reset view       tab     next section
[ / ]         prev/next item   H/J/K/L move section
a             add section      n       add note
i             add link         r       rename section/board
d             delete           enter   item details
t             save thumbnail   ctrl+r  reload
esc           clear selection  q       quit`
