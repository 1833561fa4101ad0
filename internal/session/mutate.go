package session

import (
	"context"

	"moodboard/internal/layout"
	"moodboard/internal/model"
	"moodboard/internal/repo"
)

func (s *Session) RenameBoard(ctx context.Context, name string) (model.Board, error) {
	if err := s.checkOpen(); err != nil {
		return model.Board{}, err
	}
	b, err := s.repo.UpdateBoard(ctx, s.BoardID(), repo.BoardPatch{Name: &name})
	if err != nil {
		return model.Board{}, s.fail("rename board", err)
	}
	s.apply(func(v *View) { v.Board = b })
	return b, nil
}

// AddSection places a new section at the grid slot for the current section
// count. Slots freed by deletions are not reused; concurrent adds get
// distinct slots.
func (s *Session) AddSection(ctx context.Context, title string) (model.Section, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Section{}, ErrClosed
	}
	boardID := s.view.Board.ID
	pos := layout.NextSectionPosition(len(s.view.Sections) + s.pendingSections)
	s.pendingSections++
	s.mu.Unlock()

	sec, err := s.repo.CreateSection(ctx, boardID, title, pos)

	s.mu.Lock()
	s.pendingSections--
	if err == nil && !s.closed {
		s.view.Sections = append(s.view.Sections, newSectionView(sec, nil))
	}
	s.mu.Unlock()
	if err != nil {
		return model.Section{}, s.fail("add section", err)
	}
	s.log.WithField("section", sec.ID).Debug("section added")
	return sec, nil
}

func (s *Session) sectionExists(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.view.SectionIndex(id) < 0 {
		return repo.NotFoundError{Kind: "section", ID: id}
	}
	return nil
}

func (s *Session) updateSection(ctx context.Context, op, id string, p repo.SectionPatch) (model.Section, error) {
	if err := s.sectionExists(id); err != nil {
		return model.Section{}, s.fail(op, err)
	}
	sec, err := s.repo.UpdateSection(ctx, id, p)
	if err != nil {
		return model.Section{}, s.fail(op, err)
	}
	s.apply(func(v *View) {
		if i := v.SectionIndex(id); i >= 0 {
			v.Sections[i].Section = sec
		}
	})
	return sec, nil
}

func (s *Session) MoveSection(ctx context.Context, id string, pos model.Point) (model.Section, error) {
	return s.updateSection(ctx, "move section", id, repo.SectionPatch{Position: &pos})
}

// NudgeSection moves a section by d from its current mirrored position.
// Nudges run one at a time, so rapid repeats accumulate.
func (s *Session) NudgeSection(ctx context.Context, id string, d model.Point) (model.Section, error) {
	s.nudgeMu.Lock()
	defer s.nudgeMu.Unlock()
	s.mu.Lock()
	i := s.view.SectionIndex(id)
	var pos model.Point
	if i >= 0 {
		pos = s.view.Sections[i].Section.Position
	}
	s.mu.Unlock()
	if i < 0 {
		return model.Section{}, s.fail("move section", repo.NotFoundError{Kind: "section", ID: id})
	}
	pos = model.Point{X: pos.X + d.X, Y: pos.Y + d.Y}
	return s.updateSection(ctx, "move section", id, repo.SectionPatch{Position: &pos})
}

func (s *Session) RenameSection(ctx context.Context, id, title string) (model.Section, error) {
	return s.updateSection(ctx, "rename section", id, repo.SectionPatch{Title: &title})
}

// DeleteSection removes the section and its items. Other sections keep
// their positions.
func (s *Session) DeleteSection(ctx context.Context, id string) error {
	if err := s.sectionExists(id); err != nil {
		return s.fail("delete section", err)
	}
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		return s.fail("delete section", err)
	}
	s.apply(func(v *View) {
		if i := v.SectionIndex(id); i >= 0 {
			v.Sections = append(v.Sections[:i], v.Sections[i+1:]...)
		}
	})
	return nil
}

// AddItem appends an item at the section's next packed slot. When an item
// already stores that position (a delete shifted the packing), the next free
// slot is used so stored positions never collide.
func (s *Session) AddItem(ctx context.Context, sectionID string, c model.Content) (model.Item, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Item{}, ErrClosed
	}
	i := s.view.SectionIndex(sectionID)
	if i < 0 {
		s.mu.Unlock()
		return model.Item{}, s.fail("add item", repo.NotFoundError{Kind: "section", ID: sectionID})
	}
	key := s.freeSlotLocked(sectionID, s.view.Sections[i].Items)
	s.mu.Unlock()

	it, err := s.repo.CreateItem(ctx, sectionID, c, key.at)

	s.mu.Lock()
	delete(s.pendingSlots, key)
	if err == nil && !s.closed {
		if i := s.view.SectionIndex(sectionID); i >= 0 {
			sv := &s.view.Sections[i]
			sv.Items = append(sv.Items, it)
			sv.repack()
		}
	}
	s.mu.Unlock()
	if err != nil {
		return model.Item{}, s.fail("add item", err)
	}
	return it, nil
}

// freeSlotLocked reserves the first packed slot, starting at the next one,
// that no stored or in-flight item occupies. Callers hold s.mu.
func (s *Session) freeSlotLocked(sectionID string, items []model.Item) slotKey {
	taken := make(map[model.Point]bool, len(items))
	for _, it := range items {
		taken[it.Position] = true
	}
	if s.pendingSlots == nil {
		s.pendingSlots = map[slotKey]bool{}
	}
	for n := len(items); ; n++ {
		key := slotKey{section: sectionID, at: layout.NextSlot(n)}
		if !taken[key.at] && !s.pendingSlots[key] {
			s.pendingSlots[key] = true
			return key
		}
	}
}

func (s *Session) itemExists(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if i, _ := s.view.ItemIndex(id); i < 0 {
		return repo.NotFoundError{Kind: "item", ID: id}
	}
	return nil
}

// MoveItem stores a new section-local position, clamped to non-negative.
// Display order stays the packed layout.
func (s *Session) MoveItem(ctx context.Context, id string, pos model.Point) (model.Item, error) {
	if err := s.itemExists(id); err != nil {
		return model.Item{}, s.fail("move item", err)
	}
	pos = model.ClampLocal(pos)
	it, err := s.repo.UpdateItem(ctx, id, repo.ItemPatch{Position: &pos})
	if err != nil {
		return model.Item{}, s.fail("move item", err)
	}
	s.apply(func(v *View) {
		if i, j := v.ItemIndex(id); i >= 0 {
			v.Sections[i].Items[j] = it
		}
	})
	return it, nil
}

func (s *Session) DeleteItem(ctx context.Context, id string) error {
	if err := s.itemExists(id); err != nil {
		return s.fail("delete item", err)
	}
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return s.fail("delete item", err)
	}
	s.apply(func(v *View) {
		if i, j := v.ItemIndex(id); i >= 0 {
			sv := &v.Sections[i]
			sv.Items = append(sv.Items[:j], sv.Items[j+1:]...)
			sv.repack()
		}
	})
	return nil
}
