package repo

import (
	"context"
	"time"

	"moodboard/internal/model"
	"moodboard/internal/store"
)

type SectionPatch struct {
	Title    *string
	Position *model.Point
}

func (r *Repository) CreateSection(ctx context.Context, boardID, title string, pos model.Point) (model.Section, error) {
	title, err := model.ValidateName("section title", title)
	if err != nil {
		return model.Section{}, err
	}
	if _, err := r.Board(ctx, boardID); err != nil {
		return model.Section{}, err
	}
	now := r.now()
	s := model.Section{
		ID:        r.newID("section"),
		BoardID:   boardID,
		Title:     title,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.putSection(ctx, s); err != nil {
		return model.Section{}, err
	}
	return s, nil
}

func (r *Repository) putSection(ctx context.Context, s model.Section) error {
	return r.put(ctx, store.Sections, s.ID, map[string]string{store.IndexBoardID: s.BoardID}, s)
}

func (r *Repository) Section(ctx context.Context, id string) (model.Section, error) {
	return get[model.Section](ctx, r.b, store.Sections, "section", id)
}

func (r *Repository) SectionsOf(ctx context.Context, boardID string) ([]model.Section, error) {
	rows, err := r.b.QueryByIndex(ctx, store.Sections, store.IndexBoardID, boardID)
	if err != nil {
		return nil, err
	}
	out, err := decodeRows[model.Section](store.Sections, rows)
	if err != nil {
		return nil, err
	}
	byCreated(out, func(s model.Section) time.Time { return s.CreatedAt }, func(s model.Section) string { return s.ID })
	return out, nil
}

func (r *Repository) UpdateSection(ctx context.Context, id string, p SectionPatch) (model.Section, error) {
	s, err := r.Section(ctx, id)
	if err != nil {
		return model.Section{}, err
	}
	if p.Title != nil {
		title, err := model.ValidateName("section title", *p.Title)
		if err != nil {
			return model.Section{}, err
		}
		s.Title = title
	}
	if p.Position != nil {
		s.Position = *p.Position
	}
	s.UpdatedAt = model.Touch(s.CreatedAt, r.now())
	if err := r.putSection(ctx, s); err != nil {
		return model.Section{}, err
	}
	return s, nil
}

// DeleteSection removes the section's items, then the section.
func (r *Repository) DeleteSection(ctx context.Context, id string) error {
	if _, err := r.Section(ctx, id); err != nil {
		return err
	}
	return r.deleteSectionCascade(ctx, id)
}

func (r *Repository) deleteSectionCascade(ctx context.Context, id string) error {
	rows, err := r.b.QueryByIndex(ctx, store.Items, store.IndexSectionID, id)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.b.Delete(ctx, store.Items, row.ID); err != nil {
			return err
		}
	}
	return r.b.Delete(ctx, store.Sections, id)
}
