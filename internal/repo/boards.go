package repo

import (
	"context"
	"time"

	"moodboard/internal/model"
	"moodboard/internal/store"
)

type BoardPatch struct {
	Name *string
	// Thumbnail replaces the board thumbnail. A pointer to "" clears it.
	Thumbnail *string
}

func (r *Repository) CreateBoard(ctx context.Context, name string) (model.Board, error) {
	name, err := model.ValidateName("board name", name)
	if err != nil {
		return model.Board{}, err
	}
	now := r.now()
	b := model.Board{
		ID:        r.newID("board"),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.put(ctx, store.Boards, b.ID, nil, b); err != nil {
		return model.Board{}, err
	}
	return b, nil
}

func (r *Repository) Board(ctx context.Context, id string) (model.Board, error) {
	return get[model.Board](ctx, r.b, store.Boards, "board", id)
}

func (r *Repository) Boards(ctx context.Context) ([]model.Board, error) {
	rows, err := r.b.All(ctx, store.Boards)
	if err != nil {
		return nil, err
	}
	out, err := decodeRows[model.Board](store.Boards, rows)
	if err != nil {
		return nil, err
	}
	byCreated(out, func(b model.Board) time.Time { return b.CreatedAt }, func(b model.Board) string { return b.ID })
	return out, nil
}

func (r *Repository) UpdateBoard(ctx context.Context, id string, p BoardPatch) (model.Board, error) {
	b, err := r.Board(ctx, id)
	if err != nil {
		return model.Board{}, err
	}
	if p.Name != nil {
		name, err := model.ValidateName("board name", *p.Name)
		if err != nil {
			return model.Board{}, err
		}
		b.Name = name
	}
	if p.Thumbnail != nil {
		if *p.Thumbnail == "" {
			b.Thumbnail = nil
		} else {
			t := *p.Thumbnail
			b.Thumbnail = &t
		}
	}
	b.UpdatedAt = model.Touch(b.CreatedAt, r.now())
	if err := r.put(ctx, store.Boards, b.ID, nil, b); err != nil {
		return model.Board{}, err
	}
	return b, nil
}

// DeleteBoard removes every item of every section, then each section, then the
// board. The first failure stops the cascade; rows already deleted stay deleted
// and the remainder can be cleaned up with store.Doctor.
func (r *Repository) DeleteBoard(ctx context.Context, id string) error {
	if _, err := r.Board(ctx, id); err != nil {
		return err
	}
	sections, err := r.SectionsOf(ctx, id)
	if err != nil {
		return err
	}
	for _, s := range sections {
		if err := r.deleteSectionCascade(ctx, s.ID); err != nil {
			return err
		}
	}
	return r.b.Delete(ctx, store.Boards, id)
}
