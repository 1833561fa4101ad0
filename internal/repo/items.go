package repo

import (
	"context"
	"time"

	"moodboard/internal/model"
	"moodboard/internal/store"
)

type ItemPatch struct {
	Content  model.Content
	Position *model.Point
}

func (r *Repository) CreateItem(ctx context.Context, sectionID string, c model.Content, pos model.Point) (model.Item, error) {
	c, err := model.NormalizeContent(c)
	if err != nil {
		return model.Item{}, err
	}
	if _, err := r.Section(ctx, sectionID); err != nil {
		return model.Item{}, err
	}
	now := r.now()
	it := model.Item{
		ID:        r.newID("item"),
		SectionID: sectionID,
		Content:   c,
		Position:  model.ClampLocal(pos),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.putItem(ctx, it); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *Repository) putItem(ctx context.Context, it model.Item) error {
	return r.put(ctx, store.Items, it.ID, map[string]string{store.IndexSectionID: it.SectionID}, it)
}

func (r *Repository) Item(ctx context.Context, id string) (model.Item, error) {
	return get[model.Item](ctx, r.b, store.Items, "item", id)
}

func (r *Repository) ItemsOf(ctx context.Context, sectionID string) ([]model.Item, error) {
	rows, err := r.b.QueryByIndex(ctx, store.Items, store.IndexSectionID, sectionID)
	if err != nil {
		return nil, err
	}
	out, err := decodeRows[model.Item](store.Items, rows)
	if err != nil {
		return nil, err
	}
	byCreated(out, func(it model.Item) time.Time { return it.CreatedAt }, func(it model.Item) string { return it.ID })
	return out, nil
}

func (r *Repository) UpdateItem(ctx context.Context, id string, p ItemPatch) (model.Item, error) {
	it, err := r.Item(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	if p.Content != nil {
		c, err := model.NormalizeContent(p.Content)
		if err != nil {
			return model.Item{}, err
		}
		it.Content = c
	}
	if p.Position != nil {
		it.Position = model.ClampLocal(*p.Position)
	}
	it.UpdatedAt = model.Touch(it.CreatedAt, r.now())
	if err := r.putItem(ctx, it); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	if _, err := r.Item(ctx, id); err != nil {
		return err
	}
	return r.b.Delete(ctx, store.Items, id)
}
