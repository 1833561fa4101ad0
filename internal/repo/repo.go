// Package repo is the entity repository: CRUD over the persistent store with
// timestamp maintenance and child-first cascade deletes.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"moodboard/internal/store"

	"github.com/google/uuid"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

type Repository struct {
	b     store.Backend
	now   func() time.Time
	newID func(prefix string) string
}

type Option func(*Repository)

// WithClock overrides time.Now (UTC) for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func(prefix string) string) Option {
	return func(r *Repository) { r.newID = newID }
}

func New(b store.Backend, opts ...Option) *Repository {
	r := &Repository{
		b:     b,
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NewID returns prefix-<uuid v4>.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func (r *Repository) Backend() store.Backend { return r.b }

func (r *Repository) put(ctx context.Context, c store.Collection, id string, index map[string]string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", c, id, err)
	}
	return r.b.Put(ctx, c, store.Row{ID: id, Index: index, JSON: raw})
}

func get[T any](ctx context.Context, b store.Backend, c store.Collection, kind, id string) (T, error) {
	var v T
	row, ok, err := b.Get(ctx, c, id)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, NotFoundError{Kind: kind, ID: id}
	}
	if err := json.Unmarshal(row.JSON, &v); err != nil {
		return v, fmt.Errorf("decode %s %s: %w", c, id, err)
	}
	return v, nil
}

func decodeRows[T any](c store.Collection, rows []store.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal(row.JSON, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", c, row.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// byCreated sorts by createdAt ascending, ties by id, for a deterministic order.
func byCreated[T any](xs []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(xs, func(i, j int) bool {
		a, b := created(xs[i]), created(xs[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return id(xs[i]) < id(xs[j])
	})
}
