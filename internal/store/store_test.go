package store

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type namedBackend struct {
	name string
	b    Backend
}

func testBackends(t *testing.T) []namedBackend {
	t.Helper()
	ctx := context.Background()

	sq, err := OpenSQLite(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	rd, err := NewRedis(client, "test")
	if err != nil {
		t.Fatalf("wrap redis: %v", err)
	}

	return []namedBackend{
		{name: "memory", b: NewMemory()},
		{name: "sqlite", b: sq},
		{name: "redis", b: rd},
	}
}

func sectionRow(id, boardID string) Row {
	return Row{ID: id, Index: map[string]string{IndexBoardID: boardID}, JSON: []byte(`{"id":"` + id + `"}`)}
}

func TestBackend_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for _, nb := range testBackends(t) {
		t.Run(nb.name, func(t *testing.T) {
			b := nb.b
			if err := b.Put(ctx, Boards, Row{ID: "board-1", JSON: []byte(`{"name":"Trips"}`)}); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, ok, err := b.Get(ctx, Boards, "board-1")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if string(got.JSON) != `{"name":"Trips"}` {
				t.Fatalf("unexpected json: %s", got.JSON)
			}

			// Overwrite.
			if err := b.Put(ctx, Boards, Row{ID: "board-1", JSON: []byte(`{"name":"Trips 2"}`)}); err != nil {
				t.Fatalf("put overwrite: %v", err)
			}
			got, _, _ = b.Get(ctx, Boards, "board-1")
			if string(got.JSON) != `{"name":"Trips 2"}` {
				t.Fatalf("expected overwrite, got %s", got.JSON)
			}

			if err := b.Delete(ctx, Boards, "board-1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, err := b.Get(ctx, Boards, "board-1"); err != nil || ok {
				t.Fatalf("expected absent after delete: ok=%v err=%v", ok, err)
			}
			if err := b.Delete(ctx, Boards, "board-1"); err != nil {
				t.Fatalf("delete of missing id should be a no-op: %v", err)
			}
		})
	}
}

func TestBackend_QueryByIndex(t *testing.T) {
	ctx := context.Background()
	for _, nb := range testBackends(t) {
		t.Run(nb.name, func(t *testing.T) {
			b := nb.b
			for _, r := range []Row{
				sectionRow("section-b", "board-1"),
				sectionRow("section-a", "board-1"),
				sectionRow("section-c", "board-2"),
			} {
				if err := b.Put(ctx, Sections, r); err != nil {
					t.Fatalf("put %s: %v", r.ID, err)
				}
			}

			rows, err := b.QueryByIndex(ctx, Sections, IndexBoardID, "board-1")
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			if len(rows) != 2 || rows[0].ID != "section-a" || rows[1].ID != "section-b" {
				t.Fatalf("unexpected rows: %+v", rows)
			}
			if rows[0].Index[IndexBoardID] != "board-1" {
				t.Fatalf("expected index value on row, got %+v", rows[0].Index)
			}

			// Re-parenting a row moves it between index buckets.
			if err := b.Put(ctx, Sections, sectionRow("section-a", "board-2")); err != nil {
				t.Fatalf("re-put: %v", err)
			}
			rows, _ = b.QueryByIndex(ctx, Sections, IndexBoardID, "board-1")
			if len(rows) != 1 || rows[0].ID != "section-b" {
				t.Fatalf("expected only section-b under board-1, got %+v", rows)
			}

			if err := b.Delete(ctx, Sections, "section-c"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			rows, _ = b.QueryByIndex(ctx, Sections, IndexBoardID, "board-2")
			if len(rows) != 1 || rows[0].ID != "section-a" {
				t.Fatalf("expected only section-a under board-2, got %+v", rows)
			}

			none, err := b.QueryByIndex(ctx, Sections, IndexBoardID, "board-404")
			if err != nil || len(none) != 0 {
				t.Fatalf("expected empty result, got %+v err=%v", none, err)
			}

			all, err := b.All(ctx, Sections)
			if err != nil || len(all) != 2 {
				t.Fatalf("expected 2 rows in All, got %d err=%v", len(all), err)
			}
		})
	}
}

func TestBackend_UnknownIndexIsStorageError(t *testing.T) {
	ctx := context.Background()
	for _, nb := range testBackends(t) {
		t.Run(nb.name, func(t *testing.T) {
			_, err := nb.b.QueryByIndex(ctx, Items, IndexBoardID, "x")
			var se *StorageError
			if !errors.As(err, &se) {
				t.Fatalf("expected StorageError, got %v", err)
			}
		})
	}
}

func TestBackend_ClosedIsUnavailable(t *testing.T) {
	ctx := context.Background()
	for _, nb := range testBackends(t) {
		t.Run(nb.name, func(t *testing.T) {
			if err := nb.b.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			err := nb.b.Put(ctx, Boards, Row{ID: "board-1", JSON: []byte(`{}`)})
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Put(ctx, Items, Row{ID: "item-1", Index: map[string]string{IndexSectionID: "section-1"}, JSON: []byte(`{}`)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	rows, err := s2.QueryByIndex(ctx, Items, IndexSectionID, "section-1")
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected persisted item, got %+v err=%v", rows, err)
	}
}

func TestNewRedis_NilClient(t *testing.T) {
	r, err := NewRedis(nil, "test")
	if r != nil {
		t.Fatalf("expected no backend; got %#v", r)
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError; got %v", err)
	}
}
