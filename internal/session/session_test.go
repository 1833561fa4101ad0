package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"reflect"
	"strings"
	"sync"
	"testing"

	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/pinterest"
	"moodboard/internal/repo"
	"moodboard/internal/store"
)

// flakyBackend fails writes (and optionally index queries or deletes) while
// enabled. With failDeletes set, the first deleteBudget deletes still succeed.
type flakyBackend struct {
	store.Backend
	mu           sync.Mutex
	failWrites   bool
	failQueries  bool
	failDeletes  bool
	deleteBudget int
}

func (f *flakyBackend) setDeletes(fail bool, budget int) {
	f.mu.Lock()
	f.failDeletes, f.deleteBudget = fail, budget
	f.mu.Unlock()
}

func (f *flakyBackend) Delete(ctx context.Context, c store.Collection, id string) error {
	f.mu.Lock()
	fail := f.failDeletes && f.deleteBudget <= 0
	if f.failDeletes && f.deleteBudget > 0 {
		f.deleteBudget--
	}
	f.mu.Unlock()
	if fail {
		return &store.StorageError{Op: "delete", Collection: c, ID: id, Err: errors.New("read-only")}
	}
	return f.Backend.Delete(ctx, c, id)
}

func (f *flakyBackend) set(writes, queries bool) {
	f.mu.Lock()
	f.failWrites, f.failQueries = writes, queries
	f.mu.Unlock()
}

func (f *flakyBackend) Put(ctx context.Context, c store.Collection, row store.Row) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return &store.StorageError{Op: "put", Collection: c, ID: row.ID, Err: errors.New("disk full")}
	}
	return f.Backend.Put(ctx, c, row)
}

func (f *flakyBackend) QueryByIndex(ctx context.Context, c store.Collection, field, value string) ([]store.Row, error) {
	f.mu.Lock()
	fail := f.failQueries
	f.mu.Unlock()
	if fail {
		return nil, &store.StorageError{Op: "query", Collection: c, Err: errors.New("io error")}
	}
	return f.Backend.QueryByIndex(ctx, c, field, value)
}

func newRepo(t *testing.T) (*repo.Repository, *flakyBackend) {
	t.Helper()
	fb := &flakyBackend{Backend: store.NewMemory()}
	t.Cleanup(func() { _ = fb.Close() })
	return repo.New(fb), fb
}

func openBoard(t *testing.T, r *repo.Repository, name string) *Session {
	t.Helper()
	ctx := context.Background()
	b, err := r.CreateBoard(ctx, name)
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	s, err := Open(ctx, r, b.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestTripsScenario_GridPlacementSurvivesDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")

	beach, err := s.AddSection(ctx, "Beach")
	if err != nil {
		t.Fatalf("add beach: %v", err)
	}
	if beach.Position != (model.Point{X: 0, Y: 0}) {
		t.Fatalf("beach at %+v", beach.Position)
	}
	second, err := s.AddSection(ctx, "Food")
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if second.Position != (model.Point{X: 430, Y: 0}) {
		t.Fatalf("second at %+v", second.Position)
	}
	hotel, err := s.AddSection(ctx, "Hotel")
	if err != nil {
		t.Fatalf("add hotel: %v", err)
	}
	if hotel.Position != (model.Point{X: 860, Y: 0}) {
		t.Fatalf("hotel at %+v", hotel.Position)
	}

	if err := s.DeleteSection(ctx, beach.ID); err != nil {
		t.Fatalf("delete beach: %v", err)
	}
	v := s.Snapshot()
	i := v.SectionIndex(hotel.ID)
	if i < 0 {
		t.Fatalf("hotel missing from mirror")
	}
	if v.Sections[i].Section.Position != (model.Point{X: 860, Y: 0}) {
		t.Fatalf("hotel moved to %+v", v.Sections[i].Section.Position)
	}
	stored, err := r.Section(ctx, hotel.ID)
	if err != nil {
		t.Fatalf("load hotel: %v", err)
	}
	if stored.Position != (model.Point{X: 860, Y: 0}) {
		t.Fatalf("stored hotel at %+v", stored.Position)
	}
}

func TestRenameSection_FailedPersistKeepsMirror(t *testing.T) {
	ctx := context.Background()
	r, fb := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, err := s.AddSection(ctx, "Beach")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	fb.set(true, false)
	_, err = s.RenameSection(ctx, sec.ID, "Coast")
	var se *store.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	v := s.Snapshot()
	if got := v.Sections[0].Section.Title; got != "Beach" {
		t.Fatalf("mirror title changed to %q", got)
	}
	if last := s.LastError(); last == nil || !strings.Contains(last.Error(), "rename section") {
		t.Fatalf("expected recorded rename error, got %v", last)
	}

	fb.set(false, false)
	if _, err := s.RenameSection(ctx, sec.ID, "Coast"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if got := s.Snapshot().Sections[0].Section.Title; got != "Coast" {
		t.Fatalf("expected Coast, got %q", got)
	}
}

func TestMutators_FailedPersistKeepsMirror(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		deletes bool
		run     func(ctx context.Context, s *Session, secID, itemID string) error
	}{
		{"add section", "add section", false, func(ctx context.Context, s *Session, _, _ string) error {
			_, err := s.AddSection(ctx, "Food")
			return err
		}},
		{"add item", "add item", false, func(ctx context.Context, s *Session, secID, _ string) error {
			_, err := s.AddItem(ctx, secID, model.TextContent{Body: "b"})
			return err
		}},
		{"move section", "move section", false, func(ctx context.Context, s *Session, secID, _ string) error {
			_, err := s.MoveSection(ctx, secID, model.Point{X: 900, Y: 900})
			return err
		}},
		{"move item", "move item", false, func(ctx context.Context, s *Session, _, itemID string) error {
			_, err := s.MoveItem(ctx, itemID, model.Point{X: 300, Y: 300})
			return err
		}},
		{"rename board", "rename board", false, func(ctx context.Context, s *Session, _, _ string) error {
			_, err := s.RenameBoard(ctx, "Elsewhere")
			return err
		}},
		{"delete section", "delete section", true, func(ctx context.Context, s *Session, secID, _ string) error {
			return s.DeleteSection(ctx, secID)
		}},
		{"delete item", "delete item", true, func(ctx context.Context, s *Session, _, itemID string) error {
			return s.DeleteItem(ctx, itemID)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			r, fb := newRepo(t)
			s := openBoard(t, r, "Trips")
			sec, err := s.AddSection(ctx, "Beach")
			if err != nil {
				t.Fatalf("add section: %v", err)
			}
			it, err := s.AddItem(ctx, sec.ID, model.TextContent{Body: "a"})
			if err != nil {
				t.Fatalf("add item: %v", err)
			}
			before := s.Snapshot()

			if tc.deletes {
				fb.setDeletes(true, 0)
			} else {
				fb.set(true, false)
			}
			err = tc.run(ctx, s, sec.ID, it.ID)
			var se *store.StorageError
			if !errors.As(err, &se) {
				t.Fatalf("expected StorageError, got %v", err)
			}
			if !reflect.DeepEqual(s.Snapshot(), before) {
				t.Fatalf("mirror changed after failed %s:\nbefore %+v\nafter  %+v", tc.op, before, s.Snapshot())
			}
			if last := s.LastError(); last == nil || !strings.HasPrefix(last.Error(), tc.op+":") {
				t.Fatalf("expected recorded %q error, got %v", tc.op, last)
			}
		})
	}
}

func TestDeleteSection_PartialCascadeKeepsMirror(t *testing.T) {
	ctx := context.Background()
	r, fb := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")
	for _, body := range []string{"a", "b", "c"} {
		if _, err := s.AddItem(ctx, sec.ID, model.TextContent{Body: body}); err != nil {
			t.Fatalf("add %s: %v", body, err)
		}
	}

	fb.setDeletes(true, 1)
	if err := s.DeleteSection(ctx, sec.ID); err == nil {
		t.Fatalf("expected cascade failure")
	}
	fb.setDeletes(false, 0)

	if n := len(s.Snapshot().Sections[0].Items); n != 3 {
		t.Fatalf("mirror must keep all items, got %d", n)
	}
	if _, err := r.Section(ctx, sec.ID); err != nil {
		t.Fatalf("section should survive a failed cascade: %v", err)
	}
	left, err := r.ItemsOf(ctx, sec.ID)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected one item deleted before the failure, %d left", len(left))
	}
	if last := s.LastError(); last == nil || !strings.Contains(last.Error(), "delete section") {
		t.Fatalf("expected recorded delete error, got %v", last)
	}

	if err := s.DeleteSection(ctx, sec.ID); err != nil {
		t.Fatalf("retry delete: %v", err)
	}
	if n := len(s.Snapshot().Sections); n != 0 {
		t.Fatalf("expected section gone after retry, got %d", n)
	}
}

func TestAddItem_StoredPositionsStayDistinctAfterDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")
	a, _ := s.AddItem(ctx, sec.ID, model.TextContent{Body: "a"})
	b, _ := s.AddItem(ctx, sec.ID, model.TextContent{Body: "b"})
	if err := s.DeleteItem(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c, err := s.AddItem(ctx, sec.ID, model.TextContent{Body: "c"})
	if err != nil {
		t.Fatalf("add c: %v", err)
	}
	if c.Position == b.Position {
		t.Fatalf("c stored on top of b at %+v", c.Position)
	}
	if c.Position != (model.Point{X: 10, Y: 190}) {
		t.Fatalf("expected next free slot (10, 190), got %+v", c.Position)
	}

	stored, err := r.ItemsOf(ctx, sec.ID)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	seen := map[model.Point]string{}
	for _, it := range stored {
		if prev, ok := seen[it.Position]; ok {
			t.Fatalf("%s and %s share %+v", prev, it.ID, it.Position)
		}
		seen[it.Position] = it.ID
	}
}

func TestConcurrentAdds_GetDistinctSlots(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")

	const n = 6
	var wg sync.WaitGroup
	secs := make([]model.Section, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sec, err := s.AddSection(ctx, "s")
			if err != nil {
				t.Errorf("add section: %v", err)
			}
			secs[i] = sec
		}(i)
	}
	wg.Wait()
	seen := map[model.Point]bool{}
	for _, sec := range secs {
		if seen[sec.Position] {
			t.Fatalf("two sections at %+v", sec.Position)
		}
		seen[sec.Position] = true
	}

	items := make([]model.Item, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			it, err := s.AddItem(ctx, secs[0].ID, model.TextContent{Body: "x"})
			if err != nil {
				t.Errorf("add item: %v", err)
			}
			items[i] = it
		}(i)
	}
	wg.Wait()
	seen = map[model.Point]bool{}
	for _, it := range items {
		if seen[it.Position] {
			t.Fatalf("two items at %+v", it.Position)
		}
		seen[it.Position] = true
	}
}

func TestAddItem_PacksAndMirrors(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")

	for i := 0; i < 5; i++ {
		it, err := s.AddItem(ctx, sec.ID, model.TextContent{Body: "note"})
		if err != nil {
			t.Fatalf("add item %d: %v", i, err)
		}
		v := s.Snapshot()
		sv := v.Sections[0]
		if sv.Layout.Slots[i] != it.Position {
			t.Fatalf("item %d stored at %+v, packed at %+v", i, it.Position, sv.Layout.Slots[i])
		}
	}
	v := s.Snapshot()
	if err := v.CheckLayout(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if h := v.Sections[0].Layout.Height; h != 460 {
		t.Fatalf("expected auto height 460, got %v", h)
	}

	if _, err := s.AddItem(ctx, sec.ID, model.LinkContent{URL: "not a url"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if n := len(s.Snapshot().Sections[0].Items); n != 5 {
		t.Fatalf("rejected item must not be mirrored, got %d items", n)
	}

	var nf repo.NotFoundError
	if _, err := s.AddItem(ctx, "section-nope", model.TextContent{Body: "x"}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMoveAndDeleteItem(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")
	a, _ := s.AddItem(ctx, sec.ID, model.TextContent{Body: "a"})
	b, _ := s.AddItem(ctx, sec.ID, model.TextContent{Body: "b"})

	moved, err := s.MoveItem(ctx, a.ID, model.Point{X: -40, Y: 75})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Position != (model.Point{X: 0, Y: 75}) {
		t.Fatalf("expected clamped position, got %+v", moved.Position)
	}

	if err := s.DeleteItem(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	sv := s.Snapshot().Sections[0]
	if len(sv.Items) != 1 || sv.Items[0].ID != b.ID {
		t.Fatalf("unexpected items %+v", sv.Items)
	}
	if len(sv.Layout.Slots) != 1 {
		t.Fatalf("expected repacked layout, got %d slots", len(sv.Layout.Slots))
	}
	if err := s.DeleteItem(ctx, a.ID); err == nil {
		t.Fatalf("expected error deleting twice")
	}
}

func TestMoveSection_Persists(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")

	if _, err := s.MoveSection(ctx, sec.ID, model.Point{X: -25, Y: 140}); err != nil {
		t.Fatalf("move: %v", err)
	}
	re, err := Open(ctx, r, s.BoardID())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := re.Snapshot().Sections[0].Section.Position; got != (model.Point{X: -25, Y: 140}) {
		t.Fatalf("unexpected stored position %+v", got)
	}
}

func TestOpen_LoadErrors(t *testing.T) {
	ctx := context.Background()
	r, fb := newRepo(t)

	_, err := Open(ctx, r, "board-missing")
	var le LoadError
	var nf repo.NotFoundError
	if !errors.As(err, &le) || !errors.As(err, &nf) {
		t.Fatalf("expected LoadError wrapping NotFoundError, got %v", err)
	}

	s := openBoard(t, r, "Trips")
	if _, err := s.AddSection(ctx, "Beach"); err != nil {
		t.Fatalf("add: %v", err)
	}
	fb.set(false, true)
	_, err = Open(ctx, r, s.BoardID())
	var se *store.StorageError
	if !errors.As(err, &le) || !errors.As(err, &se) {
		t.Fatalf("expected LoadError wrapping StorageError, got %v", err)
	}

	fb.set(false, false)
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Open(cctx, r, s.BoardID()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to discard results, got %v", err)
	}
}

func TestOpen_LoadsItemsInOrder(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	for _, title := range []string{"A", "B", "C", "D"} {
		sec, err := s.AddSection(ctx, title)
		if err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
		for i := 0; i < 3; i++ {
			if _, err := s.AddItem(ctx, sec.ID, model.TextContent{Body: title}); err != nil {
				t.Fatalf("add item: %v", err)
			}
		}
	}
	want := s.Snapshot()

	re, err := Open(ctx, r, s.BoardID())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := re.Snapshot()
	if len(got.Sections) != len(want.Sections) {
		t.Fatalf("expected %d sections, got %d", len(want.Sections), len(got.Sections))
	}
	for i := range want.Sections {
		if got.Sections[i].Section.ID != want.Sections[i].Section.ID {
			t.Fatalf("section %d out of order", i)
		}
		for j := range want.Sections[i].Items {
			if got.Sections[i].Items[j].ID != want.Sections[i].Items[j].ID {
				t.Fatalf("section %d item %d out of order", i, j)
			}
		}
	}
}

func TestClosedSessionDiscardsResults(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	s.Close()
	if _, err := s.AddSection(ctx, "Beach"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if n := len(s.Snapshot().Sections); n != 0 {
		t.Fatalf("expected no sections, got %d", n)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Beach")
	_, _ = s.AddItem(ctx, sec.ID, model.TextContent{Body: "x"})

	v := s.Snapshot()
	v.Sections[0].Section.Title = "changed"
	v.Sections[0].Items[0].ID = "changed"
	v.Sections[0].Layout.Slots[0].X = 999

	again := s.Snapshot()
	if again.Sections[0].Section.Title != "Beach" || again.Sections[0].Items[0].ID == "changed" || again.Sections[0].Layout.Slots[0].X == 999 {
		t.Fatalf("snapshot shares state with the mirror")
	}
}

type pngSnapshotter struct{}

func (pngSnapshotter) Snapshot(v View) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 800, 600))); err != nil {
		return "", err
	}
	return media.EncodeDataURL("image/png", buf.Bytes()), nil
}

func TestCaptureThumbnail(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")

	thumb, err := s.CaptureThumbnail(ctx, pngSnapshotter{})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	size, err := media.DecodeImage(thumb)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if size != (model.Size{W: 200, H: 150}) {
		t.Fatalf("unexpected thumbnail size %+v", size)
	}
	b, _ := r.Board(ctx, s.BoardID())
	if b.Thumbnail == nil || *b.Thumbnail != thumb {
		t.Fatalf("thumbnail not persisted")
	}
	if mt := s.Snapshot().Board.Thumbnail; mt == nil || *mt != thumb {
		t.Fatalf("thumbnail not mirrored")
	}
}

type fakePinterest struct{}

func (fakePinterest) Authenticate(ctx context.Context) pinterest.Result {
	return pinterest.Result{Success: true}
}

func (fakePinterest) Boards(ctx context.Context) pinterest.BoardsResult {
	return pinterest.BoardsResult{Result: pinterest.Result{Success: true}, Boards: []pinterest.Board{{ID: "p1", Name: "Summer"}}}
}

func (fakePinterest) Pins(ctx context.Context, accessToken, boardID string) pinterest.PinsResult {
	return pinterest.PinsResult{Result: pinterest.Result{Success: true}, Pins: []pinterest.Pin{
		{ID: "1", Title: "Dunes", Link: "https://example.com/dunes"},
		{ID: "2", ImageURL: "https://img.example.com/2.jpg"},
	}}
}

func TestImportPinterest(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	sec, _ := s.AddSection(ctx, "Ideas")

	_, err := s.ImportPinterest(ctx, sec.ID)
	if !errors.Is(err, pinterest.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if !strings.Contains(s.LastError().Error(), "pinterest integration is not yet implemented") {
		t.Fatalf("unexpected recorded error %v", s.LastError())
	}

	s2, err := Open(ctx, r, s.BoardID(), WithPinterest(fakePinterest{}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	added, err := s2.ImportPinterest(ctx, sec.ID)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 items, got %d", len(added))
	}
	if lc := added[1].Content.(model.LinkContent); lc.Title != "img.example.com" {
		t.Fatalf("expected host as default title, got %q", lc.Title)
	}
}

func TestRenameBoard(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	s := openBoard(t, r, "Trips")
	if _, err := s.RenameBoard(ctx, "  "); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(s.Errors()) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(s.Errors()))
	}
	if _, err := s.RenameBoard(ctx, "Vacations"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if s.Snapshot().Board.Name != "Vacations" {
		t.Fatalf("mirror not updated")
	}
	s.ClearErrors()
	if s.LastError() != nil {
		t.Fatalf("expected cleared errors")
	}
}
