package layout

import (
	"math"
	"testing"

	"moodboard/internal/model"
)

func TestItemsPerRow(t *testing.T) {
	cases := []struct {
		width float64
		want  int
	}{
		{400, 2},
		{410, 3},
		{0, 1},
		{100, 1},
		{800, 6},
	}
	for _, tc := range cases {
		if got := ItemsPerRow(tc.width); got != tc.want {
			t.Fatalf("ItemsPerRow(%v): got %d want %d", tc.width, got, tc.want)
		}
	}
}

func TestPackItems_NeverOverlapsAndRespectsRowWidth(t *testing.T) {
	for _, width := range []float64{120, 400, 410, 650, 1000} {
		perRow := ItemsPerRow(width)
		for n := 0; n <= 25; n++ {
			slots := PackItems(width, n)
			if len(slots) != n {
				t.Fatalf("width %v n %d: got %d slots", width, n, len(slots))
			}
			for i := range slots {
				a := Rect{X: slots[i].X, Y: slots[i].Y, W: ItemWidth, H: ItemHeight}
				if a.X < 0 || a.Y < HeaderHeight {
					t.Fatalf("slot %d out of bounds: %+v", i, a)
				}
				for j := i + 1; j < len(slots); j++ {
					b := Rect{X: slots[j].X, Y: slots[j].Y, W: ItemWidth, H: ItemHeight}
					if Overlaps(a, b) {
						t.Fatalf("width %v: slots %d and %d overlap", width, i, j)
					}
				}
			}
			rows := map[float64]int{}
			for _, s := range slots {
				rows[s.Y]++
			}
			for y, c := range rows {
				if c > perRow {
					t.Fatalf("width %v: row y=%v has %d items, max %d", width, y, c, perRow)
				}
			}
		}
	}
}

func TestPackItems_Positions(t *testing.T) {
	slots := PackItems(SectionWidth, 3)
	want := []model.Point{{X: 10, Y: 60}, {X: 140, Y: 60}, {X: 10, Y: 190}}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot %d: got %+v want %+v", i, slots[i], want[i])
		}
	}
	if got := NextSlot(2); got != want[2] {
		t.Fatalf("NextSlot(2): got %+v want %+v", got, want[2])
	}
}

func TestSectionHeight_MonotoneInItemCount(t *testing.T) {
	prev := 0.0
	for n := 0; n <= 40; n++ {
		p := PackSection(n)
		if p.Width != SectionWidth {
			t.Fatalf("width must stay fixed, got %v", p.Width)
		}
		if p.Height < SectionMinHeight {
			t.Fatalf("n=%d height %v below minimum", n, p.Height)
		}
		if p.Height < prev {
			t.Fatalf("n=%d height decreased: %v < %v", n, p.Height, prev)
		}
		prev = p.Height
	}
	// Three rows: last y = 60 + 2*130 = 320, height = 320 + 120 + 20.
	if h := PackSection(5).Height; h != 460 {
		t.Fatalf("expected 460 for five items, got %v", h)
	}
	if h := PackSection(2).Height; h != SectionMinHeight {
		t.Fatalf("expected min height for one row, got %v", h)
	}
}

func TestNextSectionPosition_GridSlots(t *testing.T) {
	for k := 0; k < 12; k++ {
		got := NextSectionPosition(k)
		want := model.Point{X: float64(k%3) * 430, Y: float64(k/3) * 330}
		if got != want {
			t.Fatalf("slot %d: got %+v want %+v", k, got, want)
		}
	}
}

func TestNextSectionPosition_CellsDoNotOverlap(t *testing.T) {
	var rects []Rect
	for k := 0; k < 9; k++ {
		p := NextSectionPosition(k)
		rects = append(rects, Rect{X: p.X, Y: p.Y, W: CellWidth, H: CellHeight})
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if Overlaps(rects[i], rects[j]) {
				t.Fatalf("cells %d and %d overlap", i, j)
			}
		}
	}
}

func TestFitImage(t *testing.T) {
	box := model.Size{W: 120, H: 120}
	cases := []struct {
		name    string
		natural model.Size
		want    model.Size
	}{
		{"landscape", model.Size{W: 800, H: 400}, model.Size{W: 120, H: 60}},
		{"portrait", model.Size{W: 300, H: 600}, model.Size{W: 60, H: 120}},
		{"square", model.Size{W: 50, H: 50}, model.Size{W: 120, H: 120}},
		{"small upscales", model.Size{W: 40, H: 20}, model.Size{W: 120, H: 60}},
		{"degenerate", model.Size{W: 0, H: 10}, model.Size{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FitImage(tc.natural, box)
			if math.Abs(got.W-tc.want.W) > 1e-9 || math.Abs(got.H-tc.want.H) > 1e-9 {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestOverlaps_TouchingEdges(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	if Overlaps(a, Rect{X: 10, Y: 0, W: 10, H: 10}) {
		t.Fatalf("touching edges must not overlap")
	}
	if !Overlaps(a, Rect{X: 5, Y: 5, W: 10, H: 10}) {
		t.Fatalf("expected overlap")
	}
}
