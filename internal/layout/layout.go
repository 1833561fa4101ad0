// Package layout computes item packing, section auto-height, new-section grid
// placement and image fit. Everything here is pure and works in board pixels.
package layout

import (
	"math"

	"moodboard/internal/model"
)

const (
	ItemWidth  = 120
	ItemHeight = 120
	Padding    = 10
	// HeaderHeight is reserved at the top of a section for its title.
	HeaderHeight = 60

	SectionWidth     = 400
	SectionMinHeight = 300
	BottomPadding    = 20

	GridColumns = 3
	CellWidth   = 400
	CellHeight  = 300
	GridGap     = 30
)

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Max() model.Point { return model.Point{X: r.X + r.W, Y: r.Y + r.H} }

func (r Rect) Size() model.Size { return model.Size{W: r.W, H: r.H} }

// Overlaps reports whether a and b share interior area. Touching edges do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

// Packed is the computed layout of one section's items.
type Packed struct {
	// Slots holds the section-local position of the k-th item.
	Slots  []model.Point `json:"slots"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

// ItemRect returns the box of the k-th packed item in section-local coordinates.
func (p Packed) ItemRect(k int) Rect {
	s := p.Slots[k]
	return Rect{X: s.X, Y: s.Y, W: ItemWidth, H: ItemHeight}
}

func ItemsPerRow(width float64) int {
	n := int(math.Floor((width - 2*Padding) / (ItemWidth + Padding)))
	if n < 1 {
		return 1
	}
	return n
}

// PackItems assigns n items, in list order, to a row-major grid inside a
// section of the given width.
func PackItems(width float64, n int) []model.Point {
	if n <= 0 {
		return []model.Point{}
	}
	perRow := ItemsPerRow(width)
	out := make([]model.Point, n)
	for k := range out {
		row, col := k/perRow, k%perRow
		out[k] = model.Point{
			X: Padding + float64(col)*(ItemWidth+Padding),
			Y: HeaderHeight + float64(row)*(ItemHeight+Padding),
		}
	}
	return out
}

func SectionHeight(slots []model.Point) float64 {
	if len(slots) == 0 {
		return SectionMinHeight
	}
	last := slots[len(slots)-1]
	return math.Max(SectionMinHeight, last.Y+ItemHeight+BottomPadding)
}

func PackSection(n int) Packed {
	slots := PackItems(SectionWidth, n)
	return Packed{Slots: slots, Width: SectionWidth, Height: SectionHeight(slots)}
}

// NextSlot is where an item appended to a section of n items lands.
func NextSlot(n int) model.Point {
	return PackItems(SectionWidth, n+1)[n]
}

// NextSectionPosition places the n-th created section (0-indexed) on the
// 3-column grid. Deleting sections does not repack; gaps are kept.
func NextSectionPosition(n int) model.Point {
	if n < 0 {
		n = 0
	}
	row, col := n/GridColumns, n%GridColumns
	return model.Point{
		X: float64(col) * (CellWidth + GridGap),
		Y: float64(row) * (CellHeight + GridGap),
	}
}

// FitImage scales natural so its larger dimension matches the box. Small
// images are scaled up.
func FitImage(natural, box model.Size) model.Size {
	if natural.W <= 0 || natural.H <= 0 {
		return model.Size{}
	}
	if natural.W >= natural.H {
		return model.Size{W: box.W, H: natural.H * box.W / natural.W}
	}
	return model.Size{W: natural.W * box.H / natural.H, H: box.H}
}
