package session

import (
	"fmt"
	"math"

	"moodboard/internal/layout"
	"moodboard/internal/model"
)

// View is the in-memory mirror of one board.
type View struct {
	Board    model.Board   `json:"board"`
	Sections []SectionView `json:"sections"`
}

type SectionView struct {
	Section model.Section `json:"section"`
	Items   []model.Item  `json:"items"`
	Layout  layout.Packed `json:"layout"`
}

func newSectionView(s model.Section, items []model.Item) SectionView {
	if items == nil {
		items = []model.Item{}
	}
	return SectionView{Section: s, Items: items, Layout: layout.PackSection(len(items))}
}

func (sv *SectionView) repack() {
	sv.Layout = layout.PackSection(len(sv.Items))
}

// Rect is the section frame in world coordinates.
func (sv SectionView) Rect() layout.Rect {
	return layout.Rect{X: sv.Section.Position.X, Y: sv.Section.Position.Y, W: sv.Layout.Width, H: sv.Layout.Height}
}

// ItemRect is the k-th item's packed box in world coordinates.
func (sv SectionView) ItemRect(k int) layout.Rect {
	r := sv.Layout.ItemRect(k)
	r.X += sv.Section.Position.X
	r.Y += sv.Section.Position.Y
	return r
}

func (v View) SectionIndex(id string) int {
	for i := range v.Sections {
		if v.Sections[i].Section.ID == id {
			return i
		}
	}
	return -1
}

// ItemIndex returns the section and item indexes of item id, or -1, -1.
func (v View) ItemIndex(id string) (int, int) {
	for i := range v.Sections {
		for j := range v.Sections[i].Items {
			if v.Sections[i].Items[j].ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}

// Bounds is the union of all section frames. An empty board has zero bounds.
func (v View) Bounds() layout.Rect {
	if len(v.Sections) == 0 {
		return layout.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sv := range v.Sections {
		r := sv.Rect()
		minX, minY = math.Min(minX, r.X), math.Min(minY, r.Y)
		maxX, maxY = math.Max(maxX, r.X+r.W), math.Max(maxY, r.Y+r.H)
	}
	return layout.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// CheckLayout verifies every section's layout matches its items and that no
// two packed items of a section overlap.
func (v View) CheckLayout() error {
	for _, sv := range v.Sections {
		if len(sv.Layout.Slots) != len(sv.Items) {
			return fmt.Errorf("section %s: %d slots for %d items", sv.Section.ID, len(sv.Layout.Slots), len(sv.Items))
		}
		for i := range sv.Items {
			for j := i + 1; j < len(sv.Items); j++ {
				if layout.Overlaps(sv.Layout.ItemRect(i), sv.Layout.ItemRect(j)) {
					return fmt.Errorf("section %s: items %s and %s overlap", sv.Section.ID, sv.Items[i].ID, sv.Items[j].ID)
				}
			}
		}
	}
	return nil
}

func (v View) clone() View {
	out := View{Board: v.Board, Sections: make([]SectionView, len(v.Sections))}
	if v.Board.Thumbnail != nil {
		t := *v.Board.Thumbnail
		out.Board.Thumbnail = &t
	}
	for i, sv := range v.Sections {
		c := sv
		c.Items = append([]model.Item(nil), sv.Items...)
		if c.Items == nil {
			c.Items = []model.Item{}
		}
		c.Layout.Slots = append([]model.Point(nil), sv.Layout.Slots...)
		out.Sections[i] = c
	}
	return out
}
