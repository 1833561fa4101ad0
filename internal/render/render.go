// Package render draws a board view onto a Surface: a raster image for
// thumbnails or a character grid for the terminal.
package render

import (
	"moodboard/internal/layout"
	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/session"
	"moodboard/internal/viewport"
)

type Role int

const (
	RoleBackground Role = iota
	RoleSection
	RoleTitle
	RoleText
	RoleLink
	RoleImage
	RoleCaption
)

type Style struct {
	Role     Role
	Selected bool
}

// Surface is the drawing capability. Coordinates are screen pixels.
type Surface interface {
	Rect(r layout.Rect, st Style)
	// Text draws one line clipped to width pixels.
	Text(p model.Point, s string, width float64, st Style)
	Image(src string, r layout.Rect)
}

// Selection highlights one section or item. Zero value selects nothing.
type Selection struct {
	SectionID string
	ItemID    string
}

const (
	textInset  = 8
	lineHeight = 16
)

// DrawBoard draws every section frame and title, then its items at their
// packed slots, transformed by vp.
func DrawBoard(s Surface, v session.View, vp viewport.Viewport, sel Selection) {
	for _, sv := range v.Sections {
		drawSection(s, sv, vp, sel)
	}
}

func toScreen(vp viewport.Viewport, r layout.Rect) layout.Rect {
	p := vp.WorldToScreen(model.Point{X: r.X, Y: r.Y})
	return layout.Rect{X: p.X, Y: p.Y, W: r.W * vp.Scale, H: r.H * vp.Scale}
}

func at(vp viewport.Viewport, r layout.Rect, dx, dy float64) model.Point {
	return vp.WorldToScreen(model.Point{X: r.X + dx, Y: r.Y + dy})
}

func drawSection(s Surface, sv session.SectionView, vp viewport.Viewport, sel Selection) {
	frame := sv.Rect()
	s.Rect(toScreen(vp, frame), Style{Role: RoleSection, Selected: sel.SectionID == sv.Section.ID})
	s.Text(at(vp, frame, layout.Padding, layout.Padding), sv.Section.Title, (frame.W-2*layout.Padding)*vp.Scale,
		Style{Role: RoleTitle, Selected: sel.SectionID == sv.Section.ID})

	for k, it := range sv.Items {
		drawItem(s, it, sv.ItemRect(k), vp, sel.ItemID == it.ID)
	}
}

func drawItem(s Surface, it model.Item, box layout.Rect, vp viewport.Viewport, selected bool) {
	textW := (box.W - 2*textInset) * vp.Scale
	switch c := it.Content.(type) {
	case model.ImageContent:
		s.Rect(toScreen(vp, box), Style{Role: RoleImage, Selected: selected})
		fit := box.Size()
		if natural, err := media.DecodeImage(c.Src); err == nil {
			fit = layout.FitImage(natural, box.Size())
		}
		s.Image(c.Src, toScreen(vp, layout.Rect{X: box.X, Y: box.Y, W: fit.W, H: fit.H}))
		if c.Caption != "" {
			s.Text(at(vp, box, textInset, box.H-lineHeight), c.Caption, textW, Style{Role: RoleCaption, Selected: selected})
		}
	case model.TextContent:
		s.Rect(toScreen(vp, box), Style{Role: RoleText, Selected: selected})
		for i, line := range wrap(c.Body, int((box.W-2*textInset)/charWidth), int((box.H-2*textInset)/lineHeight)) {
			s.Text(at(vp, box, textInset, textInset+float64(i)*lineHeight), line, textW, Style{Role: RoleText, Selected: selected})
		}
	case model.LinkContent:
		s.Rect(toScreen(vp, box), Style{Role: RoleLink, Selected: selected})
		s.Text(at(vp, box, textInset, textInset), c.Title, textW, Style{Role: RoleLink, Selected: selected})
		s.Text(at(vp, box, textInset, textInset+lineHeight), c.URL, textW, Style{Role: RoleCaption, Selected: selected})
	}
}
