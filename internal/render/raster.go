package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"moodboard/internal/layout"
	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/session"
	"moodboard/internal/viewport"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type palette struct {
	fill, stroke, ink color.RGBA
}

var rasterPalette = map[Role]palette{
	RoleBackground: {fill: color.RGBA{0xf5, 0xf5, 0xf5, 0xff}},
	RoleSection:    {fill: color.RGBA{0xff, 0xff, 0xff, 0xff}, stroke: color.RGBA{0xdd, 0xdd, 0xdd, 0xff}},
	RoleTitle:      {ink: color.RGBA{0x33, 0x33, 0x33, 0xff}},
	RoleText:       {fill: color.RGBA{0xff, 0xf9, 0xc4, 0xff}, stroke: color.RGBA{0xe0, 0xd8, 0x8c, 0xff}, ink: color.RGBA{0x33, 0x33, 0x33, 0xff}},
	RoleLink:       {fill: color.RGBA{0xe3, 0xf2, 0xfd, 0xff}, stroke: color.RGBA{0x90, 0xca, 0xf9, 0xff}, ink: color.RGBA{0x15, 0x65, 0xc0, 0xff}},
	RoleImage:      {fill: color.RGBA{0xee, 0xee, 0xee, 0xff}, stroke: color.RGBA{0xcc, 0xcc, 0xcc, 0xff}},
	RoleCaption:    {ink: color.RGBA{0x66, 0x66, 0x66, 0xff}},
}

var selectedStroke = color.RGBA{0x21, 0x96, 0xf3, 0xff}

// Raster draws into an RGBA image.
type Raster struct {
	img    *image.RGBA
	face   font.Face
	images map[string]image.Image
}

func NewRaster(w, h int) *Raster {
	r := &Raster{
		img:    image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1))),
		face:   basicfont.Face7x13,
		images: map[string]image.Image{},
	}
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(rasterPalette[RoleBackground].fill), image.Point{}, draw.Src)
	return r
}

func (r *Raster) RGBA() *image.RGBA { return r.img }

func pixelRect(rc layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(rc.X)), int(math.Floor(rc.Y)),
		int(math.Ceil(rc.X+rc.W)), int(math.Ceil(rc.Y+rc.H)),
	)
}

func (r *Raster) Rect(rc layout.Rect, st Style) {
	p := rasterPalette[st.Role]
	pr := pixelRect(rc).Intersect(r.img.Bounds())
	if pr.Empty() {
		return
	}
	if p.fill.A != 0 {
		draw.Draw(r.img, pr, image.NewUniform(p.fill), image.Point{}, draw.Over)
	}
	stroke, width := p.stroke, 1
	if st.Selected {
		stroke, width = selectedStroke, 2
	}
	if stroke.A == 0 {
		return
	}
	u := image.NewUniform(stroke)
	full := pixelRect(rc)
	for i := 0; i < width; i++ {
		edges := []image.Rectangle{
			image.Rect(full.Min.X, full.Min.Y+i, full.Max.X, full.Min.Y+i+1),
			image.Rect(full.Min.X, full.Max.Y-i-1, full.Max.X, full.Max.Y-i),
			image.Rect(full.Min.X+i, full.Min.Y, full.Min.X+i+1, full.Max.Y),
			image.Rect(full.Max.X-i-1, full.Min.Y, full.Max.X-i, full.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(r.img, e.Intersect(r.img.Bounds()), u, image.Point{}, draw.Over)
		}
	}
}

func (r *Raster) Text(p model.Point, s string, width float64, st Style) {
	ink := rasterPalette[st.Role].ink
	if ink.A == 0 {
		ink = rasterPalette[RoleTitle].ink
	}
	adv := r.face.Metrics().Height.Ceil()
	if gw, ok := r.face.GlyphAdvance('M'); ok {
		adv = gw.Ceil()
	}
	if n := int(width) / max(adv, 1); n < len([]rune(s)) {
		s = string([]rune(s)[:max(n, 0)])
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(ink),
		Face: r.face,
		Dot:  fixed.P(int(p.X), int(p.Y)+r.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func (r *Raster) Image(src string, rc layout.Rect) {
	img, ok := r.images[src]
	if !ok {
		var err error
		if img, err = media.LoadImage(src); err != nil {
			img = nil
		}
		r.images[src] = img
	}
	if img == nil {
		return
	}
	draw.ApproxBiLinear.Scale(r.img, pixelRect(rc), img, img.Bounds(), draw.Over, nil)
}

// Snapshotter renders a whole board to a PNG data URL.
type Snapshotter struct {
	// MaxSide caps the longer output dimension; larger boards are scaled down.
	MaxSide int
}

var _ session.Snapshotter = Snapshotter{}

const snapshotMargin = 20

func (s Snapshotter) Snapshot(v session.View) (string, error) {
	b := v.Bounds()
	if b.W == 0 || b.H == 0 {
		b = layout.Rect{W: layout.SectionWidth, H: layout.SectionMinHeight}
	}
	w, h := b.W+2*snapshotMargin, b.H+2*snapshotMargin
	scale := 1.0
	if s.MaxSide > 0 {
		scale = math.Min(1, float64(s.MaxSide)/math.Max(w, h))
	}
	vp := viewport.Viewport{
		Scale:  scale,
		Offset: model.Point{X: (snapshotMargin - b.X) * scale, Y: (snapshotMargin - b.Y) * scale},
	}
	r := NewRaster(int(math.Ceil(w*scale)), int(math.Ceil(h*scale)))
	DrawBoard(r, v, vp, Selection{})

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return "", err
	}
	return media.EncodeDataURL("image/png", buf.Bytes()), nil
}
