package render

import (
	"math"
	"strings"

	"moodboard/internal/layout"
	"moodboard/internal/model"

	"github.com/mattn/go-runewidth"
)

// Cell sizes in screen pixels. A terminal cell is about twice as tall as wide.
const (
	CellW = 8
	CellH = 16
)

type Cell struct {
	Ch    rune
	Style Style
}

// Cells is a character grid surface. Screen pixels map to cells by CellW x CellH.
type Cells struct {
	W, H  int
	cells []Cell
}

func NewCells(w, h int) *Cells {
	w, h = max(w, 0), max(h, 0)
	c := &Cells{W: w, H: h, cells: make([]Cell, w*h)}
	for i := range c.cells {
		c.cells[i] = Cell{Ch: ' ', Style: Style{Role: RoleBackground}}
	}
	return c
}

func (c *Cells) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return Cell{Ch: ' '}
	}
	return c.cells[y*c.W+x]
}

func (c *Cells) set(x, y int, ch rune, st Style) {
	if x < 0 || y < 0 || x >= c.W || y >= c.H {
		return
	}
	c.cells[y*c.W+x] = Cell{Ch: ch, Style: st}
}

func cellSpan(rc layout.Rect) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(rc.X / CellW))
	y0 = int(math.Floor(rc.Y / CellH))
	x1 = int(math.Ceil((rc.X+rc.W)/CellW)) - 1
	y1 = int(math.Ceil((rc.Y+rc.H)/CellH)) - 1
	return x0, y0, max(x1, x0), max(y1, y0)
}

func (c *Cells) Rect(rc layout.Rect, st Style) {
	x0, y0, x1, y1 := cellSpan(rc)
	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if st.Selected {
		h, v, tl, tr, bl, br = '━', '┃', '┏', '┓', '┗', '┛'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ch := ' '
			switch {
			case x == x0 && y == y0:
				ch = tl
			case x == x1 && y == y0:
				ch = tr
			case x == x0 && y == y1:
				ch = bl
			case x == x1 && y == y1:
				ch = br
			case y == y0 || y == y1:
				ch = h
			case x == x0 || x == x1:
				ch = v
			}
			c.set(x, y, ch, st)
		}
	}
}

func (c *Cells) Text(p model.Point, s string, width float64, st Style) {
	x := int(math.Floor(p.X / CellW))
	y := int(math.Floor(p.Y / CellH))
	limit := x + int(width/CellW)
	for _, r := range s {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > limit {
			return
		}
		c.set(x, y, r, st)
		for i := 1; i < w; i++ {
			c.set(x+i, y, 0, st)
		}
		x += w
	}
}

// Image fills the box interior with a shade; terminals get no pixels.
func (c *Cells) Image(src string, rc layout.Rect) {
	x0, y0, x1, y1 := cellSpan(rc)
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			c.set(x, y, '░', Style{Role: RoleImage})
		}
	}
}

// Lines renders the grid row by row. style, when non-nil, wraps each run of
// cells sharing a Style (for example with lipgloss).
func (c *Cells) Lines(style func(Style, string) string) []string {
	out := make([]string, c.H)
	for y := 0; y < c.H; y++ {
		var line strings.Builder
		var run strings.Builder
		cur := c.At(0, y).Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style != nil {
				line.WriteString(style(cur, run.String()))
			} else {
				line.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.W; x++ {
			cell := c.At(x, y)
			if cell.Style != cur {
				flush()
				cur = cell.Style
			}
			if cell.Ch != 0 {
				run.WriteRune(cell.Ch)
			}
		}
		flush()
		out[y] = line.String()
	}
	return out
}

func (c *Cells) String() string {
	return strings.Join(c.Lines(nil), "\n")
}
