package render

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// charWidth is the nominal glyph advance in world pixels, shared by the
// raster font and the terminal cell grid.
const charWidth = 8

// wrap word-wraps s to cols columns and keeps at most maxLines lines, marking
// truncation with an ellipsis.
func wrap(s string, cols, maxLines int) []string {
	if cols < 1 || maxLines < 1 {
		return nil
	}
	lines := strings.Split(wordwrap.String(strings.TrimSpace(s), cols), "\n")
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	if len(last) >= cols {
		last = last[:cols-1]
	}
	lines[maxLines-1] = string(last) + "…"
	return lines
}
