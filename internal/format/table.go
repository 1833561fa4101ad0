package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// MaxCellWidth truncates long values such as data URLs.
const MaxCellWidth = 48

// leading columns, in order, when present.
var preferredColumns = []string{"id", "name", "title", "type", "content", "boardId", "sectionId", "position"}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders lists of objects as rows and a single object as
// key/value pairs. A {"data": ...} envelope is unwrapped; its "meta" follows
// as a key/value table and "_hints" are dropped.
func WriteTable(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	var meta map[string]any
	if m, ok := x.(map[string]any); ok {
		if d, ok := m["data"]; ok {
			x = d
			meta, _ = m["meta"].(map[string]any)
		}
	}

	var out string
	switch t := x.(type) {
	case []any:
		out = listTable(t)
	case map[string]any:
		out = objectTable(t)
	default:
		out = cell(t)
	}
	if len(meta) > 0 {
		out += "\n" + objectTable(meta)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func listTable(xs []any) string {
	if len(xs) == 0 {
		return "(none)"
	}
	seen := map[string]bool{}
	for _, x := range xs {
		if m, ok := x.(map[string]any); ok {
			for k := range m {
				seen[k] = true
			}
		}
	}
	if len(seen) == 0 {
		t := newTable().Headers("value")
		for _, x := range xs {
			t.Row(cell(x))
		}
		return t.String()
	}

	var cols []string
	for _, c := range preferredColumns {
		if seen[c] {
			cols = append(cols, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	cols = append(cols, rest...)

	t := newTable().Headers(cols...)
	for _, x := range xs {
		m, _ := x.(map[string]any)
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(m[c])
		}
		t.Row(row...)
	}
	return t.String()
}

func objectTable(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := newTable().Headers("field", "value")
	for _, k := range keys {
		t.Row(k, cell(m[k]))
	}
	return t.String()
}

func cell(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case bool:
		s = strconv.FormatBool(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		if x, ok := t["x"].(float64); ok {
			if y, ok := t["y"].(float64); ok && len(t) == 2 {
				s = fmt.Sprintf("(%s, %s)", strconv.FormatFloat(x, 'f', -1, 64), strconv.FormatFloat(y, 'f', -1, 64))
				break
			}
		}
		b, _ := json.Marshal(t)
		s = string(b)
	case []any:
		s = fmt.Sprintf("[%d]", len(t))
	default:
		s = fmt.Sprint(t)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, MaxCellWidth, "…")
}
