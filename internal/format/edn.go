package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// WriteEDN writes maps, vectors, strings, numbers, booleans and nil as EDN.
// Map keys become kebab-case keywords (createdAt => :created-at).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	var sb strings.Builder
	e := ednWriter{sb: &sb, pretty: pretty}
	e.value(x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednWriter struct {
	sb     *strings.Builder
	pretty bool
}

func (e ednWriter) pad(level int) {
	if e.pretty {
		e.sb.WriteString(strings.Repeat("  ", level))
	}
}

func (e ednWriter) sep(last bool) {
	switch {
	case last:
	case e.pretty:
		e.sb.WriteByte('\n')
	default:
		e.sb.WriteByte(' ')
	}
}

func (e ednWriter) value(v any, level int) {
	switch t := v.(type) {
	case nil:
		e.sb.WriteString("nil")
	case bool:
		e.sb.WriteString(strconv.FormatBool(t))
	case string:
		e.sb.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			e.sb.WriteString(strconv.FormatInt(int64(t), 10))
		} else {
			e.sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
		}
	case []any:
		e.open('[', len(t) == 0)
		for i, x := range t {
			e.pad(level + 1)
			e.value(x, level+1)
			e.sep(i == len(t)-1)
		}
		e.close(']', len(t) == 0, level)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.open('{', len(keys) == 0)
		for i, k := range keys {
			e.pad(level + 1)
			e.sb.WriteString(":" + keyword(k) + " ")
			e.value(t[k], level+1)
			e.sep(i == len(keys)-1)
		}
		e.close('}', len(keys) == 0, level)
	default:
		e.sb.WriteString(strconv.Quote(fmt.Sprint(t)))
	}
}

func (e ednWriter) open(b byte, empty bool) {
	e.sb.WriteByte(b)
	if e.pretty && !empty {
		e.sb.WriteByte('\n')
	}
}

func (e ednWriter) close(b byte, empty bool, level int) {
	if e.pretty && !empty {
		e.sb.WriteByte('\n')
		e.pad(level)
	}
	e.sb.WriteByte(b)
}

// keyword converts a JSON field name to a kebab-case EDN keyword.
func keyword(s string) string {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '_':
			sb.WriteByte('-')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
