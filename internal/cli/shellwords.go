package cli

import (
	"errors"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// splitShellWords splits a shell line into argv. Single quotes are literal,
// double quotes allow backslash escapes, and '' yields an empty argument.
func splitShellWords(s string) ([]string, error) {
	var out []string
	var cur []rune
	inWord, inSingle, inDouble, escaped := false, false, false, false

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped, inWord = true, true
		case r == '\'' && !inDouble:
			inSingle, inWord = !inSingle, true
		case r == '"' && !inSingle:
			inDouble, inWord = !inDouble, true
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			if inWord {
				out = append(out, string(cur))
				cur, inWord = cur[:0], false
			}
		default:
			cur = append(cur, r)
			inWord = true
		}
	}
	if inSingle || inDouble || escaped {
		return nil, errUnterminatedQuote
	}
	if inWord {
		out = append(out, string(cur))
	}
	return out, nil
}
