package insertion

import (
	"strings"

	"debugsweep/internal/cursor"
)

// IsInsertable reports whether text denotes an expression a dump call can
// wrap: a sigil variable or a bare/static call, followed by any chain of
// ->member, ->method(args) and [index] accessors. Arguments and indices may
// nest brackets and quoted strings; each span must balance.
func IsInsertable(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	var i int
	if text[0] == '$' {
		n := identLen(text[1:])
		if n == 0 {
			return false
		}
		i = 1 + n
	} else {
		n := identLen(text)
		if n == 0 {
			return false
		}
		i = n
		if strings.HasPrefix(text[i:], "::") {
			n = identLen(text[i+2:])
			if n == 0 {
				return false
			}
			i += 2 + n
		}
		if i >= len(text) || text[i] != '(' {
			return false
		}
		end := cursor.MatchBracket(text, i)
		if end < 0 {
			return false
		}
		i = end + 1
	}

	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "->"):
			n := identLen(text[i+2:])
			if n == 0 {
				return false
			}
			i += 2 + n
			if i < len(text) && text[i] == '(' {
				end := cursor.MatchBracket(text, i)
				if end < 0 {
					return false
				}
				i = end + 1
			}
		case text[i] == '[':
			end := cursor.MatchBracket(text, i)
			if end < 0 {
				return false
			}
			i = end + 1
		default:
			return false
		}
	}
	return true
}

// ValidateSelection applies the insertion preconditions to a selection on a
// raw line, where the selected text is line[start:end]. It distinguishes the
// reselect-worthy cases: a selection inside a string literal, and a partial
// call whose parentheses fall outside (or never close inside) the selection.
func ValidateSelection(line string, start, end int) error {
	if start < 0 || end > len(line) || start >= end {
		return ErrNoSelection
	}

	text := strings.TrimSpace(line[start:end])
	if text == "" {
		return ErrNoSelection
	}

	if cursor.InsideString(line, start) {
		return ErrInStringLiteral
	}

	// Caret stopped right before the call's parens: wrapping just the name
	// would dump the callable, not the call.
	if end < len(line) && line[end] == '(' && !strings.Contains(text, "(") {
		return ErrAmbiguousSelection
	}

	if !IsInsertable(text) {
		if looksLikePartialCall(text) {
			return ErrAmbiguousSelection
		}
		return ErrNotInsertable
	}
	return nil
}

// looksLikePartialCall is true when the text opens a paren it never closes.
func looksLikePartialCall(text string) bool {
	col := cursor.TokenAt(text, "(", 0)
	return col >= 0 && cursor.MatchBracket(text, col) < 0
}

func identLen(s string) int {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			i++
		case c >= '0' && c <= '9':
			if i == 0 {
				return 0
			}
			i++
		default:
			return i
		}
	}
	return i
}
