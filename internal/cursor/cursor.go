// Package cursor implements single-pass, quote- and comment-aware scanning of
// raw source text. It is the foundation the scanner and the insertion planner
// share: both need to walk PHP-ish source safely without building a syntax
// tree, treating string literals and comments as opaque.
//
// The scanning model is line-oriented. Lexical context that can span lines
// (an open /* block comment) is carried in an explicit State value passed
// into and returned from each call, never in package-level mutable state, so
// every function here is referentially transparent and testable line by line.
//
// String literals are assumed to terminate within their line. Multi-line
// string syntax (heredoc/nowdoc) is not supported.
package cursor

import "strings"

// State is the lexical context carried from one line to the next.
//
// Sanitize never returns InString=true: under the single-line string
// assumption an unterminated literal does not carry over. The fields exist so
// callers thread one complete value per line.
type State struct {
	InBlockComment bool
	InString       bool
	Delim          byte
}

// Balance tracks running open-bracket counts across scanned text.
type Balance struct {
	Paren   int
	Bracket int
	Brace   int
}

// Sanitize returns line with string-literal contents removed (delimiters are
// kept so bracket tracking on the result stays sound), line comments (// or
// #) truncated, and block-comment spans removed, along with the exit state
// for the next line.
//
// A backslash inside a string escapes exactly the next character; a
// same-delimiter quote closes the string only when not escaped.
func Sanitize(line string, st State) (string, State) {
	var out strings.Builder
	out.Grow(len(line))

	inString := st.InString
	delim := st.Delim
	escaped := false
	inBlock := st.InBlockComment

	i := 0
	for i < len(line) {
		if inBlock {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return out.String(), State{InBlockComment: true}
			}
			i += end + 2
			inBlock = false
			continue
		}

		ch := line[i]

		if inString {
			if escaped {
				escaped = false
				i++
				continue
			}
			if ch == '\\' {
				escaped = true
				i++
				continue
			}
			if ch == delim {
				inString = false
				out.WriteByte(ch)
			}
			i++
			continue
		}

		switch {
		case ch == '"' || ch == '\'':
			inString = true
			delim = ch
			escaped = false
			out.WriteByte(ch)
			i++
		case ch == '#':
			return out.String(), State{}
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return out.String(), State{}
		case ch == '/' && i+1 < len(line) && line[i+1] == '*':
			inBlock = true
			i += 2
		default:
			out.WriteByte(ch)
			i++
		}
	}

	// An unterminated string does not carry into the next line.
	return out.String(), State{}
}

// Advance walks a raw line updating bracket counts, skipping characters
// inside string literals and comments. badBraceCol is the column of the first
// closing brace that drops the running brace count below zero, or -1.
//
// This is the primitive behind the whole-document brace-balance check: thread
// the returned State and Balance through consecutive lines and the first
// non-negative badBraceCol names the offending line.
func Advance(line string, st State, bal Balance) (State, Balance, int) {
	badBraceCol := -1

	inString := st.InString
	delim := st.Delim
	escaped := false
	inBlock := st.InBlockComment

	i := 0
	for i < len(line) {
		if inBlock {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return State{InBlockComment: true}, bal, badBraceCol
			}
			i += end + 2
			inBlock = false
			continue
		}

		ch := line[i]

		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == delim {
				inString = false
			}
			i++
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			delim = ch
			escaped = false
			i++
			continue
		case '#':
			return State{}, bal, badBraceCol
		case '/':
			if i+1 < len(line) {
				if line[i+1] == '/' {
					return State{}, bal, badBraceCol
				}
				if line[i+1] == '*' {
					inBlock = true
					i += 2
					continue
				}
			}
		case '(':
			bal.Paren++
		case ')':
			bal.Paren--
		case '[':
			bal.Bracket++
		case ']':
			bal.Bracket--
		case '{':
			bal.Brace++
		case '}':
			bal.Brace--
			if bal.Brace < 0 && badBraceCol < 0 {
				badBraceCol = i
			}
		}
		i++
	}

	return State{}, bal, badBraceCol
}

// FindBareTerminator returns the index of the first semicolon at bracket
// depth zero outside string literals, scanning right from start, or -1.
// Depth is relative to start: a semicolon inside brackets opened after start
// is not a terminator, matching how statement ends are located mid-line.
func FindBareTerminator(line string, start int) int {
	if start < 0 {
		start = 0
	}

	depth := 0
	inString := false
	var delim byte
	escaped := false

	for i := start; i < len(line); i++ {
		ch := line[i]

		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == delim {
				inString = false
			}
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			delim = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ';':
			if depth <= 0 {
				return i
			}
		}
	}

	return -1
}

// TokenAt returns the first occurrence of token at or after from that lies
// outside string literals, or -1. The string state is built from the start
// of the line so a match is never reported from inside a literal that opened
// before from.
func TokenAt(line, token string, from int) int {
	if token == "" || from > len(line) {
		return -1
	}
	if from < 0 {
		from = 0
	}

	inString := false
	var delim byte
	escaped := false

	for i := 0; i+len(token) <= len(line); i++ {
		ch := line[i]

		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == delim {
				inString = false
			}
			continue
		}

		if ch == '"' || ch == '\'' {
			inString = true
			delim = ch
			continue
		}

		if i >= from && strings.HasPrefix(line[i:], token) {
			return i
		}
	}

	return -1
}

// MatchBracket returns the index of the closing bracket matching the opener
// at start, respecting nesting and string literals. Returns -1 when start is
// not on an opener or no match exists in text.
func MatchBracket(text string, start int) int {
	if start < 0 || start >= len(text) {
		return -1
	}

	var closer byte
	switch text[start] {
	case '(':
		closer = ')'
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return -1
	}
	opener := text[start]

	depth := 0
	inString := false
	var delim byte
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == delim {
				inString = false
			}
			continue
		}

		switch ch {
		case '"', '\'':
			inString = true
			delim = ch
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// InsideString reports whether col sits inside a string literal on line,
// judged by unmatched unescaped quote counts on each side of col. Both sides
// must be odd for the same delimiter: a column after a closed literal has an
// even count on the left and is not inside.
func InsideString(line string, col int) bool {
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}

	left := line[:col]
	right := line[col:]

	for _, q := range []byte{'"', '\''} {
		if countUnescaped(left, q)%2 == 1 && countUnescaped(right, q)%2 == 1 {
			return true
		}
	}
	return false
}

func countUnescaped(s string, quote byte) int {
	n := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case quote:
			n++
		}
	}
	return n
}
