package insertion

import "strings"

// Position is a caret location in a document. Line is 1-based to match
// editor conventions; Column is a 0-based offset into the raw line.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Options carry the editor's indentation preferences. A reference indent
// that already contains a tab overrides both fields: tab consistency wins
// over configured width.
type Options struct {
	TabSize   int
	UseSpaces bool
}

// Plan says where an inserted statement goes. The statement text itself is
// the caller's concern.
//
// Application rule: insert at Column on Line. When NeedsLeadingNewline is
// set the insertion point is mid-line (inside an empty block) and a newline
// must precede the indented statement; otherwise Column is 0 and the
// statement becomes a new line of its own, prefixed with Indent.
type Plan struct {
	Line                int    `json:"line"`
	Column              int    `json:"column"`
	Indent              string `json:"indent"`
	NeedsLeadingNewline bool   `json:"needs_leading_newline"`
}

// Lines splits document content for Resolve, tolerating CRLF endings.
func Lines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
