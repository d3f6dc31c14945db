package scanner

import "strings"

// segment is one semicolon-terminated candidate extracted from a sanitized
// line. Offsets index the sanitized text, not the raw line; the engine maps
// retained segments back to raw-line positions afterwards.
type segment struct {
	text  string
	start int // offset of text[0] in the sanitized line
	end   int // offset of the terminating ';'
}

// segmentLine splits a sanitized line on bare semicolons. Depth tracks
// (, [ and { nesting so a for(;;) header is never split. Sanitized text
// carries no string contents, so bracket counting here needs no quote
// awareness. A trailing fragment with no terminator is dropped: a statement
// is attributed to a line only once it is explicitly closed there.
//
// Segments are non-overlapping, ordered by ascending start offset, and
// non-empty after trimming.
func segmentLine(sanitized string) []segment {
	var segs []segment
	depth := 0
	start := 0

	for i := 0; i < len(sanitized); i++ {
		switch sanitized[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ';':
			if depth > 0 {
				continue
			}
			text := sanitized[start:i]
			if strings.TrimSpace(text) != "" {
				segs = append(segs, segment{text: text, start: start, end: i})
			}
			start = i + 1
		}
	}

	return segs
}

// tokenOffset returns the offset of the segment's leading token within the
// sanitized line, skipping the segment's leading whitespace.
func (s segment) tokenOffset() int {
	return s.start + (len(s.text) - len(strings.TrimLeft(s.text, " \t")))
}
