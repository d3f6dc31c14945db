// Package insertion computes syntactically safe insertion points for new
// statements, for editor integrations that add debug calls near a selected
// expression. It shares the scanner's lexical model: brace structure and
// statement ends are found by quote- and comment-aware scanning, never by
// parsing.
package insertion

import (
	"strings"

	"debugsweep/internal/cursor"
)

// Resolve computes where a statement for the selection at pos should be
// inserted. The document's brace structure is validated first: a malformed
// document fails with *UnbalancedBracesError before any plan is computed,
// and the selection position must be inside the document.
//
// The target is chosen by priority:
//  1. the next line is exactly an opening brace: the line after it, one
//     level deeper than the brace
//  2. the next line is exactly a closing brace: that line, matching the
//     nearest preceding content line
//  3. the current line holds an empty block: inside it, one level deeper,
//     with a leading newline
//  4. the next non-blank line is a lone closing brace: that line, one level
//     deeper than the block
//  5. otherwise: the line after the current statement's terminator
func Resolve(lines []string, pos Position, opts Options) (*Plan, error) {
	if err := checkBraceBalance(lines); err != nil {
		return nil, err
	}
	if pos.Line < 1 || pos.Line > len(lines) {
		return nil, ErrNoSelection
	}

	cur := pos.Line - 1
	curLine := lines[cur]

	if cur+1 < len(lines) {
		next := strings.TrimSpace(lines[cur+1])

		if next == "{" {
			indent := indentOf(lines[cur+1])
			return &Plan{
				Line:   cur + 3, // 1-based line after the brace line
				Indent: indent + indentStep(indent, opts),
			}, nil
		}

		if next == "}" {
			return &Plan{
				Line:   cur + 2,
				Indent: precedingContentIndent(lines, cur+1, indentOf(curLine)),
			}, nil
		}
	}

	if col := emptyBlockCol(curLine); col >= 0 {
		indent := indentOf(curLine)
		return &Plan{
			Line:                pos.Line,
			Column:              col + 1,
			Indent:              indent + indentStep(indent, opts),
			NeedsLeadingNewline: true,
		}, nil
	}

	if idx := nextNonBlank(lines, cur+1); idx >= 0 && strings.TrimSpace(lines[idx]) == "}" {
		indent := indentOf(lines[idx])
		return &Plan{
			Line:   idx + 1,
			Indent: indent + indentStep(indent, opts),
		}, nil
	}

	endLine := statementEndLine(lines, cur, pos.Column)
	return &Plan{
		Line:   endLine + 2,
		Indent: precedingContentIndent(lines, endLine+1, indentOf(lines[endLine])),
	}, nil
}

// checkBraceBalance threads the cursor state across the whole document and
// fails on the first underflowing close brace, or on net-open braces at end
// of document.
func checkBraceBalance(lines []string) error {
	var st cursor.State
	var bal cursor.Balance

	for i, line := range lines {
		var bad int
		st, bal, bad = cursor.Advance(line, st, bal)
		if bad >= 0 {
			return &UnbalancedBracesError{Line: i + 1}
		}
	}
	if bal.Brace != 0 {
		return &UnbalancedBracesError{Line: len(lines)}
	}
	return nil
}

// statementEndLine finds the line holding the current statement's bare
// terminator, scanning forward from the selection. Without one, the current
// line stands in so insertion still lands somewhere sensible.
func statementEndLine(lines []string, cur, col int) int {
	if t := cursor.FindBareTerminator(lines[cur], col); t >= 0 {
		return cur
	}
	for i := cur + 1; i < len(lines); i++ {
		if t := cursor.FindBareTerminator(lines[i], 0); t >= 0 {
			return i
		}
	}
	return cur
}

// emptyBlockCol returns the column of an opening brace whose block is empty
// on this line ("{ }" with only whitespace between), or -1.
func emptyBlockCol(line string) int {
	from := 0
	for {
		col := cursor.TokenAt(line, "{", from)
		if col < 0 {
			return -1
		}
		if strings.HasPrefix(strings.TrimLeft(line[col+1:], " \t"), "}") {
			return col
		}
		from = col + 1
	}
}

// precedingContentIndent scans upward from before idx for the nearest line
// that has content other than a lone brace and returns its indentation.
func precedingContentIndent(lines []string, idx int, fallback string) string {
	for i := idx - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || trimmed == "{" || trimmed == "}" {
			continue
		}
		return indentOf(lines[i])
	}
	return fallback
}

func nextNonBlank(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// indentStep returns one level of indentation. A tab anywhere in the
// reference indent forces a tab step regardless of the configured width.
func indentStep(reference string, opts Options) string {
	if strings.Contains(reference, "\t") {
		return "\t"
	}
	if opts.TabSize <= 0 {
		opts.TabSize = 4
	}
	if opts.UseSpaces {
		return strings.Repeat(" ", opts.TabSize)
	}
	return "\t"
}
