// Package export renders scan results in the formats downstream consumers
// ask for: human-readable table and tree views, machine-readable json and
// csv, a markdown report for bots that comment on pull requests, and SARIF
// for code-scanning integrations. Writers treat the result as read-only.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"debugsweep/internal/scanner"
)

// Format names an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatTree     Format = "tree"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatSarif    Format = "sarif"
)

// ErrUnknownFormat is returned for format names outside the supported set.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported format names for help text.
func Formats() []string {
	return []string{
		string(FormatTable),
		string(FormatTree),
		string(FormatJSON),
		string(FormatCSV),
		string(FormatMarkdown),
		string(FormatSarif),
	}
}

// ParseFormat normalizes and validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatTree, FormatJSON, FormatCSV, FormatMarkdown, FormatSarif:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
}

// Write renders the result in the given format.
func Write(w io.Writer, format Format, res *scanner.Result) error {
	switch format {
	case FormatTable:
		return writeTable(w, res)
	case FormatTree:
		return writeTree(w, res)
	case FormatJSON:
		return writeJSON(w, res)
	case FormatCSV:
		return writeCSV(w, res)
	case FormatMarkdown:
		return writeMarkdown(w, res)
	case FormatSarif:
		return writeSarif(w, res)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// location renders a statement position for display, with the column shifted
// to 1-based the way editors count.
func location(st scanner.Statement) string {
	return fmt.Sprintf("%s:%d:%d", st.RelPath, st.Line, st.Column+1)
}
