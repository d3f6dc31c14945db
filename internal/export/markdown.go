package export

import (
	"fmt"
	"io"
	"time"

	"debugsweep/internal/scanner"
)

// writeMarkdown renders a report suitable for pull request comments. Findings
// go in fenced blocks per file, so statement content needs no escaping.
func writeMarkdown(w io.Writer, res *scanner.Result) error {
	fmt.Fprintln(w, "### Debug statement report")
	fmt.Fprintln(w)

	if res.TotalStatements == 0 {
		fmt.Fprintf(w, "No debug statements found. Scanned %d files in %s.\n",
			res.ScannedFiles, res.ScanTime.Round(time.Millisecond))
		return nil
	}

	noun := "statements"
	if res.TotalStatements == 1 {
		noun = "statement"
	}
	fmt.Fprintf(w, "Found **%d** debug %s across %d scanned files.\n",
		res.TotalStatements, noun, res.ScannedFiles)

	currentPath := ""
	for _, st := range res.Statements {
		if st.RelPath != currentPath {
			if currentPath != "" {
				fmt.Fprintln(w, "```")
			}
			currentPath = st.RelPath
			fmt.Fprintf(w, "\n#### %s\n\n```\n", currentPath)
		}
		fmt.Fprintf(w, "%d:%d  %s (%s)  %s\n",
			st.Line, st.Column+1, st.Type, st.Severity, st.Content)
	}
	fmt.Fprintln(w, "```")

	if msgs := res.ErrorMessages(); len(msgs) > 0 {
		fmt.Fprintf(w, "\n#### Skipped files\n\n")
		for _, msg := range msgs {
			fmt.Fprintf(w, "- %s\n", msg)
		}
	}

	return nil
}
