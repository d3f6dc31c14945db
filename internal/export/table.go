package export

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"debugsweep/internal/scanner"
)

const maxTableContent = 60

func writeTable(w io.Writer, res *scanner.Result) error {
	if res.TotalStatements == 0 {
		fmt.Fprintf(w, "No debug statements found. Scanned %d files in %s.\n",
			res.ScannedFiles, res.ScanTime.Round(time.Millisecond))
		writeTableErrors(w, res)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Location", "Type", "Severity", "Statement"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})
	table.SetAutoWrapText(false)

	for _, st := range res.Statements {
		table.Append([]string{
			location(st),
			string(st.Type),
			string(st.Severity),
			truncate(st.Content, maxTableContent),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d files", res.ScannedFiles),
		"",
		"",
		fmt.Sprintf("%d statements", res.TotalStatements),
	})
	table.Render()

	fmt.Fprintf(w, "\nScan took %s.\n", res.ScanTime.Round(time.Millisecond))
	writeTableErrors(w, res)
	return nil
}

func writeTableErrors(w io.Writer, res *scanner.Result) {
	if len(res.Errors) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d files could not be scanned:\n", len(res.Errors))
	for _, msg := range res.ErrorMessages() {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
