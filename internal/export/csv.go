package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"debugsweep/internal/scanner"
)

func writeCSV(w io.Writer, res *scanner.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "path", "line", "column", "type", "severity", "statement"}); err != nil {
		return err
	}

	for _, st := range res.Statements {
		record := []string{
			st.ID,
			st.RelPath,
			strconv.Itoa(st.Line),
			strconv.Itoa(st.Column),
			string(st.Type),
			string(st.Severity),
			st.Content,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
