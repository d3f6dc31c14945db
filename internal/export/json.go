package export

import (
	"encoding/json"
	"io"

	"debugsweep/internal/scanner"
)

// jsonReport is the json envelope. Scan time is flattened to milliseconds so
// consumers are not parsing Go duration strings.
type jsonReport struct {
	Statements      []scanner.Statement `json:"statements"`
	ScannedFiles    int                 `json:"scanned_files"`
	TotalStatements int                 `json:"total_statements"`
	ScanTimeMs      int64               `json:"scan_time_ms"`
	Errors          []string            `json:"errors,omitempty"`
}

func writeJSON(w io.Writer, res *scanner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Statements:      res.Statements,
		ScannedFiles:    res.ScannedFiles,
		TotalStatements: res.TotalStatements,
		ScanTimeMs:      res.ScanTime.Milliseconds(),
		Errors:          res.ErrorMessages(),
	})
}
