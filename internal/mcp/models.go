package mcp

import (
	"debugsweep/internal/insertion"
	"debugsweep/internal/scanner"
)

// DebugScanRequest are the parsed arguments of the debug_scan tool.
type DebugScanRequest struct {
	// Paths restricts the scan; empty means the whole workspace.
	Paths []string `json:"paths,omitempty"`
}

// DebugScanResponse is the debug_scan result envelope. It matches the
// CLI's JSON export so both surfaces feed the same consumers.
type DebugScanResponse struct {
	Statements      []scanner.Statement `json:"statements"`
	ScannedFiles    int                 `json:"scanned_files"`
	TotalStatements int                 `json:"total_statements"`
	ScanTimeMs      int64               `json:"scan_time_ms"`
	Errors          []string            `json:"errors,omitempty"`
}

// InsertionPointRequest are the parsed arguments of the insertion_point
// tool. Line is 1-based; Column is a 0-based byte offset. Selection, when
// present, is the selected expression text starting at the caret.
type InsertionPointRequest struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Selection string `json:"selection,omitempty"`
}

// InsertionPointResponse carries the computed plan back to the editor.
type InsertionPointResponse struct {
	File string         `json:"file"`
	Plan insertion.Plan `json:"plan"`
}
