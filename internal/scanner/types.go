package scanner

import (
	"fmt"
	"time"
)

// StatementType identifies the debug-call kind of one finding. The set is
// closed: classification is a fixed table, not user-extensible. The string
// value of each type is also the source token the rule matches on.
type StatementType string

const (
	TypeVarDump        StatementType = "var_dump"
	TypePrintR         StatementType = "print_r"
	TypeEcho           StatementType = "echo"
	TypePrint          StatementType = "print"
	TypeVarExport      StatementType = "var_export"
	TypePrintf         StatementType = "printf"
	TypeDie            StatementType = "die"
	TypeExit           StatementType = "exit"
	TypeErrorLog       StatementType = "error_log"
	TypeTriggerError   StatementType = "trigger_error"
	TypeUserError      StatementType = "user_error"
	TypeDebugBacktrace StatementType = "debug_backtrace"
	TypeDump           StatementType = "dump"
	TypeDD             StatementType = "dd"
	TypeXdebugBreak    StatementType = "xdebug_break"
	TypeXdebugVarDump  StatementType = "xdebug_var_dump"
	TypeXdebugZval     StatementType = "xdebug_debug_zval"
)

// Token returns the source token a statement type matches on.
func (t StatementType) Token() string { return string(t) }

// Severity ranks findings for reporting and gating.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities so thresholds can compare them. Unknown values rank
// below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Statement is one detected debug statement. Statements are immutable once
// emitted: Type and Severity are pure functions of Content and never require
// re-reading the file.
type Statement struct {
	// ID is derived from RelPath, Line and Column, so it is stable across
	// re-scans of unchanged content.
	ID       string        `json:"id"`
	FilePath string        `json:"file_path"`
	RelPath  string        `json:"rel_path"`
	Line     int           `json:"line"`   // 1-based
	Column   int           `json:"column"` // 0-based offset into the raw line
	Content  string        `json:"content"`
	Context  string        `json:"context"`
	Type     StatementType `json:"type"`
	Severity Severity      `json:"severity"`
}

// FileError records a per-file scan failure. Failures are isolated: they are
// collected on the Result and never abort a batch.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// Result aggregates one scan. Statements are sorted by RelPath then Line, so
// output is deterministic for a fixed file set and content regardless of
// batch completion order.
type Result struct {
	Statements      []Statement   `json:"statements"`
	ScannedFiles    int           `json:"scanned_files"`
	TotalStatements int           `json:"total_statements"`
	Errors          []FileError   `json:"-"`
	ScanTime        time.Duration `json:"scan_time"`
}

// ErrorMessages renders the per-file errors for serialization.
func (r *Result) ErrorMessages() []string {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// MaxSeverity returns the highest severity present, or "" for an empty
// result. The staging gate compares this against its configured threshold.
func (r *Result) MaxSeverity() Severity {
	var max Severity
	for _, st := range r.Statements {
		if st.Severity.Rank() > max.Rank() {
			max = st.Severity
		}
	}
	return max
}
