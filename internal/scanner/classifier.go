package scanner

import (
	"regexp"
	"strings"
)

// The classification table. Rules are tried in order against the fragment's
// leading token; order matters only where one token prefixes another
// (print_r and printf before print), and each rule requires its own
// following syntax so collisions cannot misfire: call-style tokens need an
// opening paren, echo and print need trailing whitespace, and bare exit/die
// allow an optional parenthesized argument or nothing at all.
//
// Matching is case-sensitive. The tokens are conventionally lowercase in
// source and the table is fixed, not user-extensible.
var classifyRules = []struct {
	typ StatementType
	re  *regexp.Regexp
}{
	{TypeVarDump, regexp.MustCompile(`^var_dump\s*\(`)},
	{TypeVarExport, regexp.MustCompile(`^var_export\s*\(`)},
	{TypePrintR, regexp.MustCompile(`^print_r\s*\(`)},
	{TypePrintf, regexp.MustCompile(`^printf\s*\(`)},
	{TypeEcho, regexp.MustCompile(`^echo\s`)},
	{TypePrint, regexp.MustCompile(`^print\s`)},
	{TypeErrorLog, regexp.MustCompile(`^error_log\s*\(`)},
	{TypeTriggerError, regexp.MustCompile(`^trigger_error\s*\(`)},
	{TypeUserError, regexp.MustCompile(`^user_error\s*\(`)},
	{TypeDebugBacktrace, regexp.MustCompile(`^debug_backtrace\s*\(`)},
	{TypeXdebugVarDump, regexp.MustCompile(`^xdebug_var_dump\s*\(`)},
	{TypeXdebugZval, regexp.MustCompile(`^xdebug_debug_zval\s*\(`)},
	{TypeXdebugBreak, regexp.MustCompile(`^xdebug_break\s*\(`)},
	{TypeDD, regexp.MustCompile(`^dd\s*\(`)},
	{TypeDump, regexp.MustCompile(`^dump\s*\(`)},
	{TypeExit, regexp.MustCompile(`^exit\s*(\(|$)`)},
	{TypeDie, regexp.MustCompile(`^die\s*(\(|$)`)},
}

// exitTailRe matches a segment that is exactly a bare exit or die, with an
// optional parenthesized argument. Such a segment merges into the preceding
// debug statement instead of being emitted on its own.
var exitTailRe = regexp.MustCompile(`^\s*(exit|die)\s*(\([^()]*\))?\s*$`)

// prefilterTokens is the cheap containment check run on a sanitized line
// before segmentation. A line containing none of these cannot classify.
var prefilterTokens = func() []string {
	tokens := make([]string, 0, len(classifyRules))
	for _, r := range classifyRules {
		tokens = append(tokens, r.typ.Token())
	}
	return tokens
}()

// Classify maps a statement fragment to its debug type. Callers pass
// sanitized text only; occurrences inside strings or comments have already
// been removed by the time a fragment reaches this table.
func Classify(fragment string) (StatementType, bool) {
	trimmed := strings.TrimLeft(fragment, " \t")
	for _, r := range classifyRules {
		if r.re.MatchString(trimmed) {
			return r.typ, true
		}
	}
	return "", false
}

// SeverityFor derives a severity from a statement type: error for
// termination-style calls, warning for logging and trigger calls, info for
// the rest.
func SeverityFor(t StatementType) Severity {
	switch t {
	case TypeDie, TypeExit, TypeDD:
		return SeverityError
	case TypeErrorLog, TypeTriggerError, TypeUserError:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// isExitTail reports whether a segment is a bare exit/die eligible to merge
// into the preceding debug statement.
func isExitTail(fragment string) bool {
	return exitTailRe.MatchString(fragment)
}

// mayContainStatement is the segmentation pre-filter: true when the
// sanitized line contains at least one classifiable token anywhere.
func mayContainStatement(sanitized string) bool {
	for _, tok := range prefilterTokens {
		if strings.Contains(sanitized, tok) {
			return true
		}
	}
	return false
}
