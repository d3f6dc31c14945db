package insertion

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection means the selection is empty or out of range.
	ErrNoSelection = errors.New("no selection")

	// ErrAmbiguousSelection means the selection stops short of a call's
	// parentheses. The user must reselect; guessing the call boundary could
	// wrap the wrong expression.
	ErrAmbiguousSelection = errors.New("selection is an incomplete call")

	// ErrInStringLiteral means the selection sits inside a string literal.
	ErrInStringLiteral = errors.New("selection is inside a string literal")

	// ErrNotInsertable means the selection is not a variable access chain or
	// call expression.
	ErrNotInsertable = errors.New("selection is not an insertable expression")
)

// UnbalancedBracesError reports malformed brace structure. Insertion never
// proceeds against a document that fails the balance check.
type UnbalancedBracesError struct {
	// Line is the first line where a closing brace appears without a
	// matching open, or the last line when the document ends with braces
	// still open.
	Line int
}

func (e *UnbalancedBracesError) Error() string {
	return fmt.Sprintf("unbalanced braces at line %d", e.Line)
}
