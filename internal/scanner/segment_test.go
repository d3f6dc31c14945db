package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentLine_SplitsOnBareSemicolons(t *testing.T) {
	t.Parallel()

	segs := segmentLine(`echo $a; print_r($b);`)

	require.Len(t, segs, 2)
	assert.Equal(t, `echo $a`, segs[0].text)
	assert.Equal(t, 0, segs[0].start)
	assert.Equal(t, 7, segs[0].end)
	assert.Equal(t, ` print_r($b)`, segs[1].text)
	assert.Equal(t, 8, segs[1].start)
	assert.Equal(t, 20, segs[1].end)
}

func TestSegmentLine_NestedSemicolonsNotTerminators(t *testing.T) {
	t.Parallel()

	// The for-header semicolons sit at paren depth 1.
	segs := segmentLine(`for ($i = 0; $i < 10; $i++) doWork();`)

	require.Len(t, segs, 1)
	assert.Equal(t, `for ($i = 0; $i < 10; $i++) doWork()`, segs[0].text)
}

func TestSegmentLine_TrailingFragmentDropped(t *testing.T) {
	t.Parallel()

	// An unterminated statement cannot be attributed to this line.
	segs := segmentLine(`echo $a; var_dump(`)

	require.Len(t, segs, 1)
	assert.Equal(t, `echo $a`, segs[0].text)
}

func TestSegmentLine_EmptySegmentsDropped(t *testing.T) {
	t.Parallel()

	segs := segmentLine(`;;  ; echo $a;`)

	require.Len(t, segs, 1)
	assert.Equal(t, ` echo $a`, segs[0].text)
}

func TestSegmentLine_ContinuationLineSegments(t *testing.T) {
	t.Parallel()

	// A line beginning mid-expression dips below depth zero; its closing
	// semicolon still terminates.
	segs := segmentLine(`); echo $b;`)

	require.Len(t, segs, 2)
	assert.Equal(t, `)`, segs[0].text)
	assert.Equal(t, ` echo $b`, segs[1].text)
}

// A statement wrapped in braces on the same line sits at brace depth 1, so
// its semicolon is not a terminator and nothing segments. Statements on
// their own lines are the detection target; this is a known trade of the
// lexical approach.
func TestSegmentLine_BraceWrappedStatementNotSplit(t *testing.T) {
	t.Parallel()

	segs := segmentLine(`if ($debug) { var_dump($x); }`)
	assert.Empty(t, segs)
}

func TestSegmentTokenOffset(t *testing.T) {
	t.Parallel()

	segs := segmentLine(`   var_dump($x);`)

	require.Len(t, segs, 1)
	assert.Equal(t, 3, segs[0].tokenOffset())
}
