package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Scan Engine
//
// The engine ties the lexical pieces together: sanitize, segment, classify,
// merge, map back to raw positions, cache, batch. The properties that must
// hold:
// - Comment/string exclusion: tokens in comments or string literals are
//   never reported
// - Columns point at real positions in the raw line, not sanitized offsets
// - Merge: a debug call immediately followed by bare exit/die is one
//   finding with severity error; adjacency is strict
// - Size gate and read failures are isolated per file, never abort a batch
// - Fingerprint cache: unchanged size+mtime short-circuits the re-read
// - Results are sorted by path then line regardless of input order
// - Re-entrant scan requests return an empty result, not a second scan
// - Workspace discovery honors skip-dirs, exclude globs and .gitignore

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestEngine(t *testing.T, root string, opts ...func(*Options)) *Engine {
	t.Helper()
	o := Options{RootDir: root}
	for _, fn := range opts {
		fn(&o)
	}
	e, err := NewEngine(o)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestScanFile_CommentAndStringExclusion(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "clean.php")
	writeFile(t, path, strings.Join([]string{
		`<?php`,
		`// var_dump($x);`,
		`$s = "var_dump($a)";`,
		`# print_r($s);`,
		``,
	}, "\n"))

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	assert.Empty(t, statements)
}

func TestScanFile_BlockCommentSpansLines(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "block.php")
	writeFile(t, path, strings.Join([]string{
		`<?php`,
		`/* debug leftovers below`,
		`die();`,
		`var_dump($x);`,
		`end */`,
		`echo $ok;`,
		``,
	}, "\n"))

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Equal(t, 6, statements[0].Line)
	assert.Equal(t, TypeEcho, statements[0].Type)
	assert.Equal(t, `echo $ok;`, statements[0].Content)
}

func TestScanFile_ColumnsMatchRawLine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "cols.php")
	writeFile(t, path, "<?php\necho $a; print_r($b);\n    var_dump($x);\n")

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 3)

	assert.Equal(t, 2, statements[0].Line)
	assert.Equal(t, 0, statements[0].Column)
	assert.Equal(t, `echo $a;`, statements[0].Content)

	assert.Equal(t, 2, statements[1].Line)
	assert.Equal(t, 9, statements[1].Column)
	assert.Equal(t, `print_r($b);`, statements[1].Content)

	// Indentation shifts the column; Context keeps the raw line.
	assert.Equal(t, 3, statements[2].Line)
	assert.Equal(t, 4, statements[2].Column)
	assert.Equal(t, `    var_dump($x);`, statements[2].Context)
}

func TestScanFile_TokenInStringBeforeLiveToken(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "dup.php")
	writeFile(t, path, "<?php\necho \"var_dump\"; var_dump($x);\n")

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 2)

	assert.Equal(t, TypeEcho, statements[0].Type)
	assert.Equal(t, `echo "var_dump";`, statements[0].Content)

	// The quoted occurrence at column 6 is dead text; the live call starts
	// at column 17.
	assert.Equal(t, TypeVarDump, statements[1].Type)
	assert.Equal(t, 17, statements[1].Column)
	assert.Equal(t, `var_dump($x);`, statements[1].Content)
}

func TestScanFile_MergesDumpAndHalt(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "merge.php")
	writeFile(t, path, "<?php\ndd($x); exit;\necho $a; exit;\n")

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 2)

	assert.Equal(t, TypeDD, statements[0].Type)
	assert.Equal(t, SeverityError, statements[0].Severity)
	assert.Equal(t, `dd($x); exit;`, statements[0].Content)

	// echo alone is info, but merged with its halt it reports as error.
	assert.Equal(t, TypeEcho, statements[1].Type)
	assert.Equal(t, SeverityError, statements[1].Severity)
	assert.Equal(t, `echo $a; exit;`, statements[1].Content)
}

func TestScanFile_MergeRequiresImmediateAdjacency(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "adjacent.php")
	writeFile(t, path, "<?php\nvar_dump($x); echo $y; exit;\n")

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 2)

	// The intervening echo breaks the var_dump/exit merge; the exit merges
	// with the echo instead.
	assert.Equal(t, TypeVarDump, statements[0].Type)
	assert.Equal(t, SeverityInfo, statements[0].Severity)
	assert.Equal(t, `var_dump($x);`, statements[0].Content)

	assert.Equal(t, TypeEcho, statements[1].Type)
	assert.Equal(t, SeverityError, statements[1].Severity)
	assert.Equal(t, `echo $y; exit;`, statements[1].Content)
}

func TestScanFile_StableIDs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "ids.php")
	writeFile(t, path, "<?php\nvar_dump($a);\n")

	e := newTestEngine(t, root)

	first, err := e.ScanFile(path)
	require.NoError(t, err)
	second, err := e.ScanFile(path)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, "ids.php:2:0", first[0].ID)
	assert.Equal(t, first, second)
}

func TestScanFile_SizeGate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	big := filepath.Join(root, "big.php")
	writeFile(t, big, strings.Repeat("echo $x;\n", 20))

	e := newTestEngine(t, root, func(o *Options) { o.MaxFileSize = 64 })

	_, err := e.ScanFile(big)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestScanFile_CRLFLines(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "crlf.php")
	writeFile(t, path, "<?php\r\nvar_dump($a);\r\necho $b;\r\n")

	e := newTestEngine(t, root)

	statements, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, `var_dump($a);`, statements[0].Content)
	assert.Equal(t, `var_dump($a);`, statements[0].Context)
}

func TestScanFile_FingerprintCacheSkipsRead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "cached.php")
	writeFile(t, path, "var_dump($a);\n")

	e := newTestEngine(t, root)

	first, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, `var_dump($a);`, first[0].Content)

	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same byte length, same restored mtime: the fingerprint cannot tell the
	// difference, so the cached result must come back without a re-read.
	writeFile(t, path, "var_dump($b);\n")
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	cached, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, `var_dump($a);`, cached[0].Content)

	// Bumping the mtime invalidates the fingerprint.
	require.NoError(t, os.Chtimes(path, info.ModTime().Add(time.Second), info.ModTime().Add(time.Second)))

	fresh, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, `var_dump($b);`, fresh[0].Content)
}

func TestEngine_Invalidate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "inval.php")
	writeFile(t, path, "var_dump($a);\n")

	e := newTestEngine(t, root)

	_, err := e.ScanFile(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	writeFile(t, path, "var_dump($b);\n")
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	e.Invalidate(path)

	fresh, err := e.ScanFile(path)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, `var_dump($b);`, fresh[0].Content)
}

func TestScanFiles_ErrorIsolation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	big := filepath.Join(root, "big.php")
	ok := filepath.Join(root, "ok.php")
	missing := filepath.Join(root, "missing.php")
	writeFile(t, big, strings.Repeat("echo $x;\n", 20))
	writeFile(t, ok, "<?php\nvar_dump($a);\n")

	e := newTestEngine(t, root, func(o *Options) { o.MaxFileSize = 64 })

	result := e.ScanFiles(context.Background(), []string{big, ok, missing})

	// All three were attempted; only the readable small file contributed.
	assert.Equal(t, 3, result.ScannedFiles)
	assert.Equal(t, 1, result.TotalStatements)
	require.Len(t, result.Errors, 2)

	var tooLarge bool
	for _, fe := range result.Errors {
		if errors.Is(fe, ErrFileTooLarge) {
			tooLarge = true
		}
	}
	assert.True(t, tooLarge)
}

func TestScanFiles_SortedByPathThenLine(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "a.php")
	b := filepath.Join(root, "b.php")
	writeFile(t, a, "<?php\n\nvar_dump($a);\n")
	writeFile(t, b, "<?php\nvar_dump($b1);\n\nvar_dump($b2);\n")

	e := newTestEngine(t, root)

	// Input order deliberately reversed.
	result := e.ScanFiles(context.Background(), []string{b, a})

	require.Len(t, result.Statements, 3)
	assert.Equal(t, "a.php", result.Statements[0].RelPath)
	assert.Equal(t, 3, result.Statements[0].Line)
	assert.Equal(t, "b.php", result.Statements[1].RelPath)
	assert.Equal(t, 2, result.Statements[1].Line)
	assert.Equal(t, "b.php", result.Statements[2].RelPath)
	assert.Equal(t, 4, result.Statements[2].Line)
}

func TestScanFiles_FiltersIneligiblePaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	txt := filepath.Join(root, "notes.txt")
	writeFile(t, txt, "var_dump($a);\n")

	e := newTestEngine(t, root)

	result := e.ScanFiles(context.Background(), []string{txt})

	assert.Zero(t, result.ScannedFiles)
	assert.Empty(t, result.Statements)
	assert.Empty(t, result.Errors)
}

func TestScanFiles_ReentrantCallReturnsEmpty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "busy.php")
	writeFile(t, path, "var_dump($a);\n")

	e := newTestEngine(t, root)

	e.scanning.Store(true)
	result := e.ScanFiles(context.Background(), []string{path})
	e.scanning.Store(false)

	assert.Zero(t, result.ScannedFiles)
	assert.Empty(t, result.Statements)
	assert.Zero(t, result.ScanTime)

	// The engine recovers once the in-flight scan finishes.
	result = e.ScanFiles(context.Background(), []string{path})
	assert.Equal(t, 1, result.TotalStatements)
}

func TestScanFiles_ProgressCallback(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "a.php")
	b := filepath.Join(root, "b.php")
	writeFile(t, a, "echo $a;\n")
	writeFile(t, b, "echo $b;\n")

	var calls []int
	e := newTestEngine(t, root, func(o *Options) {
		o.Progress = func(done, total int) {
			calls = append(calls, done)
			assert.Equal(t, 2, total)
		}
	})

	e.ScanFiles(context.Background(), []string{a, b})

	assert.Equal(t, []int{1, 2}, calls)
}

func TestScanWorkspace_SkipsConventionalAndExcludedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.php"), "var_dump($a);\n")
	writeFile(t, filepath.Join(root, "vendor", "lib.php"), "var_dump($v);\n")
	writeFile(t, filepath.Join(root, "node_modules", "x.php"), "var_dump($n);\n")
	writeFile(t, filepath.Join(root, "storage", "log.php"), "var_dump($s);\n")
	writeFile(t, filepath.Join(root, "README.md"), "var_dump($m);\n")

	e := newTestEngine(t, root, func(o *Options) {
		o.ExcludePatterns = []string{"storage/**"}
	})

	result := e.ScanWorkspace(context.Background())

	require.Len(t, result.Statements, 1)
	assert.Equal(t, "src/app.php", result.Statements[0].RelPath)
	assert.Equal(t, 1, result.ScannedFiles)
}

func TestScanWorkspace_RespectsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "ignored/\n")
	writeFile(t, filepath.Join(root, "kept.php"), "echo $a;\n")
	writeFile(t, filepath.Join(root, "ignored", "skip.php"), "echo $b;\n")

	on := newTestEngine(t, root, func(o *Options) { o.RespectGitignore = true })
	result := on.ScanWorkspace(context.Background())
	require.Len(t, result.Statements, 1)
	assert.Equal(t, "kept.php", result.Statements[0].RelPath)

	off := newTestEngine(t, root)
	result = off.ScanWorkspace(context.Background())
	assert.Len(t, result.Statements, 2)
}

func TestScanFile_RealisticSource(t *testing.T) {
	t.Parallel()

	root, err := filepath.Abs("testdata")
	require.NoError(t, err)
	e := newTestEngine(t, root)

	statements, err := e.ScanFile(filepath.Join(root, "legacy.php"))
	require.NoError(t, err)
	require.Len(t, statements, 3)

	assert.Equal(t, TypeVarDump, statements[0].Type)
	assert.Equal(t, 10, statements[0].Line)
	assert.Equal(t, 8, statements[0].Column)
	assert.Equal(t, SeverityInfo, statements[0].Severity)

	assert.Equal(t, TypeErrorLog, statements[1].Type)
	assert.Equal(t, 13, statements[1].Line)
	assert.Equal(t, SeverityWarning, statements[1].Severity)

	assert.Equal(t, TypeDD, statements[2].Type)
	assert.Equal(t, 18, statements[2].Line)
	assert.Equal(t, SeverityError, statements[2].Severity)
}
