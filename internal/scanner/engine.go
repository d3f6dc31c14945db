// Package scanner finds leftover debug statements in PHP source trees. It
// works lexically: lines are sanitized by the cursor state machine, split
// into semicolon-terminated segments, classified against a fixed token
// table, and mapped back to their true positions in the raw source. No
// syntax tree is built, so calls reachable only through aliasing, reflection
// or dynamic dispatch are out of scope.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"debugsweep/internal/cursor"
)

const (
	// DefaultMaxFileSize is the per-file size ceiling in bytes.
	DefaultMaxFileSize = 1 << 20

	// DefaultBatchSize bounds how many files are scanned at once.
	DefaultBatchSize = 20
)

// DefaultExtensions returns the file extensions scanned when none are
// configured.
func DefaultExtensions() []string {
	return []string{".php", ".phtml", ".inc"}
}

// Options configure one Engine instance. They are fixed for the engine's
// lifetime; a configuration reload builds a new engine.
type Options struct {
	RootDir          string
	MaxFileSize      int64
	Extensions       []string
	ExcludePatterns  []string
	BatchSize        int
	RespectGitignore bool
	Logger           hclog.Logger

	// Progress, when set, is called after each file in a batch completes.
	Progress func(done, total int)
}

// Engine orchestrates scanning. Each engine owns its cache, its compiled
// exclude rules and the scan-in-progress flag; only one logical scan runs
// per engine at a time, and an overlapping request returns an empty result
// rather than queueing.
type Engine struct {
	opts      Options
	discovery *FileDiscovery
	cache     *fileCache
	logger    hclog.Logger
	scanning  atomic.Bool
}

// NewEngine compiles the exclude rules and prepares the result cache.
func NewEngine(opts Options) (*Engine, error) {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions()
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	discovery, err := NewFileDiscovery(opts.RootDir, opts.Extensions, opts.ExcludePatterns, opts.RespectGitignore)
	if err != nil {
		return nil, fmt.Errorf("compile exclude patterns: %w", err)
	}

	cache, err := newFileCache()
	if err != nil {
		return nil, fmt.Errorf("create file cache: %w", err)
	}

	return &Engine{
		opts:      opts,
		discovery: discovery,
		cache:     cache,
		logger:    opts.Logger.Named("scanner"),
	}, nil
}

// Close releases the result cache.
func (e *Engine) Close() {
	e.cache.close()
}

// Discovery exposes the engine's compiled eligibility rules so collaborators
// (watcher, gate) filter paths the same way the engine does.
func (e *Engine) Discovery() *FileDiscovery {
	return e.discovery
}

// Invalidate drops the cached result for a path. The watcher calls this for
// deleted files; modified files invalidate themselves via the fingerprint.
func (e *Engine) Invalidate(path string) {
	e.cache.invalidate(path)
}

// ScanFile scans a single file and returns its statements in line order.
// It fails with ErrFileTooLarge when the file exceeds the size ceiling and
// with a wrapped I/O error when the file cannot be read. An unchanged file
// (same size and mtime as the cached entry) returns the cached statements
// without re-reading.
func (e *Engine) ScanFile(path string) ([]Statement, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > e.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	if statements, ok := e.cache.lookup(path, info); ok {
		e.logger.Debug("fingerprint unchanged, using cached result", "path", path)
		return statements, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	statements := e.scanContent(path, string(data))
	e.cache.store(path, info, statements)
	return statements, nil
}

// ScanWorkspace enumerates eligible files under the root and scans them.
// Unreadable subtrees surface as per-file errors on the result; the walk
// continues elsewhere.
func (e *Engine) ScanWorkspace(ctx context.Context) *Result {
	if e.scanning.Load() {
		e.logger.Warn("returning empty result", "error", ErrScanInProgress)
		return emptyResult()
	}

	files, errs := e.discovery.Discover()
	sort.Strings(files)

	result := e.ScanFiles(ctx, files)
	result.Errors = append(result.Errors, errs...)
	return result
}

// ScanFiles scans the given paths in bounded batches. Paths that fail the
// extension or exclusion rules are dropped up front. Per-file failures are
// recorded on the result and never abort the batch; ScannedFiles counts
// every attempted file, errored ones included.
func (e *Engine) ScanFiles(ctx context.Context, paths []string) *Result {
	if !e.scanning.CompareAndSwap(false, true) {
		e.logger.Warn("returning empty result", "error", ErrScanInProgress)
		return emptyResult()
	}
	defer e.scanning.Store(false)

	start := time.Now()

	eligible := make([]string, 0, len(paths))
	for _, p := range paths {
		if e.discovery.Eligible(p) {
			eligible = append(eligible, p)
		}
	}

	e.logger.Debug("scanning files", "eligible", len(eligible), "given", len(paths))

	result := &Result{Statements: []Statement{}}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(e.opts.BatchSize)

	for _, path := range eligible {
		g.Go(func() error {
			// Cancellation is checked between files only; a file mid-scan
			// always finishes.
			if ctx.Err() != nil {
				return nil
			}
			statements, err := e.ScanFile(path)

			mu.Lock()
			defer mu.Unlock()
			result.ScannedFiles++
			if err != nil {
				result.Errors = append(result.Errors, FileError{Path: path, Err: err})
			} else {
				result.Statements = append(result.Statements, statements...)
			}
			if e.opts.Progress != nil {
				e.opts.Progress(result.ScannedFiles, len(eligible))
			}
			return nil
		})
	}
	_ = g.Wait()

	sortStatements(result.Statements)
	result.TotalStatements = len(result.Statements)
	result.ScanTime = time.Since(start)

	e.logger.Debug("scan complete",
		"files", result.ScannedFiles,
		"statements", result.TotalStatements,
		"errors", len(result.Errors),
		"elapsed", result.ScanTime)
	return result
}

// scanContent runs the line scan over full file content, threading the
// block-comment state from each line into the next.
func (e *Engine) scanContent(path, content string) []Statement {
	relPath := e.relPath(path)

	var statements []Statement
	var st cursor.State

	for idx, raw := range strings.Split(content, "\n") {
		raw = strings.TrimSuffix(raw, "\r")

		sanitized, next := cursor.Sanitize(raw, st)
		st = next

		if !mayContainStatement(sanitized) {
			continue
		}
		statements = append(statements, e.scanLine(path, relPath, idx+1, raw, sanitized)...)
	}
	return statements
}

// scanLine segments one sanitized line, classifies each segment, merges a
// debug call with an immediately following bare exit/die, and maps every
// retained statement back to its true span in the raw line.
func (e *Engine) scanLine(path, relPath string, lineNo int, raw, sanitized string) []Statement {
	segs := segmentLine(sanitized)

	var out []Statement
	for i := 0; i < len(segs); i++ {
		typ, ok := Classify(segs[i].text)
		if !ok {
			continue
		}

		col := locateToken(raw, typ.Token(), segs[i].tokenOffset())
		if col < 0 {
			continue
		}

		// dump($x); exit; is one dump-and-halt idiom. Reporting it as two
		// findings would double-count and let a user clear only half of it.
		merged := i+1 < len(segs) && isExitTail(segs[i+1].text)

		end := cursor.FindBareTerminator(raw, col)
		if merged {
			tail := -1
			if end >= 0 {
				tail = cursor.FindBareTerminator(raw, end+1)
			}
			if tail >= 0 {
				end = tail
			} else {
				merged = false
			}
		}

		var content string
		if end >= 0 {
			content = strings.TrimSpace(raw[col : end+1])
		} else {
			content = strings.TrimSpace(raw[col:])
		}

		severity := SeverityFor(typ)
		if merged {
			severity = SeverityError
		}

		out = append(out, Statement{
			ID:       fmt.Sprintf("%s:%d:%d", relPath, lineNo, col),
			FilePath: path,
			RelPath:  relPath,
			Line:     lineNo,
			Column:   col,
			Content:  content,
			Context:  raw,
			Type:     typ,
			Severity: severity,
		})

		if merged {
			i++
		}
	}
	return out
}

// locateToken finds the token's true column in the raw line. Sanitization
// only removes characters, so the raw position is at or after the sanitized
// offset; scanning from there skips any identical token that sanitization
// removed from a string. Falls back to the first live occurrence anywhere,
// then to a plain index.
func locateToken(raw, token string, sanitizedOffset int) int {
	if col := cursor.TokenAt(raw, token, sanitizedOffset); col >= 0 {
		return col
	}
	if col := cursor.TokenAt(raw, token, 0); col >= 0 {
		return col
	}
	return strings.Index(raw, token)
}

func (e *Engine) relPath(path string) string {
	rel, err := filepath.Rel(e.opts.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func emptyResult() *Result {
	return &Result{Statements: []Statement{}}
}

func sortStatements(statements []Statement) {
	sort.Slice(statements, func(i, j int) bool {
		if statements[i].FilePath != statements[j].FilePath {
			return statements[i].FilePath < statements[j].FilePath
		}
		if statements[i].Line != statements[j].Line {
			return statements[i].Line < statements[j].Line
		}
		return statements[i].Column < statements[j].Column
	})
}
