// Package gate checks files staged in the git index for leftover debug
// statements, so a pre-commit hook can reject a commit before it lands.
package gate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"

	"debugsweep/internal/scanner"
)

// ErrNotARepository is returned when no git repository encloses the
// workspace root.
var ErrNotARepository = errors.New("not inside a git repository")

// Report is the outcome of one gate check. Staged holds the repo-relative
// paths that were scanned; Passed is false when any finding reaches the
// threshold severity.
type Report struct {
	Result    *scanner.Result
	Threshold scanner.Severity
	Staged    []string
	Passed    bool
}

// Gate scans staged files through an existing engine and compares the
// worst finding against a severity threshold.
type Gate struct {
	engine    *scanner.Engine
	repoRoot  string
	threshold scanner.Severity
	logger    hclog.Logger
}

// NewGate locates the repository enclosing the engine's workspace root.
// ErrNotARepository is returned when the workspace is not under version
// control.
func NewGate(engine *scanner.Engine, threshold scanner.Severity, logger hclog.Logger) (*Gate, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	repoRoot, err := FindRepositoryRoot(engine.Discovery().Root())
	if err != nil {
		return nil, err
	}

	return &Gate{
		engine:    engine,
		repoRoot:  repoRoot,
		threshold: threshold,
		logger:    logger.Named("gate"),
	}, nil
}

// RepoRoot returns the directory containing the enclosing .git.
func (g *Gate) RepoRoot() string {
	return g.repoRoot
}

// Threshold returns the severity at which the gate fails.
func (g *Gate) Threshold() scanner.Severity {
	return g.threshold
}

// StagedFiles returns the repo-relative paths staged for commit that the
// engine would scan. Staged deletions are skipped, as are files outside
// the engine's workspace or failing its extension and exclusion rules.
func (g *Gate) StagedFiles() ([]string, error) {
	repo, err := git.PlainOpen(g.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", g.repoRoot, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("read worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("read index status: %w", err)
	}

	workRoot := g.engine.Discovery().Root()
	var staged []string
	for relPath, fileStatus := range status {
		if !stagedForCommit(fileStatus.Staging) {
			continue
		}
		abs := filepath.Join(g.repoRoot, filepath.FromSlash(relPath))
		if !underDir(workRoot, abs) || !g.engine.Discovery().Eligible(abs) {
			continue
		}
		staged = append(staged, relPath)
	}

	sort.Strings(staged)
	return staged, nil
}

// Check scans the staged files and fails the report when any finding is at
// or above the threshold severity. The returned error covers repository
// access only; a failed gate is reported through Report.Passed.
func (g *Gate) Check(ctx context.Context) (*Report, error) {
	staged, err := g.StagedFiles()
	if err != nil {
		return nil, err
	}

	g.logger.Debug("checking staged files", "count", len(staged), "threshold", g.threshold)

	paths := make([]string, len(staged))
	for i, relPath := range staged {
		paths[i] = filepath.Join(g.repoRoot, filepath.FromSlash(relPath))
	}

	result := g.engine.ScanFiles(ctx, paths)
	passed := result.TotalStatements == 0 || result.MaxSeverity().Rank() < g.threshold.Rank()

	if !passed {
		g.logger.Debug("gate failed",
			"statements", result.TotalStatements,
			"worst", result.MaxSeverity(),
			"threshold", g.threshold)
	}

	return &Report{
		Result:    result,
		Threshold: g.threshold,
		Staged:    staged,
		Passed:    passed,
	}, nil
}

// FindRepositoryRoot walks upward from startDir until a directory opens as
// a git repository and returns that directory. ErrNotARepository is
// returned when the filesystem root is reached without finding one.
func FindRepositoryRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}

	for {
		if _, err := git.PlainOpen(dir); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", ErrNotARepository, startDir)
		}
		dir = parent
	}
}

// stagedForCommit reports whether a staging code means the path has index
// changes that will land in the next commit.
func stagedForCommit(code git.StatusCode) bool {
	switch code {
	case git.Added, git.Modified, git.Renamed, git.Copied:
		return true
	}
	return false
}

// underDir reports whether path lies inside dir.
func underDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
