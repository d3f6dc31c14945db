package watcher

import (
	"context"

	"debugsweep/internal/scanner"
)

// FileWatcher monitors eligible source files for changes with debouncing and
// pause/resume support.
type FileWatcher interface {
	// Start begins watching the workspace, calling callback with debounced
	// batches of changed file paths.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// GitWatcher monitors .git/HEAD for branch switches.
type GitWatcher interface {
	// Start begins monitoring, calling callback on each branch change.
	Start(ctx context.Context, callback func(oldBranch, newBranch string)) error

	// Stop stops the watcher and cleans up resources.
	Stop() error

	// CurrentBranch returns the last observed branch name.
	CurrentBranch() string
}

// Rescanner is the slice of the scan engine the coordinator drives: targeted
// re-scans after file events, a full re-scan after a branch switch, and cache
// invalidation for deleted files.
type Rescanner interface {
	ScanFiles(ctx context.Context, paths []string) *scanner.Result
	ScanWorkspace(ctx context.Context) *scanner.Result
	Invalidate(path string)
}
