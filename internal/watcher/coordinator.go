package watcher

import (
	"context"
	"os"

	"github.com/hashicorp/go-hclog"

	"debugsweep/internal/scanner"
)

// WatchCoordinator routes watcher events to the scan engine. File change
// batches become targeted re-scans; a branch switch pauses file watching and
// triggers one full workspace re-scan, since a checkout rewrites far more
// files than its individual events are worth chasing.
type WatchCoordinator struct {
	git      GitWatcher // nil outside a git repository
	files    FileWatcher
	engine   Rescanner
	onResult func(changed []string, res *scanner.Result)
	logger   hclog.Logger
}

// NewWatchCoordinator creates a coordinator. git may be nil when the
// workspace is not a git repository. onResult receives every re-scan result;
// changed lists the event paths that triggered it, nil for a full re-scan.
func NewWatchCoordinator(
	git GitWatcher,
	files FileWatcher,
	engine Rescanner,
	logger hclog.Logger,
	onResult func(changed []string, res *scanner.Result),
) *WatchCoordinator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &WatchCoordinator{
		git:      git,
		files:    files,
		engine:   engine,
		onResult: onResult,
		logger:   logger.Named("watch"),
	}
}

// Start begins coordinating watchers and routing events to the engine.
// Blocks until the context is cancelled or a watcher fails to start.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	if c.git != nil {
		go func() {
			if err := c.git.Start(ctx, c.handleBranchSwitch); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := c.files.Start(ctx, c.handleFileChange); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		c.cleanup()
		return err
	case <-ctx.Done():
		c.cleanup()
		return ctx.Err()
	}
}

// cleanup stops both watchers.
func (c *WatchCoordinator) cleanup() {
	if c.git != nil {
		if err := c.git.Stop(); err != nil {
			c.logger.Warn("git watcher stop failed", "error", err)
		}
	}

	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "error", err)
	}
}

// handleBranchSwitch runs one full re-scan for the whole checkout:
// 1. Pause file watching so the event storm accumulates silently
// 2. Re-scan the workspace
// 3. Resume file watching
func (c *WatchCoordinator) handleBranchSwitch(oldBranch, newBranch string) {
	c.logger.Info("branch switch detected", "from", oldBranch, "to", newBranch)

	c.files.Pause()
	defer c.files.Resume()

	res := c.engine.ScanWorkspace(context.Background())
	if c.onResult != nil {
		c.onResult(nil, res)
	}
}

// handleFileChange re-scans the changed files. Paths that no longer exist
// are invalidated in the engine cache so stale findings drop out.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.logger.Debug("file changes detected", "count", len(files))

	live := files[:0:0]
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			c.engine.Invalidate(f)
			continue
		}
		live = append(live, f)
	}

	res := c.engine.ScanFiles(context.Background(), live)
	if c.onResult != nil {
		c.onResult(files, res)
	}
}
