package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// gitWatcher is the concrete implementation of GitWatcher.
type gitWatcher struct {
	gitDir     string
	headPath   string
	watcher    *fsnotify.Watcher
	logger     hclog.Logger
	lastBranch string
	stopCh     chan struct{}
	doneCh     chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex // Protects lastBranch
}

// NewGitWatcher creates a GitWatcher for the given .git directory. Returns an
// error if .git/HEAD does not exist or cannot be read.
func NewGitWatcher(gitDir string, logger hclog.Logger) (GitWatcher, error) {
	headPath := filepath.Join(gitDir, "HEAD")

	if _, err := os.Stat(headPath); err != nil {
		return nil, fmt.Errorf("cannot access .git/HEAD: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	initialBranch, err := readBranch(headPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to read initial branch: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &gitWatcher{
		gitDir:     gitDir,
		headPath:   headPath,
		watcher:    watcher,
		logger:     logger.Named("git-watcher"),
		lastBranch: initialBranch,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

// Start begins monitoring .git/HEAD for changes.
func (gw *gitWatcher) Start(ctx context.Context, callback func(oldBranch, newBranch string)) error {
	// Watch the .git directory instead of the HEAD file directly so the
	// file is still caught when git deletes and recreates it.
	if err := gw.watcher.Add(gw.gitDir); err != nil {
		return fmt.Errorf("failed to watch .git directory: %w", err)
	}

	go gw.watch(ctx, callback)

	return nil
}

// Stop stops the watcher and cleans up resources.
func (gw *gitWatcher) Stop() error {
	var err error
	gw.stopOnce.Do(func() {
		close(gw.stopCh)
		<-gw.doneCh
		err = gw.watcher.Close()
	})
	return err
}

// CurrentBranch returns the last observed branch name.
func (gw *gitWatcher) CurrentBranch() string {
	gw.mu.RLock()
	defer gw.mu.RUnlock()
	return gw.lastBranch
}

// watch is the main event loop.
func (gw *gitWatcher) watch(ctx context.Context, callback func(oldBranch, newBranch string)) {
	defer close(gw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-gw.stopCh:
			return

		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}

			if event.Name != gw.headPath {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}

			// A removed HEAD comes back as a Create when git rewrites it
			if event.Op&fsnotify.Remove != 0 {
				continue
			}

			newBranch, err := readBranch(gw.headPath)
			if err != nil {
				gw.logger.Warn("failed to read .git/HEAD", "error", err)
				continue
			}

			gw.mu.RLock()
			oldBranch := gw.lastBranch
			gw.mu.RUnlock()

			if newBranch != oldBranch {
				gw.mu.Lock()
				gw.lastBranch = newBranch
				gw.mu.Unlock()

				// Fire callback with panic recovery
				func() {
					defer func() {
						if r := recover(); r != nil {
							gw.logger.Error("branch callback panic", "panic", r)
						}
					}()
					callback(oldBranch, newBranch)
				}()
			}

		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			gw.logger.Warn("git watch error", "error", err)
		}
	}
}

// readBranch reads and parses the current branch from .git/HEAD.
func readBranch(headPath string) (string, error) {
	content, err := os.ReadFile(headPath)
	if err != nil {
		return "", err
	}
	return parseBranch(content), nil
}

// parseBranch parses a branch name from HEAD file content. A bare commit
// hash means a detached HEAD.
func parseBranch(content []byte) string {
	line := strings.TrimSpace(string(content))

	if strings.HasPrefix(line, "ref: refs/heads/") {
		return strings.TrimSpace(strings.TrimPrefix(line, "ref: refs/heads/"))
	}

	if len(line) == 40 && isHexString(line) {
		return "detached"
	}

	return line
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
