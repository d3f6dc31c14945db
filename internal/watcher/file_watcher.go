// Package watcher provides debounced filesystem watching for watch mode.
//
// A FileWatcher follows the workspace tree with fsnotify, filters events down
// to scannable files, and coalesces bursts of events into one callback per
// debounce window. A GitWatcher follows .git/HEAD so branch switches can be
// handled as a single full re-scan instead of a storm of per-file events. The
// WatchCoordinator wires both to the scan engine.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"debugsweep/internal/scanner"
)

// fileWatcher implements FileWatcher on top of fsnotify. Event filtering and
// directory pruning delegate to the scanner's discovery rules so the watch
// set always matches what a scan would visit.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	discovery     *scanner.FileDiscovery
	debounceTime  time.Duration
	logger        hclog.Logger
	callback      func(files []string)
	ctx           context.Context
	cancel        context.CancelFunc
	paused        bool
	pausedMu      sync.RWMutex
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// NewFileWatcher creates a watcher over the discovery's root. Directories the
// discovery would skip are not watched; events for ineligible files are
// dropped. debounce is the quiet period before a callback fires.
func NewFileWatcher(discovery *scanner.FileDiscovery, debounce time.Duration, logger hclog.Logger) (FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	fw := &fileWatcher{
		watcher:      w,
		discovery:    discovery,
		debounceTime: debounce,
		logger:       logger.Named("watcher"),
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	if err := fw.addDirectoriesRecursively(discovery.Root()); err != nil {
		w.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()

			// Wait for the watch goroutine, which only runs after Start()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if !wasPaused {
		return
	}

	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := drainAccumulated(&fw.accumulated)
	fw.accumulatedMu.Unlock()

	if fw.callback != nil {
		fw.callback(files)
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	rescanCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// A created directory needs its subtree added to the watch set
			if event.Op&fsnotify.Create != 0 && isDir(event.Name) && fw.discovery.WatchableDir(event.Name) {
				if err := fw.addDirectoriesRecursively(event.Name); err != nil {
					fw.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(rescanCh)

		case <-rescanCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", "error", err)
		}
	}
}

// handleDebounceExpired fires the callback with the accumulated batch unless
// the watcher is paused, in which case the batch keeps growing.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()

	if paused {
		return
	}

	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := drainAccumulated(&fw.accumulated)
	fw.accumulatedMu.Unlock()

	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer restarts the quiet-period timer, stopping and draining
// any previous one.
func (fw *fileWatcher) resetDebounceTimer(rescanCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		if !fw.debounceTimer.Stop() {
			select {
			case <-fw.debounceTimer.C:
			default:
			}
		}
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case rescanCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps write, create and remove events for eligible
// files. Remove matters so deleted files drop out of the findings.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}
	return fw.discovery.Eligible(event.Name)
}

// addDirectoriesRecursively adds every watchable directory in the tree to
// the watch set. Unreadable subtrees are logged and skipped.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.Warn("cannot access path", "path", path, "error", err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if !fw.discovery.WatchableDir(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		}

		return nil
	})
}

// drainAccumulated empties the set and returns its members.
func drainAccumulated(set *map[string]bool) []string {
	files := make([]string, 0, len(*set))
	for file := range *set {
		files = append(files, file)
	}
	*set = make(map[string]bool)
	return files
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
