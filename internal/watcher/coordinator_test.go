package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugsweep/internal/scanner"
)

// Test Plan for WatchCoordinator:
// - File change batch triggers a targeted re-scan and reports the result
// - Deleted files are invalidated in the engine instead of scanned
// - Branch switch pauses file watching, runs a full re-scan, resumes
// - File changes during a branch switch are queued until resume
// - Empty change batch is a no-op
// - Works without a git watcher (non-repo workspace)
// - Watcher startup errors propagate out of Start
// - Context cancellation stops both watchers
// - Stop errors during cleanup do not panic

// mockGitWatcher implements GitWatcher for testing.
type mockGitWatcher struct {
	startErr   error
	stopErr    error
	callback   func(oldBranch, newBranch string)
	stopCalled bool
	mu         sync.Mutex
}

func (m *mockGitWatcher) Start(ctx context.Context, callback func(oldBranch, newBranch string)) error {
	m.mu.Lock()
	m.callback = callback
	startErr := m.startErr
	m.mu.Unlock()

	if startErr != nil {
		return startErr
	}

	<-ctx.Done()
	return nil
}

func (m *mockGitWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return m.stopErr
}

func (m *mockGitWatcher) CurrentBranch() string { return "main" }

func (m *mockGitWatcher) triggerBranchSwitch(oldBranch, newBranch string) {
	m.mu.Lock()
	callback := m.callback
	m.mu.Unlock()

	if callback != nil {
		callback(oldBranch, newBranch)
	}
}

// mockFileWatcher implements FileWatcher for testing.
type mockFileWatcher struct {
	startErr    error
	stopErr     error
	callback    func(files []string)
	pauseCount  int
	resumeCount int
	stopCalled  bool
	paused      bool
	queued      [][]string
	mu          sync.Mutex
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.mu.Lock()
	m.callback = callback
	startErr := m.startErr
	m.mu.Unlock()

	if startErr != nil {
		return startErr
	}

	<-ctx.Done()
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return m.stopErr
}

func (m *mockFileWatcher) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCount++
	m.paused = true
}

func (m *mockFileWatcher) Resume() {
	m.mu.Lock()
	m.resumeCount++
	m.paused = false
	queued := m.queued
	m.queued = nil
	callback := m.callback
	m.mu.Unlock()

	for _, files := range queued {
		if callback != nil {
			callback(files)
		}
	}
}

func (m *mockFileWatcher) triggerFileChange(files []string) {
	m.mu.Lock()
	if m.paused {
		m.queued = append(m.queued, files)
		m.mu.Unlock()
		return
	}
	callback := m.callback
	m.mu.Unlock()

	if callback != nil {
		callback(files)
	}
}

// mockEngine implements Rescanner for testing.
type mockEngine struct {
	scanFileCalls  [][]string
	workspaceScans int
	invalidated    []string
	mu             sync.Mutex
}

func (m *mockEngine) ScanFiles(ctx context.Context, paths []string) *scanner.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanFileCalls = append(m.scanFileCalls, paths)
	return &scanner.Result{ScannedFiles: len(paths)}
}

func (m *mockEngine) ScanWorkspace(ctx context.Context) *scanner.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workspaceScans++
	return &scanner.Result{}
}

func (m *mockEngine) Invalidate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, path)
}

// resultLog records onResult invocations.
type resultLog struct {
	mu    sync.Mutex
	calls []struct {
		changed []string
		res     *scanner.Result
	}
}

func (l *resultLog) record(changed []string, res *scanner.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, struct {
		changed []string
		res     *scanner.Result
	}{changed, res})
}

func (l *resultLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func setupCoordinator() (*WatchCoordinator, *mockGitWatcher, *mockFileWatcher, *mockEngine, *resultLog) {
	git := &mockGitWatcher{}
	files := &mockFileWatcher{}
	engine := &mockEngine{}
	results := &resultLog{}

	coord := NewWatchCoordinator(git, files, engine, nil, results.record)
	return coord, git, files, engine, results
}

func TestWatchCoordinator_FileChangeTriggersTargetedScan(t *testing.T) {
	t.Parallel()

	coord, _, files, engine, results := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	// Real files so the coordinator's existence check passes
	root := t.TempDir()
	one := filepath.Join(root, "one.php")
	two := filepath.Join(root, "two.php")
	require.NoError(t, os.WriteFile(one, []byte("<?php\n"), 0644))
	require.NoError(t, os.WriteFile(two, []byte("<?php\n"), 0644))

	files.triggerFileChange([]string{one, two})
	time.Sleep(50 * time.Millisecond)

	engine.mu.Lock()
	require.Len(t, engine.scanFileCalls, 1)
	assert.Equal(t, []string{one, two}, engine.scanFileCalls[0])
	engine.mu.Unlock()

	assert.Equal(t, 1, results.count())
}

func TestWatchCoordinator_DeletedFilesAreInvalidated(t *testing.T) {
	t.Parallel()

	coord, _, files, engine, _ := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	root := t.TempDir()
	live := filepath.Join(root, "live.php")
	gone := filepath.Join(root, "gone.php")
	require.NoError(t, os.WriteFile(live, []byte("<?php\n"), 0644))

	files.triggerFileChange([]string{live, gone})
	time.Sleep(50 * time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, []string{gone}, engine.invalidated)
	require.Len(t, engine.scanFileCalls, 1)
	assert.Equal(t, []string{live}, engine.scanFileCalls[0])
}

func TestWatchCoordinator_BranchSwitchRunsFullRescan(t *testing.T) {
	t.Parallel()

	coord, git, files, engine, results := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	git.triggerBranchSwitch("main", "feature")
	time.Sleep(50 * time.Millisecond)

	files.mu.Lock()
	assert.Equal(t, 1, files.pauseCount, "file watcher paused during switch")
	assert.Equal(t, 1, files.resumeCount, "file watcher resumed after switch")
	files.mu.Unlock()

	engine.mu.Lock()
	assert.Equal(t, 1, engine.workspaceScans)
	engine.mu.Unlock()

	assert.Equal(t, 1, results.count())
}

func TestWatchCoordinator_FileChangeDuringBranchSwitchQueued(t *testing.T) {
	t.Parallel()

	coord, git, files, engine, _ := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	root := t.TempDir()
	changed := filepath.Join(root, "changed.php")
	require.NoError(t, os.WriteFile(changed, []byte("<?php\n"), 0644))

	git.triggerBranchSwitch("main", "feature")
	files.triggerFileChange([]string{changed})
	time.Sleep(100 * time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Equal(t, 1, engine.workspaceScans)
	require.Len(t, engine.scanFileCalls, 1, "queued change should scan after resume")
	assert.Equal(t, []string{changed}, engine.scanFileCalls[0])
}

func TestWatchCoordinator_EmptyChangeBatchIsNoOp(t *testing.T) {
	t.Parallel()

	coord, _, files, engine, results := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coord.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	files.triggerFileChange([]string{})
	time.Sleep(50 * time.Millisecond)

	engine.mu.Lock()
	assert.Empty(t, engine.scanFileCalls)
	engine.mu.Unlock()
	assert.Equal(t, 0, results.count())
}

func TestWatchCoordinator_WorksWithoutGitWatcher(t *testing.T) {
	t.Parallel()

	files := &mockFileWatcher{}
	engine := &mockEngine{}
	coord := NewWatchCoordinator(nil, files, engine, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- coord.Start(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	root := t.TempDir()
	target := filepath.Join(root, "a.php")
	require.NoError(t, os.WriteFile(target, []byte("<?php\n"), 0644))

	files.triggerFileChange([]string{target})
	time.Sleep(50 * time.Millisecond)

	engine.mu.Lock()
	assert.Len(t, engine.scanFileCalls, 1)
	engine.mu.Unlock()

	cancel()
	err := <-done
	assert.Equal(t, context.Canceled, err)
	assert.True(t, files.stopCalled)
}

func TestWatchCoordinator_FileWatcherStartErrorPropagates(t *testing.T) {
	t.Parallel()

	coord, _, files, _, _ := setupCoordinator()
	files.startErr = errors.New("file watcher failed")

	err := coord.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "file watcher failed", err.Error())
}

func TestWatchCoordinator_GitWatcherStartErrorPropagates(t *testing.T) {
	t.Parallel()

	coord, git, _, _, _ := setupCoordinator()
	git.startErr = errors.New("git watcher failed")

	err := coord.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "git watcher failed", err.Error())
}

func TestWatchCoordinator_ContextCancellationStopsWatchers(t *testing.T) {
	t.Parallel()

	coord, git, files, _, _ := setupCoordinator()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- coord.Start(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()

	err := <-done
	assert.Equal(t, context.Canceled, err)
	assert.True(t, git.stopCalled)
	assert.True(t, files.stopCalled)
}

func TestWatchCoordinator_CleanupErrorsDontPanic(t *testing.T) {
	t.Parallel()

	coord, git, files, _, _ := setupCoordinator()
	git.stopErr = errors.New("git stop failed")
	files.stopErr = errors.New("file stop failed")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- coord.Start(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()

	err := <-done
	assert.Equal(t, context.Canceled, err)
}
