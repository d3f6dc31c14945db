package cli

// Test Plan for Root Helpers:
// - workspaceRoot defaults to the working directory
// - workspaceRoot resolves --dir to an absolute path
// - workspaceRoot rejects a --dir that is not a directory
// - loadWorkspace falls back to default configuration without a config file
// - newLogger level follows the --verbose flag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugsweep/internal/scanner"
)

func TestWorkspaceRoot_DefaultsToWorkingDirectory(t *testing.T) {
	orig := dirFlag
	defer func() { dirFlag = orig }()
	dirFlag = ""

	wd, err := os.Getwd()
	require.NoError(t, err)

	root, err := workspaceRoot()
	require.NoError(t, err)
	assert.Equal(t, wd, root)
}

func TestWorkspaceRoot_ResolvesDirFlag(t *testing.T) {
	orig := dirFlag
	defer func() { dirFlag = orig }()

	dir := t.TempDir()
	dirFlag = dir

	root, err := workspaceRoot()
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestWorkspaceRoot_RejectsFile(t *testing.T) {
	orig := dirFlag
	defer func() { dirFlag = orig }()

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	dirFlag = file

	_, err := workspaceRoot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoadWorkspace_Defaults(t *testing.T) {
	orig := dirFlag
	defer func() { dirFlag = orig }()
	dirFlag = t.TempDir()

	root, cfg, err := loadWorkspace()
	require.NoError(t, err)
	assert.Equal(t, dirFlag, root)
	assert.Equal(t, scanner.DefaultBatchSize, cfg.Scan.BatchSize)
	assert.Equal(t, scanner.SeverityInfo, cfg.FailSeverity())
}

func TestNewLogger_VerboseLevel(t *testing.T) {
	orig := verbose
	defer func() { verbose = orig }()

	verbose = false
	assert.False(t, newLogger().IsDebug())

	verbose = true
	assert.True(t, newLogger().IsDebug())
}
