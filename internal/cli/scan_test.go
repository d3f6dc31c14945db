package cli

// Test Plan for Scan Command:
// - executeScan over a workspace reports every finding as json
// - executeScan with explicit paths scans only those files
// - executeScan table output prints 1-based locations
// - executeScan drops ineligible explicit paths instead of erroring
// - resolveWorkspacePath anchors relative arguments and passes absolute ones

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugsweep/internal/config"
	"debugsweep/internal/export"
	"debugsweep/internal/scanner"
)

const scanFixturePHP = `<?php

$user = loadUser();
var_dump($user);
`

const scanCleanPHP = `<?php

return $config;
`

// writeWorkspaceFile writes a file under root from a slash-separated
// relative path, creating parent directories.
func writeWorkspaceFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// scanJSONReport mirrors the json export envelope for decoding in tests.
type scanJSONReport struct {
	Statements      []scanner.Statement `json:"statements"`
	ScannedFiles    int                 `json:"scanned_files"`
	TotalStatements int                 `json:"total_statements"`
	Errors          []string            `json:"errors"`
}

func TestExecuteScan_WorkspaceJSON(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "src/app.php", scanFixturePHP)
	writeWorkspaceFile(t, root, "src/clean.php", scanCleanPHP)

	var out bytes.Buffer
	err := executeScan(context.Background(), root, config.Default(), nil, export.FormatJSON, &out, true)
	require.NoError(t, err)

	var report scanJSONReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, 2, report.ScannedFiles)
	require.Equal(t, 1, report.TotalStatements)

	st := report.Statements[0]
	assert.Equal(t, "src/app.php", st.RelPath)
	assert.Equal(t, 4, st.Line)
	assert.Equal(t, 0, st.Column)
	assert.Equal(t, scanner.TypeVarDump, st.Type)
}

func TestExecuteScan_ExplicitPaths(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "src/app.php", scanFixturePHP)
	writeWorkspaceFile(t, root, "src/other.php", scanFixturePHP)

	var out bytes.Buffer
	err := executeScan(context.Background(), root, config.Default(), []string{"src/app.php"}, export.FormatJSON, &out, true)
	require.NoError(t, err)

	var report scanJSONReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, 1, report.ScannedFiles)
	require.Equal(t, 1, report.TotalStatements)
	assert.Equal(t, "src/app.php", report.Statements[0].RelPath)
}

func TestExecuteScan_TableLocations(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "src/app.php", scanFixturePHP)

	var out bytes.Buffer
	err := executeScan(context.Background(), root, config.Default(), nil, export.FormatTable, &out, true)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "src/app.php:4:1")
	assert.Contains(t, out.String(), "var_dump")
}

func TestExecuteScan_IneligiblePathDropped(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "notes.txt", "var_dump($x);\n")

	var out bytes.Buffer
	err := executeScan(context.Background(), root, config.Default(), []string{"notes.txt"}, export.FormatJSON, &out, true)
	require.NoError(t, err)

	var report scanJSONReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	assert.Equal(t, 0, report.ScannedFiles)
	assert.Equal(t, 0, report.TotalStatements)
}

func TestResolveWorkspacePath(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, filepath.Join(root, "src", "app.php"), resolveWorkspacePath(root, "src/app.php"))

	abs := filepath.Join(root, "lib", "a.php")
	assert.Equal(t, abs, resolveWorkspacePath(root, abs))
}
