package mcp

// Test Plan for the debug_scan tool:
// - A call with no paths (or no arguments at all) scans the whole workspace
// - Explicit relative and absolute paths scan only those files
// - Findings carry file, position, type and severity in the JSON envelope
// - Ineligible explicit paths are dropped rather than failing the call
// - Malformed arguments produce a tool error result

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugsweep/internal/scanner"
)

const appPHP = `<?php

$user = loadUser();
var_dump($user);
`

const cleanAppPHP = `<?php

function add(int $a, int $b): int {
    return $a + $b;
}
`

func writeWorkspaceFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func newScanFixture(t *testing.T) (string, *scanner.Engine) {
	t.Helper()
	root := t.TempDir()
	writeWorkspaceFile(t, root, "src/app.php", appPHP)
	writeWorkspaceFile(t, root, "src/clean.php", cleanAppPHP)
	writeWorkspaceFile(t, root, "notes.txt", "plain text\n")

	engine, err := scanner.NewEngine(scanner.Options{RootDir: root})
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return root, engine
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decodeTool[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, result.IsError)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")

	var decoded T
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &decoded))
	return decoded
}

func toolErrorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return textContent.Text
}

func TestAddDebugScanTool(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	AddDebugScanTool(mcpServer, engine)
	assert.NotNil(t, mcpServer)
}

func TestDebugScanHandler_WholeWorkspace(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, map[string]interface{}{})
	response := decodeTool[DebugScanResponse](t, result)

	assert.Equal(t, 2, response.ScannedFiles)
	require.Equal(t, 1, response.TotalStatements)

	st := response.Statements[0]
	assert.Equal(t, "src/app.php", st.RelPath)
	assert.Equal(t, 4, st.Line)
	assert.Equal(t, 0, st.Column)
	assert.Equal(t, scanner.TypeVarDump, st.Type)
	assert.Equal(t, scanner.SeverityInfo, st.Severity)
}

func TestDebugScanHandler_NoArguments(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, nil)
	response := decodeTool[DebugScanResponse](t, result)
	assert.Equal(t, 2, response.ScannedFiles)
	assert.Equal(t, 1, response.TotalStatements)
}

func TestDebugScanHandler_RelativePath(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, map[string]interface{}{
		"paths": []interface{}{"src/app.php"},
	})
	response := decodeTool[DebugScanResponse](t, result)

	assert.Equal(t, 1, response.ScannedFiles)
	assert.Equal(t, 1, response.TotalStatements)
}

func TestDebugScanHandler_AbsolutePath(t *testing.T) {
	t.Parallel()

	root, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, map[string]interface{}{
		"paths": []interface{}{filepath.Join(root, "src", "clean.php")},
	})
	response := decodeTool[DebugScanResponse](t, result)

	assert.Equal(t, 1, response.ScannedFiles)
	assert.Zero(t, response.TotalStatements)
	assert.NotNil(t, response.Statements)
}

func TestDebugScanHandler_IneligiblePathsDropped(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, map[string]interface{}{
		"paths": []interface{}{"notes.txt"},
	})
	response := decodeTool[DebugScanResponse](t, result)

	assert.Zero(t, response.ScannedFiles)
	assert.Zero(t, response.TotalStatements)
}

func TestDebugScanHandler_InvalidArguments(t *testing.T) {
	t.Parallel()

	_, engine := newScanFixture(t)
	handler := createDebugScanHandler(engine)

	result := callTool(t, handler, "bogus")
	assert.Contains(t, toolErrorText(t, result), "invalid arguments format")
}
