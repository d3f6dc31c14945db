package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"debugsweep/internal/scanner"
)

// AddDebugScanTool registers the debug_scan tool with an MCP server.
// This function is composable - it can be combined with other tool
// registrations.
func AddDebugScanTool(s *server.MCPServer, engine *scanner.Engine) {
	tool := mcp.NewTool(
		"debug_scan",
		mcp.WithDescription("Scan PHP sources for leftover debug statements (var_dump, dd, error_log, print_r, dump and friends). Returns findings with file, line, column, type and severity."),
		mcp.WithArray("paths",
			mcp.Description("Files to scan, workspace-relative or absolute. Leave empty to scan the whole workspace.")),
	)

	s.AddTool(tool, createDebugScanHandler(engine))
}

// createDebugScanHandler creates the handler function for debug_scan.
func createDebugScanHandler(engine *scanner.Engine) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			if request.Params.Arguments != nil {
				return mcp.NewToolResultError("invalid arguments format"), nil
			}
			// A call with no arguments object means scan everything.
			argsMap = map[string]interface{}{}
		}

		args := DebugScanRequest{Paths: parseArrayArg(argsMap, "paths")}

		var result *scanner.Result
		if len(args.Paths) == 0 {
			result = engine.ScanWorkspace(ctx)
		} else {
			root := engine.Discovery().Root()
			paths := make([]string, len(args.Paths))
			for i, p := range args.Paths {
				paths[i] = resolvePath(root, p)
			}
			result = engine.ScanFiles(ctx, paths)
		}

		response := DebugScanResponse{
			Statements:      result.Statements,
			ScannedFiles:    result.ScannedFiles,
			TotalStatements: result.TotalStatements,
			ScanTimeMs:      result.ScanTime.Milliseconds(),
			Errors:          result.ErrorMessages(),
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// resolvePath anchors a workspace-relative path at the workspace root;
// absolute paths pass through.
func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
