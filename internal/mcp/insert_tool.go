package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"debugsweep/internal/insertion"
)

// AddInsertionPointTool registers the insertion_point tool with an MCP
// server. The tool computes where a debug statement belongs relative to a
// caret position; it never edits the file.
func AddInsertionPointTool(s *server.MCPServer, root string, opts insertion.Options) {
	tool := mcp.NewTool(
		"insertion_point",
		mcp.WithDescription("Compute a syntactically safe insertion point for a debug statement near a caret position in a PHP file. Returns the target line, column and indentation; the file is never modified."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File to inspect, workspace-relative or absolute")),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based caret line")),
		mcp.WithNumber("column",
			mcp.Description("0-based byte offset of the caret in the line (default: 0)")),
		mcp.WithString("selection",
			mcp.Description("Selected expression text starting at the caret. When given, the selection is validated before a plan is computed.")),
	)

	s.AddTool(tool, createInsertionPointHandler(root, opts))
}

// createInsertionPointHandler creates the handler function for
// insertion_point.
func createInsertionPointHandler(root string, opts insertion.Options) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		args, errMsg := parseInsertionPointRequest(argsMap)
		if errMsg != "" {
			return mcp.NewToolResultError(errMsg), nil
		}

		path := resolvePath(root, args.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", args.File, err)), nil
		}

		lines := insertion.Lines(string(data))
		if args.Line > len(lines) {
			return mcp.NewToolResultError(fmt.Sprintf("line %d is past the end of %s (%d lines)", args.Line, args.File, len(lines))), nil
		}

		if args.Selection != "" {
			if errMsg := checkSelection(lines[args.Line-1], args.Column, args.Selection); errMsg != "" {
				return mcp.NewToolResultError(errMsg), nil
			}
		}

		plan, err := insertion.Resolve(lines, insertion.Position{Line: args.Line, Column: args.Column}, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		jsonData, err := json.Marshal(InsertionPointResponse{File: args.File, Plan: *plan})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// parseInsertionPointRequest validates the raw arguments. The second return
// value is a user-facing message, empty on success.
func parseInsertionPointRequest(argsMap map[string]interface{}) (InsertionPointRequest, string) {
	var args InsertionPointRequest

	file, err := parseStringArg(argsMap, "file", true)
	if err != nil {
		return args, err.Error()
	}
	args.File = file

	args.Line = parseIntArg(argsMap, "line", 0)
	if args.Line < 1 {
		return args, "line must be a positive number"
	}

	args.Column = parseIntArg(argsMap, "column", 0)
	if args.Column < 0 {
		return args, "column cannot be negative"
	}

	selection, err := parseStringArg(argsMap, "selection", false)
	if err != nil {
		return args, err.Error()
	}
	args.Selection = selection

	return args, ""
}

// checkSelection verifies the selection text actually sits at the caret
// and passes the insertion preconditions. Returns a user-facing message,
// empty when the selection is valid.
func checkSelection(raw string, column int, selection string) string {
	end := column + len(selection)
	if end > len(raw) || raw[column:end] != selection {
		return "selection does not match the document at that position"
	}
	if err := insertion.ValidateSelection(raw, column, end); err != nil {
		return err.Error()
	}
	return ""
}
