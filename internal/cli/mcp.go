package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"debugsweep/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for editor and agent integrations",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
find debug statements and plan safe insertion points.

The MCP server:
- Provides the debug_scan tool (scan the workspace or specific files)
- Provides the insertion_point tool (plan an insertion near a caret)
- Communicates via stdio (standard MCP transport)

Example:
  debugsweep mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	logger := newLogger()
	engine, err := newEngine(root, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Stdout belongs to the MCP transport; startup info goes to stderr.
	fmt.Fprintf(os.Stderr, "debugsweep MCP Server\n")
	fmt.Fprintf(os.Stderr, "Workspace: %s\n", root)
	fmt.Fprintf(os.Stderr, "\n")

	server := mcp.NewServer(engine, cfg.InsertOptions(), Version, logger)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
