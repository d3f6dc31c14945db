// Package cli wires the scanner, watcher, gate, bookmark store and MCP
// server into the debugsweep command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"debugsweep/internal/config"
	"debugsweep/internal/scanner"
)

var (
	dirFlag string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "debugsweep",
	Short: "Find leftover debug statements in PHP projects",
	Long: `debugsweep scans PHP sources for debug statements that were never meant
to ship: var_dump, print_r, dd, dump, error_log, die and friends. It
understands strings and comments, so quoted or commented-out calls are
never reported.

Scan a workspace once, watch it while you work, gate commits on staged
files, bookmark findings for later, or serve the scanner to editors and
agents over MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "workspace root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// newLogger builds the CLI logger. Quiet by default so command output
// stays clean; --verbose opens the debug firehose.
func newLogger() hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "debugsweep",
		Level:  level,
		Output: os.Stderr,
	})
}

// workspaceRoot resolves the --dir flag to an absolute workspace root,
// defaulting to the current directory.
func workspaceRoot() (string, error) {
	if dirFlag == "" {
		root, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return root, nil
	}

	root, err := filepath.Abs(dirFlag)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dirFlag, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("workspace root %s is not a directory", root)
	}
	return root, nil
}

// loadWorkspace resolves the workspace root and its configuration.
func loadWorkspace() (string, *config.Config, error) {
	root, err := workspaceRoot()
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return root, cfg, nil
}

// newEngine builds a scan engine for the workspace. The progress callback
// may be nil.
func newEngine(root string, cfg *config.Config, logger hclog.Logger, progress func(done, total int)) (*scanner.Engine, error) {
	opts := cfg.EngineOptions(root, logger)
	opts.Progress = progress

	engine, err := scanner.NewEngine(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan engine: %w", err)
	}
	return engine, nil
}
