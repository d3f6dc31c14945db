package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"debugsweep/internal/config"
	"debugsweep/internal/export"
	"debugsweep/internal/scanner"
)

var (
	scanFormatFlag string
	scanOutputFlag string
	scanQuietFlag  bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Scan the workspace for leftover debug statements",
	Long: `Scan walks the workspace (or just the given files), skipping vendor
trees, excluded globs and anything the root .gitignore rules out, and
reports every leftover debug statement it finds.

Examples:
  # Scan the current workspace, human-readable table
  debugsweep scan

  # Scan two files only
  debugsweep scan src/app.php src/Service/Billing.php

  # Machine-readable output for CI
  debugsweep scan --format sarif --output findings.sarif

  # Group findings by directory
  debugsweep scan --format tree`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanFormatFlag, "format", "f", "table", fmt.Sprintf("output format, one of %v", export.Formats()))
	scanCmd.Flags().StringVarP(&scanOutputFlag, "output", "o", "", "write the report to a file instead of stdout")
	scanCmd.Flags().BoolVarP(&scanQuietFlag, "quiet", "q", false, "disable the progress bar")
}

func runScan(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(scanFormatFlag)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if scanOutputFlag != "" {
		f, err := os.Create(scanOutputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	// The bar draws on stderr, so piped or redirected reports stay clean.
	return executeScan(cmd.Context(), root, cfg, args, format, out, scanQuietFlag)
}

// executeScan runs one scan and writes the report. Explicit paths are
// resolved against the workspace root; no paths means the whole workspace.
func executeScan(ctx context.Context, root string, cfg *config.Config, paths []string, format export.Format, out io.Writer, quiet bool) error {
	progress := newScanProgress(quiet)
	engine, err := newEngine(root, cfg, newLogger(), progress.update)
	if err != nil {
		return err
	}
	defer engine.Close()

	var result *scanner.Result
	if len(paths) == 0 {
		result = engine.ScanWorkspace(ctx)
	} else {
		abs := make([]string, len(paths))
		for i, p := range paths {
			abs[i] = resolveWorkspacePath(root, p)
		}
		result = engine.ScanFiles(ctx, abs)
	}
	progress.finish()

	return export.Write(out, format, result)
}

// resolveWorkspacePath anchors a relative CLI argument at the workspace
// root; absolute paths pass through.
func resolveWorkspacePath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
