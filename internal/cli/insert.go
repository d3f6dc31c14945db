package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"debugsweep/internal/insertion"
)

var (
	insertFileFlag      string
	insertLineFlag      int
	insertColumnFlag    int
	insertSelectionFlag string
)

// insertCmd represents the insert command
var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Compute a safe insertion point for a debug statement",
	Long: `Insert computes where a debug statement can go relative to a caret
position without breaking the surrounding PHP: after the enclosing
statement, inside an empty block, never mid-expression and never inside
a string. It prints the plan as JSON and does not edit the file.

Examples:
  # Plan an insertion near line 12, column 8
  debugsweep insert --file src/app.php --line 12 --column 8

  # Validate a selected expression before planning
  debugsweep insert --file src/app.php --line 12 --column 8 --selection 'compute($user)'`,
	Args: cobra.NoArgs,
	RunE: runInsert,
}

func init() {
	rootCmd.AddCommand(insertCmd)
	insertCmd.Flags().StringVar(&insertFileFlag, "file", "", "file to inspect, workspace-relative or absolute")
	insertCmd.Flags().IntVar(&insertLineFlag, "line", 0, "1-based caret line")
	insertCmd.Flags().IntVar(&insertColumnFlag, "column", 0, "0-based byte offset of the caret in the line")
	insertCmd.Flags().StringVar(&insertSelectionFlag, "selection", "", "selected expression text starting at the caret")
}

func runInsert(cmd *cobra.Command, args []string) error {
	if insertFileFlag == "" {
		return fmt.Errorf("the --file flag is required")
	}
	if insertLineFlag < 1 {
		return fmt.Errorf("--line must be a positive number")
	}
	if insertColumnFlag < 0 {
		return fmt.Errorf("--column cannot be negative")
	}

	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	return executeInsert(os.Stdout, root, cfg.InsertOptions(), insertFileFlag, insertLineFlag, insertColumnFlag, insertSelectionFlag)
}

// executeInsert resolves an insertion plan for the caret and writes it as
// JSON. The output shape matches the insertion_point MCP tool, so editor
// integrations can consume either.
func executeInsert(w io.Writer, root string, opts insertion.Options, file string, line, column int, selection string) error {
	path := resolveWorkspacePath(root, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", file, err)
	}

	lines := insertion.Lines(string(data))
	if line > len(lines) {
		return fmt.Errorf("line %d is past the end of %s (%d lines)", line, file, len(lines))
	}

	if selection != "" {
		raw := lines[line-1]
		end := column + len(selection)
		if end > len(raw) || raw[column:end] != selection {
			return fmt.Errorf("selection does not match the document at %s:%d:%d", file, line, column+1)
		}
		if err := insertion.ValidateSelection(raw, column, end); err != nil {
			return err
		}
	}

	plan, err := insertion.Resolve(lines, insertion.Position{Line: line, Column: column}, opts)
	if err != nil {
		return err
	}

	out := struct {
		File string         `json:"file"`
		Plan insertion.Plan `json:"plan"`
	}{File: file, Plan: *plan}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
