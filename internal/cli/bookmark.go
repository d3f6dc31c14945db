package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"debugsweep/internal/config"
	"debugsweep/internal/scanner"
	"debugsweep/internal/storage"
)

var bookmarkNoteFlag string

// bookmarkCmd represents the bookmark command group
var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Save findings to revisit later",
	Long: `Bookmark saves findings in .debugsweep/bookmarks.db so debug statements
that are staying for a while can be tracked across sessions. References
use the location format scan reports print: path:line:column.

Examples:
  debugsweep bookmark add src/app.php:12:5 --note "remove before release"
  debugsweep bookmark list
  debugsweep bookmark remove 3f1de821-0a94-4c8e-9d3c-5a1f6f0c2b7e
  debugsweep bookmark clear`,
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <path:line:column>",
	Short: "Bookmark the debug statement at a location",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarkAdd,
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runBookmarkList,
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete one bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarkRemove,
}

var bookmarkClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every bookmark",
	Args:  cobra.NoArgs,
	RunE:  runBookmarkClear,
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)
	bookmarkCmd.AddCommand(bookmarkAddCmd, bookmarkListCmd, bookmarkRemoveCmd, bookmarkClearCmd)
	bookmarkAddCmd.Flags().StringVar(&bookmarkNoteFlag, "note", "", "free-form note stored with the bookmark")
}

func runBookmarkAdd(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	return executeBookmarkAdd(os.Stdout, root, cfg, args[0], bookmarkNoteFlag)
}

func runBookmarkList(cmd *cobra.Command, args []string) error {
	root, _, err := loadWorkspace()
	if err != nil {
		return err
	}
	return executeBookmarkList(os.Stdout, root)
}

func runBookmarkRemove(cmd *cobra.Command, args []string) error {
	root, _, err := loadWorkspace()
	if err != nil {
		return err
	}
	return executeBookmarkRemove(os.Stdout, root, args[0])
}

func runBookmarkClear(cmd *cobra.Command, args []string) error {
	root, _, err := loadWorkspace()
	if err != nil {
		return err
	}
	return executeBookmarkClear(os.Stdout, root)
}

// executeBookmarkAdd re-scans the referenced file, verifies a debug
// statement really sits at the referenced location, and saves it.
func executeBookmarkAdd(w io.Writer, root string, cfg *config.Config, ref, note string) error {
	path, line, column, err := parseStatementRef(ref)
	if err != nil {
		return err
	}

	logger := newLogger()
	engine, err := newEngine(root, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	statements, err := engine.ScanFile(resolveWorkspacePath(root, path))
	if err != nil {
		return err
	}

	st, ok := findStatement(statements, line, column-1)
	if !ok {
		return fmt.Errorf("no debug statement at %s (run 'debugsweep scan' for current locations)", ref)
	}

	store, err := storage.Open(root, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	b, err := store.Add(st, note)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Bookmarked %s at %s\n  id: %s\n", b.Type, b.Location(), b.ID)
	return nil
}

func executeBookmarkList(w io.Writer, root string) error {
	store, err := storage.Open(root, newLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	bookmarks, err := store.List()
	if err != nil {
		return err
	}

	writeBookmarkTable(w, bookmarks)
	return nil
}

func executeBookmarkRemove(w io.Writer, root, id string) error {
	store, err := storage.Open(root, newLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(id); err != nil {
		return err
	}

	fmt.Fprintln(w, "Bookmark removed.")
	return nil
}

func executeBookmarkClear(w io.Writer, root string) error {
	store, err := storage.Open(root, newLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Clear()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Removed %d bookmarks.\n", count)
	return nil
}

func writeBookmarkTable(w io.Writer, bookmarks []storage.Bookmark) {
	if len(bookmarks) == 0 {
		fmt.Fprintln(w, "No bookmarks saved.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Location", "Type", "Severity", "Note"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, b := range bookmarks {
		table.Append([]string{b.ID, b.Location(), string(b.Type), string(b.Severity), b.Note})
	}
	table.Render()
}

// parseStatementRef splits the path:line:column references that scan
// reports print, column 1-based. Parsing works from the right so paths
// may contain colons.
func parseStatementRef(ref string) (string, int, int, error) {
	badRef := fmt.Errorf("invalid reference %q (expected path:line:column)", ref)

	i := strings.LastIndex(ref, ":")
	if i <= 0 {
		return "", 0, 0, badRef
	}
	column, err := strconv.Atoi(ref[i+1:])
	if err != nil || column < 1 {
		return "", 0, 0, badRef
	}

	j := strings.LastIndex(ref[:i], ":")
	if j <= 0 {
		return "", 0, 0, badRef
	}
	line, err := strconv.Atoi(ref[j+1 : i])
	if err != nil || line < 1 {
		return "", 0, 0, badRef
	}

	return ref[:j], line, column, nil
}

// findStatement looks up the statement at a 1-based line and 0-based
// column.
func findStatement(statements []scanner.Statement, line, column int) (scanner.Statement, bool) {
	for _, st := range statements {
		if st.Line == line && st.Column == column {
			return st, true
		}
	}
	return scanner.Statement{}, false
}
