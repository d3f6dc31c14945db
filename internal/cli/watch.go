package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"debugsweep/internal/export"
	"debugsweep/internal/gate"
	"debugsweep/internal/scanner"
	"debugsweep/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and re-scan files as they change",
	Long: `Watch runs an initial workspace scan, then keeps re-scanning files as
they change. Saves are debounced so one edit burst produces one re-scan,
and a git branch switch triggers a single full re-scan instead of chasing
the checkout's event storm.

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Stopping watch...")
		cancel()
	}()

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

	// Initial pass so the session starts from a known state.
	res := engine.ScanWorkspace(ctx)
	if err := export.Write(os.Stdout, export.FormatTable, res); err != nil {
		return err
	}

	files, err := watcher.NewFileWatcher(engine.Discovery(), cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Branch watching only works inside a git repository; everywhere else
	// the coordinator runs on file events alone.
	var git watcher.GitWatcher
	if repoRoot, rerr := gate.FindRepositoryRoot(root); rerr == nil {
		git, err = watcher.NewGitWatcher(filepath.Join(repoRoot, ".git"), logger)
		if err != nil {
			logger.Warn("branch watching disabled", "error", err)
			git = nil
		}
	}

	coord := watcher.NewWatchCoordinator(git, files, engine, logger, func(changed []string, res *scanner.Result) {
		writeWatchEvent(os.Stdout, time.Now(), changed, res)
	})

	fmt.Println("\nWatching for changes. Press Ctrl+C to stop.")
	if err := coord.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

// writeWatchEvent prints one timestamped re-scan outcome. changed is nil
// for a full workspace re-scan after a branch switch.
func writeWatchEvent(w io.Writer, when time.Time, changed []string, res *scanner.Result) {
	stamp := when.Format("15:04:05")

	if changed == nil {
		fmt.Fprintf(w, "[%s] branch switch: re-scanned %d files, %d debug statements\n",
			stamp, res.ScannedFiles, res.TotalStatements)
	} else {
		fmt.Fprintf(w, "[%s] %d files changed, %d debug statements\n",
			stamp, len(changed), res.TotalStatements)
	}

	for _, st := range res.Statements {
		fmt.Fprintf(w, "  %s:%d:%d  %s  %s\n", st.RelPath, st.Line, st.Column+1, st.Severity, st.Content)
	}

	for _, msg := range res.ErrorMessages() {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}
}
