package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"debugsweep/internal/gate"
	"debugsweep/internal/scanner"
)

var gateFailSeverityFlag string

// gateCmd represents the gate command
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Fail when staged files contain debug statements",
	Long: `Gate scans the files staged in the git index and exits non-zero when
any of them carries a debug statement at or above the fail severity.
Wire it into a pre-commit hook to keep var_dump out of history:

  debugsweep gate

The threshold comes from gate.fail_severity in .debugsweep/config.yml;
--fail-severity overrides it for one run.`,
	Args: cobra.NoArgs,
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)
	gateCmd.Flags().StringVar(&gateFailSeverityFlag, "fail-severity", "", "lowest severity that fails the gate (info, warning or error)")
}

func runGate(cmd *cobra.Command, args []string) error {
	root, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	threshold := cfg.FailSeverity()
	if gateFailSeverityFlag != "" {
		threshold, err = parseSeverity(gateFailSeverityFlag)
		if err != nil {
			return err
		}
	}

	logger := newLogger()
	engine, err := newEngine(root, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	g, err := gate.NewGate(engine, threshold, logger)
	if err != nil {
		return err
	}

	report, err := g.Check(cmd.Context())
	if err != nil {
		return err
	}

	writeGateReport(os.Stdout, report)
	if !report.Passed {
		return fmt.Errorf("commit gate failed: %d debug statements at or above %s in staged files",
			countAtOrAbove(report.Result, report.Threshold), report.Threshold)
	}
	return nil
}

// writeGateReport prints the findings and the pass verdict. The failure
// verdict travels on the command error instead, so it prints exactly once.
func writeGateReport(w io.Writer, report *gate.Report) {
	if len(report.Staged) == 0 {
		fmt.Fprintln(w, "Gate passed: no staged files to scan.")
		return
	}

	fmt.Fprintf(w, "Checked %d staged files against the %s threshold.\n", len(report.Staged), report.Threshold)

	for _, st := range report.Result.Statements {
		fmt.Fprintf(w, "  %s:%d:%d  %s  %s\n", st.RelPath, st.Line, st.Column+1, st.Severity, st.Content)
	}
	for _, msg := range report.Result.ErrorMessages() {
		fmt.Fprintf(w, "  error: %s\n", msg)
	}

	if report.Passed {
		if report.Result.TotalStatements > 0 {
			fmt.Fprintf(w, "Gate passed: every finding is below %s.\n", report.Threshold)
		} else {
			fmt.Fprintln(w, "Gate passed: staged files are clean.")
		}
	}
}

// countAtOrAbove counts the findings that trip the threshold.
func countAtOrAbove(res *scanner.Result, threshold scanner.Severity) int {
	n := 0
	for _, st := range res.Statements {
		if st.Severity.Rank() >= threshold.Rank() {
			n++
		}
	}
	return n
}

// parseSeverity validates a severity name from the command line.
func parseSeverity(s string) (scanner.Severity, error) {
	switch sev := scanner.Severity(s); sev {
	case scanner.SeverityInfo, scanner.SeverityWarning, scanner.SeverityError:
		return sev, nil
	default:
		return "", fmt.Errorf("invalid severity %q (expected info, warning or error)", s)
	}
}
