package export

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"debugsweep/internal/scanner"
)

// writeSarif renders a SARIF 2.1.0 report. Statement types become rule IDs
// and severities map onto the SARIF levels note, warning and error.
func writeSarif(w io.Writer, res *scanner.Result) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("debugsweep", "")

	for _, st := range res.Statements {
		rule := run.AddRule(string(st.Type)).
			WithDescription(fmt.Sprintf("PHP debug statement: %s", st.Type)).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: sarifLevel(st.Severity),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(st.RelPath)).
				WithRegion(sarif.NewRegion().
					WithStartLine(st.Line).
					WithStartColumn(st.Column + 1)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(st.Content)).
			WithLevel(sarifLevel(st.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}

func sarifLevel(severity scanner.Severity) string {
	switch severity {
	case scanner.SeverityError:
		return "error"
	case scanner.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
