package validate

import (
	"fmt"
	"io"

	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/cmd/table"
	"github.com/culturalmap/eventmap/pkg/validate"
)

func printReport(w io.Writer, format string, report *validate.Report) error {
	f := output.Format(format)
	formatter := output.NewFormatter(f)
	if !output.IsTable(f) {
		return formatter.Format(w, report)
	}

	if err := formatter.Format(w, report.Stats); err != nil {
		return err
	}
	if report.Passed {
		fmt.Fprintln(w, "\nAll validation gates passed.")
		return nil
	}
	fmt.Fprintln(w)
	return formatter.Format(w, table.MessagesToTableData("Failure", report.Failures))
}
