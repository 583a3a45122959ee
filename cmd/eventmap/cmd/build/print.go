package build

import (
	"fmt"
	"io"

	"github.com/culturalmap/eventmap/internal/cmd/constants"
	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/cmd/table"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// printResult shows the build stats. Table formats add the unmatched
// venues and any warnings; structured formats print the stats alone.
func printResult(w io.Writer, format string, result *reconciler.Result) error {
	f := output.Format(format)
	formatter := output.NewFormatter(f)
	if err := formatter.Format(w, result.Index.Stats); err != nil {
		return err
	}
	if !output.IsTable(f) {
		return nil
	}

	if venues := result.Report.UnmatchedVenues; len(venues) > 0 {
		fmt.Fprintf(w, "\nUnmatched venues (%d):\n", len(venues))
		data := table.UnmatchedVenuesToTableData(venues, format == constants.FormatWide)
		if err := formatter.Format(w, data); err != nil {
			return err
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		if err := formatter.Format(w, table.MessagesToTableData("Warning", result.Warnings)); err != nil {
			return err
		}
	}
	if result.Changeset != nil {
		fmt.Fprintf(w, "\n%s\n", result.Changeset.String())
	}
	return nil
}
