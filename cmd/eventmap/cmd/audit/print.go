package audit

import (
	"fmt"
	"io"

	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/cmd/table"
	"github.com/culturalmap/eventmap/pkg/audit"
)

func printReport(w io.Writer, format string, report *audit.Report) error {
	f := output.Format(format)
	formatter := output.NewFormatter(f)
	if !output.IsTable(f) {
		return formatter.Format(w, report)
	}

	if err := formatter.Format(w, report.Summary); err != nil {
		return err
	}
	if len(report.StaleWithoutUpcomingMatches) > 0 {
		names := make([]string, 0, len(report.StaleWithoutUpcomingMatches))
		for _, a := range report.StaleWithoutUpcomingMatches {
			names = append(names, fmt.Sprintf("%s (%s, %d)", a.Name, a.City, a.LatestYear))
		}
		fmt.Fprintln(w)
		return formatter.Format(w, table.MessagesToTableData("Stale festival without upcoming event", names))
	}
	return nil
}
