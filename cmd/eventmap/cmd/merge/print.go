package merge

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/cmd/table"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

func printResult(w io.Writer, format string, result *reconciler.MergeResult) error {
	f := output.Format(format)
	merged := result.Merged
	if !output.IsTable(f) {
		return output.NewFormatter(f).Format(w, struct {
			SourceCounts map[string]int `json:"source_counts" yaml:"source_counts"`
			Events       int            `json:"events" yaml:"events"`
			DedupRemoved int            `json:"dedup_removed" yaml:"dedup_removed"`
			FamilyTagged int            `json:"family_tagged" yaml:"family_tagged"`
			Warnings     []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
		}{merged.SourceCounts, len(merged.Events), merged.DedupRemoved, merged.FamilyTagged, result.Warnings})
	}

	formatter := output.NewFormatter(f)
	order := slices.Sorted(maps.Keys(merged.SourceCounts))
	if err := formatter.Format(w, table.CountsToTableData("Source", order, merged.SourceCounts)); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", result.Summary())
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
		return formatter.Format(w, table.MessagesToTableData("Warning", result.Warnings))
	}
	return nil
}
