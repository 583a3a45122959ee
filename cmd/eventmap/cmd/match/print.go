package match

import (
	"fmt"
	"io"

	"github.com/culturalmap/eventmap/internal/cmd/output"
	"github.com/culturalmap/eventmap/internal/cmd/table"
)

func printProbe(w io.Writer, format string, probe *Probe) error {
	f := output.Format(format)
	formatter := output.NewFormatter(f)
	if !output.IsTable(f) {
		return formatter.Format(w, probe)
	}

	if probe.Matched {
		fmt.Fprintf(w, "%s -> %s [#%d] (%s, %s)\n", probe.Venue, probe.AssetName, *probe.AssetIdx, probe.Method, probe.Confidence)
	} else {
		fmt.Fprintf(w, "%s: no match\n", probe.Venue)
	}
	if len(probe.Candidates) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	return formatter.Format(w, table.CandidatesToTableData(probe.Candidates))
}
