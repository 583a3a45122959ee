// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"strconv"

	"github.com/culturalmap/eventmap/pkg/matching"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CandidatesToTableData converts ranked match candidates to table format.
func CandidatesToTableData(candidates []matching.Candidate) Data {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			strconv.Itoa(c.AssetIdx),
			c.AssetName,
			c.AssetCity,
			c.AssetCategory,
			strconv.Itoa(c.Score),
		})
	}
	return Data{
		Headers:         []string{"Idx", "Asset", "City", "Category", "Score"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// UnmatchedVenuesToTableData converts the report's unmatched venue groups
// to table format. Wide adds the sample event and best candidate.
func UnmatchedVenuesToTableData(venues []reconciler.UnmatchedVenue, wide bool) Data {
	headers := []string{"Venue", "City", "Events"}
	if wide {
		headers = append(headers, "Sample Event", "Best Candidate")
	}

	rows := make([][]string, 0, len(venues))
	for _, v := range venues {
		row := []string{v.VenueName, v.VenueCity, strconv.Itoa(v.Count)}
		if wide {
			best := ""
			if len(v.CandidateAssets) > 0 {
				best = v.CandidateAssets[0].AssetName
			}
			row = append(row, v.SampleTitle, best)
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows}
}

// MessagesToTableData lists messages such as gate failures or warnings
// under a single header.
func MessagesToTableData(header string, messages []string) Data {
	rows := make([][]string, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, []string{m})
	}
	return Data{Headers: []string{header}, Rows: rows}
}

// CountsToTableData converts a name to count map, with names in the given
// order.
func CountsToTableData(keyHeader string, order []string, counts map[string]int) Data {
	rows := make([][]string, 0, len(order))
	for _, k := range order {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return Data{
		Headers:         []string{keyHeader, "Events"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}
