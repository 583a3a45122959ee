package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/internal/report"
	"github.com/culturalmap/eventmap/pkg/dedup"
	"github.com/culturalmap/eventmap/pkg/matching"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

func TestWriteMarkdown(t *testing.T) {
	venue := 100.0
	r := &reconciler.MatchReport{
		GeneratedAt: "2026-05-01T00:00:00Z",
		StageOrder:  reconciler.StrategyTypeMatchFirst,
		Stats:       reconciler.Stats{TotalEvents: 4, MatchedEvents: 2, UnmatchedEvents: 2},
		UnmatchedVenues: []reconciler.UnmatchedVenue{{
			VenueName:   "Elks Lodge",
			VenueCity:   "Truckee",
			Count:       2,
			SampleTitle: "Open Mic",
			CandidateAssets: []matching.Candidate{
				{AssetIdx: 7, AssetName: "Truckee Elks", Score: 17},
			},
		}},
		Dedup: reconciler.DedupSummary{Removed: 1, Decisions: []dedup.Decision{{
			Date:         "2026-05-09",
			WinnerID:     "trumba-1",
			WinnerSource: "trumba",
			LoserID:      "libcal-7",
			LoserSource:  "libcal",
			TitleScore:   85.7,
			VenueScore:   &venue,
			Reason:       dedup.ReasonPriority,
		}}},
		AliasWarnings: []string{"aliases[1] unresolved target for 'Nowhere' (any city)"},
		CategoryCoverage: reconciler.CategoryCoverage{
			AllowedCategories: []string{"Performance Spaces"},
			CategoriesSeen:    []string{"Performance Spaces"},
			AllCategories:     []string{"Performance Spaces", "Public Art"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteMarkdown(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "# Event Match Report")
	assert.Contains(t, out, "`match-first`")
	assert.Contains(t, out, "| Total events")
	assert.Contains(t, out, "Truckee Elks (#7, score 17)")
	assert.Contains(t, out, "trumba-1 (trumba)")
	assert.Contains(t, out, "85.7")
	assert.Contains(t, out, "1 of 2 categories")
	assert.Contains(t, out, "## Warnings")
	assert.NotContains(t, out, "## Changes")
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMarkdown(&buf, &reconciler.MatchReport{}))
	assert.Contains(t, buf.String(), "Every event matched an asset.")
	assert.Contains(t, buf.String(), "No cross-source duplicates.")
	assert.NotContains(t, buf.String(), "## Warnings")
}
