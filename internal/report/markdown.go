// Package report renders the match report as Markdown for reviewers who
// curate aliases and venue data.
package report

import (
	"fmt"
	"io"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/culturalmap/eventmap/pkg/reconciler"
)

// WriteMarkdown renders r to w.
func WriteMarkdown(w io.Writer, r *reconciler.MatchReport) error {
	doc := md.NewMarkdown(w)

	doc.H1("Event Match Report").LF()
	doc.PlainTextf("Generated %s with stage order %s.", r.GeneratedAt, md.Code(string(r.StageOrder))).LF().LF()

	s := r.Stats
	doc.H2("Summary").LF()
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total events", strconv.Itoa(s.TotalEvents)},
			{"Matched", strconv.Itoa(s.MatchedEvents)},
			{"Unmatched", strconv.Itoa(s.UnmatchedEvents)},
			{"By identifier", strconv.Itoa(s.MatchedByPID)},
			{"By alias", strconv.Itoa(s.MatchedByAlias)},
			{"By name and city", strconv.Itoa(s.MatchedByNameCity)},
			{"By fuzzy name", strconv.Itoa(s.MatchedByNameCityFuzzy)},
			{"Upcoming", strconv.Itoa(s.Upcoming)},
			{"Upcoming unmatched", strconv.Itoa(s.UpcomingUnmatched)},
			{"Duplicates removed", strconv.Itoa(s.DedupRemoved)},
			{"Family events", strconv.Itoa(s.FamilyTagged)},
		},
	}).LF()

	doc.H2("Unmatched Venues").LF()
	if len(r.UnmatchedVenues) == 0 {
		doc.PlainText("Every event matched an asset.").LF().LF()
	} else {
		rows := make([][]string, 0, len(r.UnmatchedVenues))
		for _, v := range r.UnmatchedVenues {
			candidate := "-"
			if len(v.CandidateAssets) > 0 {
				c := v.CandidateAssets[0]
				candidate = fmt.Sprintf("%s (#%d, score %d)", c.AssetName, c.AssetIdx, c.Score)
			}
			rows = append(rows, []string{v.VenueName, v.VenueCity, strconv.Itoa(v.Count), v.SampleTitle, candidate})
		}
		doc.Table(md.TableSet{
			Header: []string{"Venue", "City", "Events", "Sample", "Best Candidate"},
			Rows:   rows,
		}).LF()
	}

	doc.H2("Duplicates").LF()
	if len(r.Dedup.Decisions) == 0 {
		doc.PlainText("No cross-source duplicates.").LF().LF()
	} else {
		rows := make([][]string, 0, len(r.Dedup.Decisions))
		for _, d := range r.Dedup.Decisions {
			venue := "-"
			if d.VenueScore != nil {
				venue = strconv.FormatFloat(*d.VenueScore, 'f', 1, 64)
			}
			rows = append(rows, []string{
				d.Date,
				fmt.Sprintf("%s (%s)", d.WinnerID, d.WinnerSource),
				fmt.Sprintf("%s (%s)", d.LoserID, d.LoserSource),
				strconv.FormatFloat(d.TitleScore, 'f', 1, 64),
				venue,
				d.Reason,
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Date", "Kept", "Removed", "Title", "Venue", "Reason"},
			Rows:   rows,
		}).LF()
	}

	cov := r.CategoryCoverage
	doc.H2("Category Coverage").LF()
	doc.PlainTextf("%s %d of %d categories", md.Bold("Allowed:"), len(cov.AllowedCategories), len(cov.AllCategories)).LF().LF()
	if len(cov.CategoriesSeen) > 0 {
		doc.BulletList(cov.CategoriesSeen...).LF()
	}
	if n := len(cov.EventsWithDisallowedCategories); n > 0 {
		doc.PlainTextf("%d events carry categories outside the allowed set.", n).LF().LF()
	}

	warnings := append(append([]string{}, r.AliasWarnings...), r.RuleWarnings...)
	if len(warnings) > 0 {
		doc.H2("Warnings").LF()
		doc.BulletList(warnings...).LF()
	}

	if r.Changes != nil {
		doc.H2("Changes").LF()
		doc.PlainText(r.Changes.String()).LF()
	}

	return doc.Build()
}
