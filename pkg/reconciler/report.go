package reconciler

import (
	"sort"
	"time"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/dedup"
)

// Placeholders for unmatched venue groups.
const (
	unknownVenue  = "Unknown venue"
	untitledEvent = "Untitled event"
)

func (r *reconciler) buildReport(rc *runContext, index *EventIndex, now time.Time) *MatchReport {
	decisions := rc.decision
	if decisions == nil {
		decisions = []dedup.Decision{}
	}
	aliasWarnings := r.aliasWarns
	if aliasWarnings == nil {
		aliasWarnings = []string{}
	}
	return &MatchReport{
		GeneratedAt:       formatTime(now),
		SourceEventsFile:  index.SourceEventsFile,
		SourceDataFile:    index.SourceDataFile,
		SourceAliasesFile: index.SourceAliasesFile,
		StageOrder:        r.opts.strategy.Type(),
		Stats:             index.Stats,
		UnmatchedVenues:   r.unmatchedVenues(rc.events),
		Dedup:             DedupSummary{Removed: rc.removed, Decisions: decisions},
		AliasWarnings:     aliasWarnings,
		RuleWarnings:      r.warnings,
		CategoryCoverage:  r.coverage(rc.events),
	}
}

// unmatchedVenues groups unmatched events by venue key. Groups are ordered
// by count (descending), ties by first appearance.
func (r *reconciler) unmatchedVenues(events []*catalogs.Event) []UnmatchedVenue {
	groups := []UnmatchedVenue{}
	byKey := make(map[string]int)
	for _, e := range events {
		if _, matched := e.AssetPos(); matched {
			continue
		}
		key := textnorm.Key(e.VenueName, e.VenueCity)
		if i, ok := byKey[key]; ok {
			groups[i].Count++
			continue
		}
		name := textnorm.Text(e.VenueName)
		if name == "" {
			name = unknownVenue
		}
		title := textnorm.Text(e.Title)
		if title == "" {
			title = untitledEvent
		}
		byKey[key] = len(groups)
		groups = append(groups, UnmatchedVenue{
			VenueKey:      key,
			VenueName:     name,
			VenueCity:     textnorm.Text(e.VenueCity),
			Count:         1,
			SampleEventID: e.EventID,
			SampleTitle:   title,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	for i := range groups {
		groups[i].CandidateAssets = r.matcher.Candidates(groups[i].VenueName, groups[i].VenueCity, r.opts.candidates)
	}
	return groups
}

func (r *reconciler) coverage(events []*catalogs.Event) CategoryCoverage {
	allowed := r.classifier.Allowed()

	seen := make(map[categories.Category]struct{})
	disallowed := []string{}
	for _, e := range events {
		if e.EventCategory != "" {
			seen[categories.Category(e.EventCategory)] = struct{}{}
		}
		for _, c := range e.EventCategories {
			if !allowed.Has(categories.Category(c)) {
				disallowed = append(disallowed, e.EventID)
				break
			}
		}
	}
	seenList := make([]categories.Category, 0, len(seen))
	for c := range seen {
		seenList = append(seenList, c)
	}
	categories.Sort(seenList)

	return CategoryCoverage{
		AllowedCategories:              labels(allowed.List()),
		CategoriesSeen:                 labels(seenList),
		EventsWithDisallowedCategories: disallowed,
		AllCategories:                  labels(categories.All()),
	}
}

func labels(cs []categories.Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
