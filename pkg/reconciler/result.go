package reconciler

import (
	"fmt"
	"time"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/dedup"
	"github.com/culturalmap/eventmap/pkg/differ"
	"github.com/culturalmap/eventmap/pkg/matching"
)

// SourceFiles names the inputs of a build.
type SourceFiles struct {
	Events  string
	Data    string
	Aliases string
}

// Stats are the per-run counters shared by the index and the report.
type Stats struct {
	TotalEvents            int `json:"total_events" yaml:"total_events"`
	MatchedEvents          int `json:"matched_events" yaml:"matched_events"`
	UnmatchedEvents        int `json:"unmatched_events" yaml:"unmatched_events"`
	MatchedByPID           int `json:"matched_by_pid" yaml:"matched_by_pid"`
	MatchedByAlias         int `json:"matched_by_alias" yaml:"matched_by_alias"`
	MatchedByNameCity      int `json:"matched_by_name_city" yaml:"matched_by_name_city"`
	MatchedByNameCityFuzzy int `json:"matched_by_name_city_fuzzy" yaml:"matched_by_name_city_fuzzy"`
	Upcoming               int `json:"upcoming_14d" yaml:"upcoming_14d"`
	UpcomingUnmatched      int `json:"upcoming_unmatched" yaml:"upcoming_unmatched"`
	DedupRemoved           int `json:"dedup_removed" yaml:"dedup_removed"`
	FamilyTagged           int `json:"family_tagged" yaml:"family_tagged"`
}

// EventIndex is the events.index.json artifact.
type EventIndex struct {
	GeneratedAt       string              `json:"generated_at" yaml:"generated_at"`
	SourceEventsFile  string              `json:"source_events_file,omitempty" yaml:"source_events_file,omitempty"`
	SourceDataFile    string              `json:"source_data_file,omitempty" yaml:"source_data_file,omitempty"`
	SourceAliasesFile string              `json:"source_aliases_file,omitempty" yaml:"source_aliases_file,omitempty"`
	WindowDays        int                 `json:"window_days" yaml:"window_days"`
	Stats             Stats               `json:"stats" yaml:"stats"`
	ByAssetIdx        map[string][]string `json:"by_asset_idx" yaml:"by_asset_idx"`
	Events            []*catalogs.Event   `json:"events" yaml:"events"`
}

// MatchReport is the events-match-report.json diagnostics artifact.
type MatchReport struct {
	GeneratedAt       string            `json:"generated_at" yaml:"generated_at"`
	SourceEventsFile  string            `json:"source_events_file,omitempty" yaml:"source_events_file,omitempty"`
	SourceDataFile    string            `json:"source_data_file,omitempty" yaml:"source_data_file,omitempty"`
	SourceAliasesFile string            `json:"source_aliases_file,omitempty" yaml:"source_aliases_file,omitempty"`
	StageOrder        StrategyType      `json:"stage_order" yaml:"stage_order"`
	Stats             Stats             `json:"stats" yaml:"stats"`
	UnmatchedVenues   []UnmatchedVenue  `json:"unmatched_venues" yaml:"unmatched_venues"`
	Dedup             DedupSummary      `json:"dedup" yaml:"dedup"`
	AliasWarnings     []string          `json:"alias_warnings" yaml:"alias_warnings"`
	RuleWarnings      []string          `json:"rule_warnings,omitempty" yaml:"rule_warnings,omitempty"`
	CategoryCoverage  CategoryCoverage  `json:"category_coverage" yaml:"category_coverage"`
	Changes           *differ.Changeset `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// UnmatchedVenue groups unmatched events that share a venue key.
type UnmatchedVenue struct {
	VenueKey        string               `json:"venue_key" yaml:"venue_key"`
	VenueName       string               `json:"venue_name" yaml:"venue_name"`
	VenueCity       string               `json:"venue_city" yaml:"venue_city"`
	Count           int                  `json:"count" yaml:"count"`
	SampleEventID   string               `json:"sample_event_id" yaml:"sample_event_id"`
	SampleTitle     string               `json:"sample_title" yaml:"sample_title"`
	CandidateAssets []matching.Candidate `json:"candidate_assets" yaml:"candidate_assets"`
}

// DedupSummary lists the duplicates removed in a run.
type DedupSummary struct {
	Removed   int              `json:"removed" yaml:"removed"`
	Decisions []dedup.Decision `json:"decisions" yaml:"decisions"`
}

// CategoryCoverage reports how event categories relate to the catalog's.
type CategoryCoverage struct {
	AllowedCategories              []string `json:"allowed_categories" yaml:"allowed_categories"`
	CategoriesSeen                 []string `json:"categories_seen" yaml:"categories_seen"`
	EventsWithDisallowedCategories []string `json:"events_with_disallowed_categories" yaml:"events_with_disallowed_categories"`
	AllCategories                  []string `json:"all_categories" yaml:"all_categories"`
}

// MergedEvents is the wrapped output of the merge command.
type MergedEvents struct {
	GeneratedAt  string            `json:"generated_at" yaml:"generated_at"`
	SourceCounts map[string]int    `json:"source_counts" yaml:"source_counts"`
	DedupRemoved int               `json:"dedup_removed" yaml:"dedup_removed"`
	FamilyTagged int               `json:"family_tagged" yaml:"family_tagged"`
	Events       []*catalogs.Event `json:"events" yaml:"events"`
}

// Result represents the outcome of a build.
type Result struct {
	// Core data
	Index     *EventIndex
	Report    *MatchReport
	Changeset *differ.Changeset

	// Metadata
	Metadata ResultMetadata

	// Issues
	Warnings []string
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Strategy used for stage ordering
	Strategy Strategy

	// StageDurations holds wall time per stage
	StageDurations map[Stage]time.Duration
}

// HasChanges returns true if a baseline was given and events changed.
func (r *Result) HasChanges() bool {
	return r.Changeset != nil && r.Changeset.HasChanges()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Index.Stats
	summary := fmt.Sprintf("Indexed %d events: %d matched, %d unmatched, %d duplicates removed",
		s.TotalEvents, s.MatchedEvents, s.UnmatchedEvents, s.DedupRemoved)
	if r.Changeset != nil {
		summary += ". " + r.Changeset.String()
	}
	return summary
}

// MergeResult represents the outcome of a merge.
type MergeResult struct {
	Merged    *MergedEvents
	Decisions []dedup.Decision
	Warnings  []string
	Metadata  ResultMetadata
}

// Summary returns a human-readable summary of the merge.
func (r *MergeResult) Summary() string {
	return fmt.Sprintf("Merged %d events: %d duplicates removed, %d family events",
		len(r.Merged.Events), r.Merged.DedupRemoved, r.Merged.FamilyTagged)
}

func newMetadata(start time.Time, strategy Strategy) ResultMetadata {
	return ResultMetadata{
		StartTime:      start,
		Strategy:       strategy,
		StageDurations: make(map[Stage]time.Duration),
	}
}

// finalize calculates duration and marks completion.
func (m *ResultMetadata) finalize() {
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
}
