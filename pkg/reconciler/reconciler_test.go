package reconciler_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/logging"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

var now = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func testIndex() *catalogs.Index {
	return catalogs.NewIndex([]catalogs.Asset{
		0: {Name: "North Star House", City: "Grass Valley", Category: "Historic Landmarks"},
		1: {Name: "Center for the Arts", City: "Grass Valley", Category: "Performance Spaces"},
		2: {Name: "Art Works Gallery", City: "Grass Valley", Category: "Galleries & Museums"},
		3: {Name: "Miners Foundry", City: "Nevada City", Category: "Performance Spaces"},
	})
}

func newEvent(id, title, venue, city, start, label string) *catalogs.Event {
	t, err := catalogs.ParseTimestamp(start)
	if err != nil {
		panic(err)
	}
	return &catalogs.Event{
		EventID:     id,
		Title:       title,
		VenueName:   venue,
		VenueCity:   city,
		StartISO:    start,
		EndISO:      t.Add(2 * time.Hour).Format(time.RFC3339),
		SourceLabel: label,
	}
}

// testEvents covers the three reference cases: a cross-source duplicate, a
// fuzzy venue, and an event without any venue.
func testEvents() []*catalogs.Event {
	return []*catalogs.Event{
		newEvent("trumba-1", "Spring Art Walk", "Downtown", "Nevada City", "2026-05-09T17:00:00-07:00", "Nevada County Arts Council"),
		newEvent("libcal-7", "Spring Art Walk 2026", "Downtown Nevada City", "Nevada City", "2026-05-09T18:00:00-07:00", "Nevada County Library"),
		newEvent("civic-3", "Concert", "Miners Foundry Cultural Center", "Nevada City", "2026-05-03T19:00:00-07:00", ""),
		newEvent("community-1", "Kids Story Time", "", "", "2026-05-02T10:00:00-07:00", ""),
		newEvent("trumba-2", "History Lecture", "North Star House", "Grass Valley", "2026-06-20T19:00:00-07:00", "Nevada County Arts Council"),
	}
}

func ids(events []*catalogs.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventID
	}
	return out
}

func find(events []*catalogs.Event, id string) *catalogs.Event {
	for _, e := range events {
		if e.EventID == id {
			return e
		}
	}
	return nil
}

func newReconciler(t *testing.T, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	opts = append([]reconciler.Option{reconciler.WithClock(clock)}, opts...)
	r, err := reconciler.New(testIndex(), opts...)
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	for _, order := range []string{"match-first", "dedup-first"} {
		t.Run(order, func(t *testing.T) {
			strategy, err := reconciler.ParseStrategy(order)
			require.NoError(t, err)
			r := newReconciler(t, reconciler.WithStrategy(strategy))

			result, err := r.Build(context.Background(), testEvents())
			require.NoError(t, err)
			index := result.Index

			assert.Equal(t, []string{"community-1", "civic-3", "trumba-1", "trumba-2"}, ids(index.Events))
			assert.Equal(t, "2026-05-01T00:00:00Z", index.GeneratedAt)
			assert.Equal(t, 14, index.WindowDays)

			want := reconciler.Stats{
				TotalEvents:            4,
				MatchedEvents:          2,
				UnmatchedEvents:        2,
				MatchedByNameCity:      1,
				MatchedByNameCityFuzzy: 1,
				Upcoming:               3,
				UpcomingUnmatched:      2,
				DedupRemoved:           1,
				FamilyTagged:           1,
			}
			if diff := cmp.Diff(want, index.Stats); diff != "" {
				t.Errorf("stats mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, map[string][]string{"0": {"trumba-2"}, "3": {"civic-3"}}, index.ByAssetIdx)
			assert.Equal(t, reconciler.StrategyType(order), result.Report.StageOrder)
		})
	}
}

func TestBuildEventFields(t *testing.T) {
	r := newReconciler(t)
	result, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)
	events := result.Index.Events

	t.Run("fuzzy venue", func(t *testing.T) {
		e := find(events, "civic-3")
		require.NotNil(t, e.MatchedAssetIdx)
		assert.Equal(t, 3, *e.MatchedAssetIdx)
		assert.Equal(t, catalogs.MethodFuzzyNameCity, e.MatchMethod)
		assert.Equal(t, catalogs.ConfidenceLow, e.MatchConfidence)
		assert.Equal(t, catalogs.StatusMapped, e.MatchStatus)
		assert.Equal(t, "Performance Spaces", e.EventCategory)
		assert.Equal(t, []string{"live-music"}, e.ActivityTags)
	})

	t.Run("exact venue keeps asset category", func(t *testing.T) {
		e := find(events, "trumba-2")
		assert.Equal(t, catalogs.MethodExactNameCity, e.MatchMethod)
		assert.Equal(t, catalogs.ConfidenceMedium, e.MatchConfidence)
		assert.Equal(t, "Historic Landmarks", e.EventCategory)
		assert.Equal(t, []string{"Historic Landmarks"}, e.EventCategories)
	})

	t.Run("no venue is never matched", func(t *testing.T) {
		e := find(events, "community-1")
		assert.Nil(t, e.MatchedAssetIdx)
		assert.Equal(t, catalogs.MethodNone, e.MatchMethod)
		assert.True(t, e.IsUnmatched)
		assert.True(t, e.IsFamily)
		assert.True(t, testIndex().Allowed().Has(categories.Category(e.EventCategory)))
	})

	t.Run("duplicate carries both labels", func(t *testing.T) {
		e := find(events, "trumba-1")
		assert.Equal(t, "Spring Art Walk", e.Title)
		assert.Equal(t, []string{"Nevada County Arts Council", "Nevada County Library"}, e.SourceLabels)
		assert.Equal(t, "Galleries & Museums", e.EventCategory)
		assert.Nil(t, find(events, "libcal-7"))
	})
}

func TestBuildCategoriesStayAllowed(t *testing.T) {
	r := newReconciler(t)
	result, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)

	allowed := testIndex().Allowed()
	for _, e := range result.Index.Events {
		require.NotEmpty(t, e.EventCategories, e.EventID)
		assert.Equal(t, e.EventCategories[0], e.EventCategory, e.EventID)
		for _, c := range e.EventCategories {
			assert.True(t, allowed.Has(categories.Category(c)), "%s: %s", e.EventID, c)
		}
	}
	assert.Empty(t, result.Report.CategoryCoverage.EventsWithDisallowedCategories)
}

func TestBuildReport(t *testing.T) {
	r := newReconciler(t, reconciler.WithSourceFiles(reconciler.SourceFiles{
		Events: "data/events.json",
		Data:   "data/assets.json",
	}))
	result, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)
	report := result.Report

	assert.Equal(t, "data/events.json", report.SourceEventsFile)
	assert.Equal(t, "data/events.json", result.Index.SourceEventsFile)
	assert.Equal(t, result.Index.Stats, report.Stats)

	require.Len(t, report.UnmatchedVenues, 2)
	assert.Equal(t, "|", report.UnmatchedVenues[0].VenueKey)
	assert.Equal(t, "Unknown venue", report.UnmatchedVenues[0].VenueName)
	assert.Equal(t, "community-1", report.UnmatchedVenues[0].SampleEventID)
	assert.Equal(t, "downtown|nevadacity", report.UnmatchedVenues[1].VenueKey)
	assert.Equal(t, "Downtown", report.UnmatchedVenues[1].VenueName)
	assert.Equal(t, "Spring Art Walk", report.UnmatchedVenues[1].SampleTitle)

	assert.Equal(t, 1, report.Dedup.Removed)
	require.Len(t, report.Dedup.Decisions, 1)
	assert.Equal(t, "trumba-1", report.Dedup.Decisions[0].WinnerID)
	assert.Equal(t, "libcal-7", report.Dedup.Decisions[0].LoserID)

	coverage := report.CategoryCoverage
	assert.Equal(t, len(categories.All()), len(coverage.AllCategories))
	assert.ElementsMatch(t, []string{"Historic Landmarks", "Performance Spaces", "Galleries & Museums"}, coverage.AllowedCategories)
	assert.Subset(t, coverage.AllowedCategories, coverage.CategoriesSeen)
	assert.Empty(t, report.AliasWarnings)
}

func TestBuildUnmatchedVenueOrder(t *testing.T) {
	r := newReconciler(t)
	events := []*catalogs.Event{
		newEvent("community-1", "Poetry Night", "Back Room", "Truckee", "2026-05-02T19:00:00-07:00", ""),
		newEvent("community-2", "Open Mic", "Elks Lodge", "Truckee", "2026-05-03T19:00:00-07:00", ""),
		newEvent("community-3", "Open Mic", "Elks Lodge", "Truckee", "2026-05-10T19:00:00-07:00", ""),
	}
	result, err := r.Build(context.Background(), events)
	require.NoError(t, err)

	venues := result.Report.UnmatchedVenues
	require.Len(t, venues, 2)
	assert.Equal(t, "Elks Lodge", venues[0].VenueName)
	assert.Equal(t, 2, venues[0].Count)
	assert.Equal(t, "community-2", venues[0].SampleEventID)
	assert.Equal(t, "Back Room", venues[1].VenueName)
}

func TestBuildAliases(t *testing.T) {
	file := &aliases.File{Entries: []aliases.Entry{
		map[string]any{"venue_name": "Downtown", "venue_city": "Nevada City", "asset_idx": float64(3)},
		map[string]any{"venue_name": "Nowhere", "asset_idx": float64(40)},
	}}
	r := newReconciler(t, reconciler.WithAliases(file, "Alias file not found, continuing without aliases: old.json"))

	result, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)

	e := find(result.Index.Events, "trumba-1")
	assert.Equal(t, catalogs.MethodAlias, e.MatchMethod)
	assert.Equal(t, 1, result.Index.Stats.MatchedByAlias)
	assert.Len(t, result.Report.AliasWarnings, 2)
	assert.Contains(t, result.Report.AliasWarnings[0], "old.json")
}

func TestBuildEmpty(t *testing.T) {
	r := newReconciler(t)
	result, err := r.Build(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Index.Events)
	assert.Equal(t, reconciler.Stats{}, result.Index.Stats)
	assert.NotNil(t, result.Index.ByAssetIdx)
	assert.NotNil(t, result.Report.UnmatchedVenues)
	assert.NotNil(t, result.Report.Dedup.Decisions)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		events func() []*catalogs.Event
	}{
		{
			name: "duplicate id",
			events: func() []*catalogs.Event {
				events := testEvents()
				events[1].EventID = "trumba-1"
				return events
			},
		},
		{
			name: "end before start",
			events: func() []*catalogs.Event {
				events := testEvents()
				events[2].EndISO = "2026-05-03T18:00:00-07:00"
				return events
			},
		},
		{
			name: "missing id",
			events: func() []*catalogs.Event {
				events := testEvents()
				events[0].EventID = "  "
				return events
			},
		},
		{
			name: "date only start",
			events: func() []*catalogs.Event {
				events := testEvents()
				events[3].StartISO = "2026-05-02"
				return events
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReconciler(t)
			_, err := r.Build(context.Background(), tt.events())
			require.Error(t, err)
			var recordErr *errors.RecordError
			assert.ErrorAs(t, err, &recordErr)
		})
	}
}

func TestNewWithoutCategories(t *testing.T) {
	idx := catalogs.NewIndex([]catalogs.Asset{{Name: "Nowhere"}})
	_, err := reconciler.New(idx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoCategories)
}

func TestBuildBaseline(t *testing.T) {
	baseline := []*catalogs.Event{
		newEvent("trumba-2", "History Talk", "North Star House", "Grass Valley", "2026-06-20T19:00:00-07:00", ""),
		newEvent("old-1", "Winter Fair", "", "", "2026-01-20T19:00:00-08:00", ""),
	}
	r := newReconciler(t, reconciler.WithBaseline(baseline))

	result, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)
	require.NotNil(t, result.Changeset)
	assert.True(t, result.HasChanges())
	assert.Equal(t, 3, result.Changeset.Summary.EventsAdded)
	assert.Equal(t, 1, result.Changeset.Summary.EventsRemoved)
	require.Len(t, result.Changeset.Updated, 1)
	assert.Equal(t, "trumba-2", result.Changeset.Updated[0].ID)
	assert.Same(t, result.Changeset, result.Report.Changes)
	assert.Contains(t, result.Summary(), "Changeset")
}

func TestBuildLogs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r := newReconciler(t)
	_, err := r.Build(ctx, testEvents())
	require.NoError(t, err)

	entries := tl.EntriesWithMessage("Event index built")
	require.Len(t, entries, 1)
	assert.Equal(t, float64(4), entries[0]["total"])
	assert.Equal(t, float64(1), entries[0]["dedup_removed"])
}

type recordingObserver struct {
	stages []reconciler.Stage
	builds int
	merges int
}

func (o *recordingObserver) ObserveStage(stage reconciler.Stage, _ time.Duration) {
	o.stages = append(o.stages, stage)
}
func (o *recordingObserver) ObserveBuild(*reconciler.Result)     { o.builds++ }
func (o *recordingObserver) ObserveMerge(*reconciler.MergeResult) { o.merges++ }

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	r := newReconciler(t,
		reconciler.WithStrategy(reconciler.NewDedupFirstStrategy()),
		reconciler.WithObserver(obs))

	_, err := r.Build(context.Background(), testEvents())
	require.NoError(t, err)
	_, err = r.Merge(context.Background(), nil)
	require.NoError(t, err)

	want := []reconciler.Stage{
		reconciler.StageDedup, reconciler.StageTag, reconciler.StageMatch, reconciler.StageClassify,
		reconciler.StageDedup, reconciler.StageTag,
	}
	assert.Equal(t, want, obs.stages)
	assert.Equal(t, 1, obs.builds)
	assert.Equal(t, 1, obs.merges)
}

func TestMerge(t *testing.T) {
	r := newReconciler(t)
	libcal := newEvent("libcal-7", "Spring Art Walk 2026", "Downtown Nevada City", "Nevada City", "2026-05-09T18:00:00-07:00", "")
	batches := []reconciler.Batch{
		{Source: "trumba", Events: []*catalogs.Event{
			newEvent("trumba-1", "Spring Art Walk", "Downtown", "Nevada City", "2026-05-09T17:00:00-07:00", ""),
		}},
		{Source: "libcal", Events: []*catalogs.Event{libcal}},
		{Source: "crazyhorse", Events: []*catalogs.Event{
			newEvent("crazyhorse-1", "Friday Night", "Crazy Horse Saloon", "Nevada City", "2026-05-08T21:00:00-07:00", ""),
		}},
	}

	result, err := r.Merge(context.Background(), batches)
	require.NoError(t, err)
	merged := result.Merged

	assert.Equal(t, map[string]int{"trumba": 1, "libcal": 1, "crazyhorse": 1}, merged.SourceCounts)
	assert.Equal(t, 1, merged.DedupRemoved)
	assert.Equal(t, "2026-05-01T00:00:00Z", merged.GeneratedAt)
	assert.Equal(t, []string{"crazyhorse-1", "trumba-1"}, ids(merged.Events))
	assert.Equal(t, "Nevada County Library", libcal.SourceLabel)

	winner := find(merged.Events, "trumba-1")
	assert.Equal(t, "Nevada County Arts Council", winner.SourceLabel)
	assert.Equal(t, []string{"Nevada County Arts Council", "Nevada County Library"}, winner.SourceLabels)

	saloon := find(merged.Events, "crazyhorse-1")
	assert.Equal(t, []string{"live-music"}, saloon.ActivityTags)
	assert.Nil(t, saloon.MatchedAssetIdx)
	assert.Empty(t, saloon.EventCategory)
	require.Len(t, result.Decisions, 1)
}

func TestMergeEmpty(t *testing.T) {
	r := newReconciler(t)
	result, err := r.Merge(context.Background(), []reconciler.Batch{{Source: "trumba"}})
	require.NoError(t, err)

	assert.NotNil(t, result.Merged.Events)
	assert.Empty(t, result.Merged.Events)
	assert.Equal(t, map[string]int{"trumba": 0}, result.Merged.SourceCounts)
	assert.Zero(t, result.Merged.DedupRemoved)
	assert.NotNil(t, result.Decisions)
}

func TestMergeCollidingIDs(t *testing.T) {
	r := newReconciler(t)
	batches := []reconciler.Batch{
		{Source: "community", Events: []*catalogs.Event{
			newEvent("community-1", "Potluck", "Grange Hall", "Penn Valley", "2026-05-02T17:00:00-07:00", ""),
			newEvent("community-1", "Cleanup Day", "Pioneer Park", "Nevada City", "2026-05-03T09:00:00-07:00", ""),
		}},
	}
	result, err := r.Merge(context.Background(), batches)
	require.NoError(t, err)

	assert.Equal(t, []string{"community-1", "community-1-2"}, ids(result.Merged.Events))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "suffixed")
}

func TestMergeLogsPerSource(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	r := newReconciler(t)
	_, err := r.Merge(ctx, []reconciler.Batch{
		{Source: "trumba", Events: []*catalogs.Event{
			newEvent("trumba-1", "Spring Art Walk", "Downtown", "Nevada City", "2026-05-09T17:00:00-07:00", ""),
		}},
		{Source: "libcal"},
	})
	require.NoError(t, err)

	entries := tl.EntriesWithMessage("Source batch loaded")
	require.Len(t, entries, 2)
	assert.Equal(t, "trumba", entries[0]["source"])
	assert.Equal(t, float64(1), entries[0]["events"])
	assert.Equal(t, "libcal", entries[1]["source"])
}

func TestMergeNullRecord(t *testing.T) {
	r := newReconciler(t)
	_, err := r.Merge(context.Background(), []reconciler.Batch{{Source: "libcal", Events: []*catalogs.Event{nil}}})
	var recordErr *errors.RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, "libcal", recordErr.Source)
}

func TestMatchProbe(t *testing.T) {
	r := newReconciler(t)
	res, candidates := r.Match("Miners Foundry Cultural Center", "Nevada City", "")
	assert.Equal(t, 3, res.Pos)
	assert.Equal(t, catalogs.MethodFuzzyNameCity, res.Method)
	require.NotEmpty(t, candidates)
	assert.Equal(t, 3, candidates[0].AssetIdx)
	assert.LessOrEqual(t, len(candidates), 3)
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  reconciler.Option
	}{
		{"nil strategy", reconciler.WithStrategy(nil)},
		{"nil rules", reconciler.WithRules(nil)},
		{"title threshold", reconciler.WithThresholds(101, 70)},
		{"venue threshold", reconciler.WithThresholds(85, -1)},
		{"window", reconciler.WithWindowDays(0)},
		{"candidates", reconciler.WithCandidateCount(-1)},
		{"clock", reconciler.WithClock(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconciler.New(testIndex(), tt.opt)
			var validationErr *errors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := reconciler.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, reconciler.StrategyTypeMatchFirst, s.Type())

	_, err = reconciler.ParseStrategy("random")
	assert.Error(t, err)
}
