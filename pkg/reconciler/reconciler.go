// Package reconciler runs the event pipeline: venue matching, category
// classification, cross-source deduplication and activity tagging, in a
// configurable stage order. It produces the event index, the diagnostics
// report and the merged event list.
package reconciler

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/authority"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/classify"
	"github.com/culturalmap/eventmap/pkg/dedup"
	"github.com/culturalmap/eventmap/pkg/differ"
	"github.com/culturalmap/eventmap/pkg/logging"
	"github.com/culturalmap/eventmap/pkg/matching"
)

// Reconciler is the main interface for running the event pipeline.
type Reconciler interface {
	// Build runs every stage over one event batch and returns the index
	// artifacts. The batch is validated first; malformed records are fatal.
	Build(ctx context.Context, events []*catalogs.Event) (*Result, error)

	// Merge combines per-source batches, fills source defaults, removes
	// cross-source duplicates and tags the survivors.
	Merge(ctx context.Context, batches []Batch) (*MergeResult, error)

	// Match probes a single venue against the catalog.
	Match(name, city string, pid catalogs.ID) (matching.Result, []matching.Candidate)
}

// Observer receives stage timings and run results.
type Observer interface {
	ObserveStage(stage Stage, d time.Duration)
	ObserveBuild(r *Result)
	ObserveMerge(r *MergeResult)
}

// Batch is one source's events for Merge.
type Batch struct {
	Source string
	Events []*catalogs.Event
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	opts       *options
	index      *catalogs.Index
	authority  authority.Authority
	matcher    *matching.Matcher
	classifier *classify.Classifier
	tagger     *classify.Tagger
	dedup      *dedup.Deduplicator
	warnings   []string
	aliasWarns []string
}

// New creates a Reconciler over an asset index. Aliases, rules and the
// source registry are compiled once here and shared read-only by every
// run. An index without categories is a configuration error.
func New(index *catalogs.Index, opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	compiled, ruleWarnings, err := options.rules.Compile()
	if err != nil {
		return nil, err
	}

	auth, err := authority.New(options.rules.Sources)
	if err != nil {
		return nil, err
	}

	fallback := options.fallback
	if fallback == "" {
		fallback = compiled.Fallback
	}
	classifier, err := classify.NewClassifier(compiled, index.Allowed(), fallback)
	if err != nil {
		return nil, err
	}

	table, resolveWarnings := aliases.Resolve(options.aliases, index)
	aliasWarnings := append(slices.Clone(options.aliasWarnings), resolveWarnings...)

	return &reconciler{
		opts:       options,
		index:      index,
		authority:  auth,
		matcher:    matching.New(index, table),
		classifier: classifier,
		tagger:     classify.NewTagger(compiled, auth),
		dedup: dedup.New(auth,
			dedup.WithTitleThreshold(options.titleThreshold),
			dedup.WithVenueThreshold(options.venueThreshold)),
		warnings:   ruleWarnings,
		aliasWarns: aliasWarnings,
	}, nil
}

// runContext holds per-run state.
type runContext struct {
	logger   *zerolog.Logger
	meta     ResultMetadata
	events   []*catalogs.Event
	removed  int
	family   int
	decision []dedup.Decision
}

// Build performs the full pipeline with clean step-by-step flow.
func (r *reconciler) Build(ctx context.Context, events []*catalogs.Event) (*Result, error) {
	// Step 1: Validate input and parse timestamps
	if err := catalogs.Prepare("events", events); err != nil {
		return nil, err
	}

	rc := &runContext{
		logger: logging.FromContext(ctx),
		meta:   newMetadata(time.Now(), r.opts.strategy),
		events: events,
	}
	for _, w := range r.aliasWarns {
		rc.logger.Warn().Str("warning", w).Msg("Alias problem")
	}
	for _, w := range r.warnings {
		rc.logger.Warn().Str("warning", w).Msg("Rule problem")
	}
	rc.logger.Info().
		Int("events", len(events)).
		Int("assets", r.index.Len()).
		Str("stage_order", r.opts.strategy.Type().String()).
		Msg("Building event index")

	// Step 2: Run stages in configured order
	for _, stage := range r.opts.strategy.Stages() {
		r.runStage(ctx, rc, stage)
	}

	// Step 3: Sort and build artifacts
	catalogs.SortEvents(rc.events)
	now := r.opts.now()
	index := r.buildIndex(rc, now)
	report := r.buildReport(rc, index, now)

	result := &Result{
		Index:    index,
		Report:   report,
		Metadata: rc.meta,
		Warnings: append(slices.Clone(r.aliasWarns), r.warnings...),
	}

	// Step 4: Compare with baseline when given
	if r.opts.baseline != nil {
		result.Changeset = differ.New().Events(r.opts.baseline, rc.events)
		report.Changes = result.Changeset
		rc.logger.Info().
			Int("added", result.Changeset.Summary.EventsAdded).
			Int("updated", result.Changeset.Summary.EventsUpdated).
			Int("removed", result.Changeset.Summary.EventsRemoved).
			Msg("Compared with baseline")
	}

	result.Metadata.finalize()
	if r.opts.observer != nil {
		r.opts.observer.ObserveBuild(result)
	}

	rc.logger.Info().
		Int("total", index.Stats.TotalEvents).
		Int("matched", index.Stats.MatchedEvents).
		Int("unmatched", index.Stats.UnmatchedEvents).
		Int("dedup_removed", index.Stats.DedupRemoved).
		Dur("duration", result.Metadata.Duration).
		Msg("Event index built")

	return result, nil
}

func (r *reconciler) runStage(ctx context.Context, rc *runContext, stage Stage) {
	start := time.Now()
	switch stage {
	case StageMatch:
		r.matchStage(rc)
	case StageClassify:
		r.classifyStage(rc)
	case StageDedup:
		res := r.dedup.Run(logging.WithStage(ctx, string(stage)), rc.events)
		rc.events = res.Events
		rc.removed += res.Removed
		rc.decision = append(rc.decision, res.Decisions...)
	case StageTag:
		rc.family = r.tagStage(rc.events)
	}
	d := time.Since(start)
	r.observeStage(&rc.meta, stage, d)
	rc.logger.Debug().
		Str("stage", string(stage)).
		Int("events", len(rc.events)).
		Dur("duration", d).
		Msg("Stage complete")
}

func (r *reconciler) matchStage(rc *runContext) {
	for _, e := range rc.events {
		res := r.matcher.MatchEvent(e)
		if res.Matched() {
			rc.logger.Trace().
				Str("event_id", e.EventID).
				Str("method", res.Method).
				Int("asset_idx", res.Pos).
				Msg("Venue matched")
		}
	}
}

func (r *reconciler) classifyStage(rc *runContext) {
	for _, e := range rc.events {
		var assetCategory categories.Category
		if pos, ok := e.AssetPos(); ok && r.index.Valid(pos) {
			assetCategory = r.index.Category(pos)
		}
		r.classifier.Apply(e, assetCategory)
	}
}

func (r *reconciler) tagStage(events []*catalogs.Event) int {
	family := 0
	for _, e := range events {
		if r.tagger.Apply(e) {
			family++
		}
	}
	return family
}

// buildIndex computes stats and the asset reverse map after every stage
// ran.
func (r *reconciler) buildIndex(rc *runContext, now time.Time) *EventIndex {
	stats := Stats{
		TotalEvents:  len(rc.events),
		DedupRemoved: rc.removed,
		FamilyTagged: rc.family,
	}
	windowEnd := now.Add(time.Duration(r.opts.windowDays) * 24 * time.Hour)
	byAsset := make(map[string][]string)

	for _, e := range rc.events {
		pos, matched := e.AssetPos()
		upcoming := !e.Start().Before(now) && !e.Start().After(windowEnd)
		if upcoming {
			stats.Upcoming++
		}
		if !matched {
			stats.UnmatchedEvents++
			if upcoming {
				stats.UpcomingUnmatched++
			}
			continue
		}
		stats.MatchedEvents++
		key := strconv.Itoa(pos)
		byAsset[key] = append(byAsset[key], e.EventID)
		switch e.MatchMethod {
		case catalogs.MethodExactIdentifier:
			stats.MatchedByPID++
		case catalogs.MethodAlias:
			stats.MatchedByAlias++
		case catalogs.MethodExactNameCity:
			stats.MatchedByNameCity++
		case catalogs.MethodFuzzyNameCity:
			stats.MatchedByNameCityFuzzy++
		}
	}
	for key := range byAsset {
		slices.Sort(byAsset[key])
	}

	events := rc.events
	if events == nil {
		events = []*catalogs.Event{}
	}
	files := r.opts.files
	return &EventIndex{
		GeneratedAt:       formatTime(now),
		SourceEventsFile:  files.Events,
		SourceDataFile:    files.Data,
		SourceAliasesFile: files.Aliases,
		WindowDays:        r.opts.windowDays,
		Stats:             stats,
		ByAssetIdx:        byAsset,
		Events:            events,
	}
}

// Match probes a single venue against the catalog.
func (r *reconciler) Match(name, city string, pid catalogs.ID) (matching.Result, []matching.Candidate) {
	return r.matcher.Match(pid, name, city), r.matcher.Candidates(name, city, r.opts.candidates)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
