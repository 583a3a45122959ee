package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/culturalmap/eventmap/pkg/authority"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/dedup"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/logging"
)

// Merge combines per-source batches into one deduplicated, tagged event
// list. Matching and classification are left to Build.
func (r *reconciler) Merge(ctx context.Context, batches []Batch) (*MergeResult, error) {
	logger := logging.FromContext(ctx)
	meta := newMetadata(time.Now(), r.opts.strategy)

	var all []*catalogs.Event
	counts := make(map[string]int, len(batches))
	filled := 0
	for _, batch := range batches {
		source := batch.Source
		if r.authority.Find(source) == nil {
			source = ""
		}
		for i, e := range batch.Events {
			if e == nil {
				return nil, errors.NewRecordError(batch.Source, i, "", "", "record is null")
			}
			if authority.FillDefaults(r.authority, source, e) {
				filled++
			}
		}
		counts[batch.Source] += len(batch.Events)
		all = append(all, batch.Events...)
		logging.FromContext(logging.WithSource(ctx, batch.Source)).Debug().
			Int("events", len(batch.Events)).
			Msg("Source batch loaded")
	}

	var warnings []string
	if n := catalogs.DisambiguateIDs(all); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d colliding event ids were suffixed", n))
		logger.Warn().Int("rewritten", n).Msg("Colliding event ids suffixed")
	}
	if err := catalogs.Prepare("merge", all); err != nil {
		return nil, err
	}

	start := time.Now()
	res := r.dedup.Run(logging.WithStage(ctx, string(StageDedup)), all)
	r.observeStage(&meta, StageDedup, time.Since(start))

	start = time.Now()
	family := r.tagStage(res.Events)
	r.observeStage(&meta, StageTag, time.Since(start))

	events := res.Events
	if events == nil {
		events = []*catalogs.Event{}
	}
	catalogs.SortEvents(events)
	decisions := res.Decisions
	if decisions == nil {
		decisions = []dedup.Decision{}
	}

	result := &MergeResult{
		Merged: &MergedEvents{
			GeneratedAt:  formatTime(r.opts.now()),
			SourceCounts: counts,
			DedupRemoved: res.Removed,
			FamilyTagged: family,
			Events:       events,
		},
		Decisions: decisions,
		Warnings:  warnings,
		Metadata:  meta,
	}
	result.Metadata.finalize()
	if r.opts.observer != nil {
		r.opts.observer.ObserveMerge(result)
	}

	logger.Info().
		Int("sources", len(batches)).
		Int("input", len(all)).
		Int("defaults_filled", filled).
		Int("dedup_removed", res.Removed).
		Int("family_tagged", family).
		Int("output", len(events)).
		Msg("Events merged")

	return result, nil
}

func (r *reconciler) observeStage(meta *ResultMetadata, stage Stage, d time.Duration) {
	meta.StageDurations[stage] += d
	if r.opts.observer != nil {
		r.opts.observer.ObserveStage(stage, d)
	}
}
