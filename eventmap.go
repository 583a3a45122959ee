// Package eventmap provides the library entry point for reconciling event
// records from many sources with a curated asset catalog.
//
// A Client wraps a reconciler built once over the asset catalog. Every
// Build is compared with the previous one and the registered hooks are
// told which events appeared, changed or disappeared.
//
// Example usage:
//
//	em, err := eventmap.New(assets,
//	    eventmap.WithReconcilerOptions(reconciler.WithStrategy(reconciler.NewDedupFirstStrategy())),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	em.OnEventAdded(func(e catalogs.Event) {
//	    log.Printf("new event: %s", e.EventID)
//	})
//
//	result, err := em.Build(ctx, events)
package eventmap

import (
	"context"
	"sync"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/differ"
	"github.com/culturalmap/eventmap/pkg/logging"
	"github.com/culturalmap/eventmap/pkg/matching"
	"github.com/culturalmap/eventmap/pkg/reconciler"
)

var _ Client = (*client)(nil)

// Client reconciles event batches against one asset catalog.
type Client interface {
	// Build runs the full pipeline over one batch.
	Build(ctx context.Context, events []*catalogs.Event) (*reconciler.Result, error)

	// Merge combines per-source batches into one deduplicated list.
	Merge(ctx context.Context, batches []reconciler.Batch) (*reconciler.MergeResult, error)

	// Match probes a single venue.
	Match(name, city string, pid catalogs.ID) (matching.Result, []matching.Candidate)

	// Events returns a copy of the events of the last build.
	Events() []*catalogs.Event

	// Hooks provides access to change callbacks.
	Hooks
}

type client struct {
	options    *options
	index      *catalogs.Index
	reconciler reconciler.Reconciler
	differ     differ.Differ

	mu     sync.RWMutex
	events []*catalogs.Event // last built events, nil before the first build
	hooks  *hooks
}

// New creates a Client over the given assets.
func New(assets []catalogs.Asset, opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	index := catalogs.NewIndex(assets)
	r, err := reconciler.New(index, o.reconcilerOpts...)
	if err != nil {
		return nil, err
	}

	logging.Debug().
		Int("assets", index.Len()).
		Int("initial_events", len(o.initialEvents)).
		Msg("Created eventmap client")

	return &client{
		options:    o,
		index:      index,
		reconciler: r,
		differ:     differ.New(o.differOpts...),
		events:     cloneEvents(o.initialEvents),
		hooks:      newHooks(),
	}, nil
}

// Build runs the pipeline, records the built events and fires hooks.
func (c *client) Build(ctx context.Context, events []*catalogs.Event) (*reconciler.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := c.reconciler.Build(ctx, events)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	previous := c.events
	c.events = cloneEvents(result.Index.Events)
	c.mu.Unlock()

	if previous != nil {
		c.hooks.triggerChanges(c.differ.Events(previous, result.Index.Events))
	}
	c.hooks.triggerDuplicates(result.Report.Dedup.Decisions)

	return result, nil
}

// Merge runs the merge stages and fires duplicate hooks.
func (c *client) Merge(ctx context.Context, batches []reconciler.Batch) (*reconciler.MergeResult, error) {
	result, err := c.reconciler.Merge(ctx, batches)
	if err != nil {
		return nil, err
	}
	c.hooks.triggerDuplicates(result.Decisions)
	return result, nil
}

func (c *client) Match(name, city string, pid catalogs.ID) (matching.Result, []matching.Candidate) {
	return c.reconciler.Match(name, city, pid)
}

func (c *client) Events() []*catalogs.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneEvents(c.events)
}

// cloneEvents deep-copies events. The reconciler edits its input in place.
func cloneEvents(events []*catalogs.Event) []*catalogs.Event {
	if events == nil {
		return nil
	}
	out := make([]*catalogs.Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

func (c *client) OnEventAdded(fn EventAddedHook)     { c.hooks.OnEventAdded(fn) }
func (c *client) OnEventUpdated(fn EventUpdatedHook) { c.hooks.OnEventUpdated(fn) }
func (c *client) OnEventRemoved(fn EventRemovedHook) { c.hooks.OnEventRemoved(fn) }
func (c *client) OnDuplicate(fn DuplicateHook)       { c.hooks.OnDuplicate(fn) }
