package eventmap

import (
	"sync"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/dedup"
	"github.com/culturalmap/eventmap/pkg/differ"
)

// Hook function types for event changes
type (
	// EventAddedHook is called when an event appears in a build
	EventAddedHook func(event catalogs.Event)

	// EventUpdatedHook is called when an event changed since the last build
	EventUpdatedHook func(old, new catalogs.Event, changes []differ.FieldChange)

	// EventRemovedHook is called when an event is gone from a build
	EventRemovedHook func(event catalogs.Event)

	// DuplicateHook is called for every cross-source duplicate removed
	DuplicateHook func(decision dedup.Decision)
)

// Hooks registers change callbacks.
type Hooks interface {
	OnEventAdded(fn EventAddedHook)
	OnEventUpdated(fn EventUpdatedHook)
	OnEventRemoved(fn EventRemovedHook)
	OnDuplicate(fn DuplicateHook)
}

// hooks manages event callbacks
type hooks struct {
	mu             sync.RWMutex
	onEventAdded   []EventAddedHook
	onEventUpdated []EventUpdatedHook
	onEventRemoved []EventRemovedHook
	onDuplicate    []DuplicateHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnEventAdded registers a callback for added events
func (h *hooks) OnEventAdded(fn EventAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEventAdded = append(h.onEventAdded, fn)
}

// OnEventUpdated registers a callback for updated events
func (h *hooks) OnEventUpdated(fn EventUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEventUpdated = append(h.onEventUpdated, fn)
}

// OnEventRemoved registers a callback for removed events
func (h *hooks) OnEventRemoved(fn EventRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEventRemoved = append(h.onEventRemoved, fn)
}

// OnDuplicate registers a callback for dedup decisions
func (h *hooks) OnDuplicate(fn DuplicateHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDuplicate = append(h.onDuplicate, fn)
}

// triggerChanges fires the change hooks in changeset order: added,
// updated, removed.
func (h *hooks) triggerChanges(changes *differ.Changeset) {
	if changes.IsEmpty() {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range changes.Added {
		for _, hook := range h.onEventAdded {
			hook(*e.Clone())
		}
	}
	for _, u := range changes.Updated {
		for _, hook := range h.onEventUpdated {
			hook(*u.Existing.Clone(), *u.New.Clone(), u.Changes)
		}
	}
	for _, e := range changes.Removed {
		for _, hook := range h.onEventRemoved {
			hook(*e.Clone())
		}
	}
}

func (h *hooks) triggerDuplicates(decisions []dedup.Decision) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, d := range decisions {
		for _, hook := range h.onDuplicate {
			hook(d)
		}
	}
}
