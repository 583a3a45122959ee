// Package differ compares a baseline event catalog with a newly built one
// and reports which events were added, removed or changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/culturalmap/eventmap/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`
	OldValue string     `json:"old_value" yaml:"old_value"`
	NewValue string     `json:"new_value" yaml:"new_value"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// EventUpdate represents an update to an existing event.
type EventUpdate struct {
	ID       string          `json:"event_id" yaml:"event_id"`
	Existing *catalogs.Event `json:"-" yaml:"-"`
	New      *catalogs.Event `json:"-" yaml:"-"`
	Changes  []FieldChange   `json:"changes" yaml:"changes"`
}

// Changeset represents changes between two event catalogs.
type Changeset struct {
	Added   []*catalogs.Event `json:"-" yaml:"-"`
	Updated []EventUpdate     `json:"updated" yaml:"updated"`
	Removed []*catalogs.Event `json:"-" yaml:"-"`
	Summary ChangesetSummary  `json:"summary" yaml:"summary"`
}

// ChangesetSummary provides counts of changes.
type ChangesetSummary struct {
	EventsAdded   int `json:"events_added" yaml:"events_added"`
	EventsUpdated int `json:"events_updated" yaml:"events_updated"`
	EventsRemoved int `json:"events_removed" yaml:"events_removed"`
	TotalChanges  int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c != nil && (len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0)
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return !c.HasChanges()
}

func calculateSummary(c *Changeset) ChangesetSummary {
	return ChangesetSummary{
		EventsAdded:   len(c.Added),
		EventsUpdated: len(c.Updated),
		EventsRemoved: len(c.Removed),
		TotalChanges:  len(c.Added) + len(c.Updated) + len(c.Removed),
	}
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	parts := []string{}
	if len(c.Added) > 0 {
		parts = append(parts, fmt.Sprintf("%d added", len(c.Added)))
	}
	if len(c.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", len(c.Updated)))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", len(c.Removed)))
	}
	return fmt.Sprintf("Changeset: Events: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	if c.IsEmpty() {
		return
	}
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if len(c.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Events (%d):\n", len(c.Added))
		for _, e := range c.Added {
			fmt.Fprintf(w, "  • %s %s (%s)\n", e.EventID, truncateString(e.Title, 50), e.Date())
		}
	}

	if len(c.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated Events (%d):\n", len(c.Updated))
		for _, u := range c.Updated {
			fmt.Fprintf(w, "  • %s:\n", u.ID)
			for _, ch := range u.Changes {
				fmt.Fprintf(w, "    - %s: %s → %s\n", ch.Path, ch.OldValue, ch.NewValue)
			}
		}
	}

	if len(c.Removed) > 0 {
		fmt.Fprintf(w, "\n❌ Removed Events (%d):\n", len(c.Removed))
		for _, e := range c.Removed {
			fmt.Fprintf(w, "  • %s %s (%s)\n", e.EventID, truncateString(e.Title, 50), e.Date())
		}
	}
}
