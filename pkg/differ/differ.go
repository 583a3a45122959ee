package differ

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/culturalmap/eventmap/pkg/catalogs"
)

// Differ handles change detection between event catalogs.
type Differ interface {
	// Events compares two sets of events keyed by event id
	Events(existing, updated []*catalogs.Event) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields   map[string]bool
	deepComparison bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields:   make(map[string]bool),
		deepComparison: true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Events compares two sets of events and returns changes.
func (diff *differ) Events(existing, updated []*catalogs.Event) *Changeset {
	changeset := &Changeset{
		Added:   []*catalogs.Event{},
		Updated: []EventUpdate{},
		Removed: []*catalogs.Event{},
	}

	existingMap := make(map[string]*catalogs.Event, len(existing))
	for _, e := range existing {
		existingMap[e.EventID] = e
	}

	newMap := make(map[string]*catalogs.Event, len(updated))
	for _, e := range updated {
		newMap[e.EventID] = e
	}

	for _, e := range updated {
		if old, exists := existingMap[e.EventID]; exists {
			if update := diff.event(old, e); update != nil {
				changeset.Updated = append(changeset.Updated, *update)
			}
		} else {
			changeset.Added = append(changeset.Added, e)
		}
	}

	for _, e := range existing {
		if _, exists := newMap[e.EventID]; !exists {
			changeset.Removed = append(changeset.Removed, e)
		}
	}

	sortChangeset(changeset)
	changeset.Summary = calculateSummary(changeset)

	return changeset
}

func (diff *differ) event(existing, updated *catalogs.Event) *EventUpdate {
	changes := []FieldChange{}
	add := func(path, oldValue, newValue string) {
		if oldValue == newValue || diff.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: oldValue,
			NewValue: newValue,
			Type:     ChangeTypeUpdate,
		})
	}

	add("title", truncateString(existing.Title, 50), truncateString(updated.Title, 50))
	add("start_iso", existing.StartISO, updated.StartISO)
	add("end_iso", existing.EndISO, updated.EndISO)
	add("venue_name", existing.VenueName, updated.VenueName)
	add("venue_city", existing.VenueCity, updated.VenueCity)
	add("matched_asset_idx", formatPos(existing.MatchedAssetIdx), formatPos(updated.MatchedAssetIdx))
	add("match_method", existing.MatchMethod, updated.MatchMethod)
	add("match_confidence", existing.MatchConfidence, updated.MatchConfidence)
	add("event_category", existing.EventCategory, updated.EventCategory)
	add("is_family", strconv.FormatBool(existing.IsFamily), strconv.FormatBool(updated.IsFamily))

	if diff.deepComparison {
		diffList(add, "event_categories", existing.EventCategories, updated.EventCategories)
		diffList(add, "activity_tags", existing.ActivityTags, updated.ActivityTags)
		diffList(add, "source_labels", existing.SourceLabels, updated.SourceLabels)
	}

	if len(changes) == 0 {
		return nil
	}

	return &EventUpdate{
		ID:       existing.EventID,
		Existing: existing,
		New:      updated,
		Changes:  changes,
	}
}

func diffList(add func(path, oldValue, newValue string), path string, existing, updated []string) {
	if slices.Equal(existing, updated) {
		return
	}
	add(path, joinList(existing), joinList(updated))
}

func sortChangeset(changeset *Changeset) {
	byID := func(events []*catalogs.Event) {
		sort.Slice(events, func(i, j int) bool {
			return events[i].EventID < events[j].EventID
		})
	}
	byID(changeset.Added)
	byID(changeset.Removed)
	sort.Slice(changeset.Updated, func(i, j int) bool {
		return changeset.Updated[i].ID < changeset.Updated[j].ID
	})
}

func formatPos(pos *int) string {
	if pos == nil {
		return "null"
	}
	return strconv.Itoa(*pos)
}

func joinList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	return "[" + strings.Join(values, ", ") + "]"
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
