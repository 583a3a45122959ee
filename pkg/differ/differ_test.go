package differ_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/differ"
)

func pos(i int) *int { return &i }

func TestEvents(t *testing.T) {
	base := []*catalogs.Event{
		{EventID: "a", Title: "Jazz", MatchedAssetIdx: pos(1), MatchMethod: "alias", ActivityTags: []string{"live-music"}},
		{EventID: "b", Title: "Walk"},
		{EventID: "c", Title: "Gone"},
	}
	next := []*catalogs.Event{
		{EventID: "d", Title: "New"},
		{EventID: "a", Title: "Jazz", MatchMethod: "none", ActivityTags: []string{"live-music", "community"}},
		{EventID: "b", Title: "Walk"},
	}

	cs := differ.New().Events(base, next)
	require.True(t, cs.HasChanges())
	require.Len(t, cs.Added, 1)
	assert.Equal(t, "d", cs.Added[0].EventID)
	require.Len(t, cs.Removed, 1)
	assert.Equal(t, "c", cs.Removed[0].EventID)
	require.Len(t, cs.Updated, 1)

	want := []differ.FieldChange{
		{Path: "matched_asset_idx", OldValue: "1", NewValue: "null", Type: differ.ChangeTypeUpdate},
		{Path: "match_method", OldValue: "alias", NewValue: "none", Type: differ.ChangeTypeUpdate},
		{Path: "activity_tags", OldValue: "[live-music]", NewValue: "[live-music, community]", Type: differ.ChangeTypeUpdate},
	}
	if diff := cmp.Diff(want, cs.Updated[0].Changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, differ.ChangesetSummary{EventsAdded: 1, EventsUpdated: 1, EventsRemoved: 1, TotalChanges: 3}, cs.Summary)
	assert.Equal(t, "Changeset: Events: 1 added, 1 updated, 1 removed (Total: 3 changes)", cs.String())
}

func TestEventsOptions(t *testing.T) {
	base := []*catalogs.Event{{EventID: "a", Title: "x", ActivityTags: []string{"one"}}}
	next := []*catalogs.Event{{EventID: "a", Title: "y", ActivityTags: []string{"two"}}}

	cs := differ.New(differ.WithIgnoredFields("title"), differ.WithDeepComparison(false)).Events(base, next)
	assert.False(t, cs.HasChanges())
	assert.Equal(t, "No changes detected", cs.String())
}

func TestPrint(t *testing.T) {
	cs := differ.New().Events(nil, []*catalogs.Event{{EventID: "z", Title: "Fresh", StartISO: "2026-05-01T10:00:00Z"}})
	var buf bytes.Buffer
	cs.Print(&buf)
	assert.Contains(t, buf.String(), "Added Events (1)")
	assert.Contains(t, buf.String(), "z Fresh (2026-05-01)")

	var empty bytes.Buffer
	differ.New().Events(nil, nil).Print(&empty)
	assert.Equal(t, "No changes detected\n", empty.String())
}
