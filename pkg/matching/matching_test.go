package matching_test

import (
	"testing"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/matching"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() []catalogs.Asset {
	return []catalogs.Asset{
		0: {PID: "mf-1", Name: "Miners Foundry", City: "Nevada City", Category: "Arts Organizations"},
		1: {Name: "Nevada Theatre", City: "Nevada City", Category: "Historic Landmarks"},
		2: {Name: "Miners Foundry", City: "Nevada City", Category: "Performance Spaces"},
		3: {Name: "Center for the Arts", City: "Grass Valley", Category: "Performance Spaces"},
		4: {Name: "Art Works Gallery", City: "Grass Valley", Category: "Galleries & Museums"},
		5: {Name: "North Star House", City: "Grass Valley", Category: "Historic Landmarks"},
		6: {PID: "dup", Name: "Foundry Annex", City: "Truckee", Category: "Walks & Trails"},
		7: {PID: "dup", Name: "Foundry Annex", City: "Truckee", Category: "Public Art"},
	}
}

func newMatcher(t *testing.T, aliasEntries ...any) *matching.Matcher {
	t.Helper()
	idx := catalogs.NewIndex(catalog())
	table, warnings := aliases.Resolve(&aliases.File{Entries: aliasEntries}, idx)
	require.Empty(t, warnings)
	return matching.New(idx, table)
}

func TestScore(t *testing.T) {
	set := textnorm.Set
	tests := []struct {
		name  string
		event []string
		asset []string
		want  int
	}{
		{name: "two tokens", event: []string{"miners", "foundry", "cultural"}, asset: []string{"miners", "foundry"}, want: 27},
		{name: "one long token", event: []string{"foundry"}, asset: []string{"foundry", "annex"}, want: 17},
		{name: "one short token", event: []string{"art", "soul"}, asset: []string{"art", "works"}, want: 0},
		{name: "one four letter token", event: []string{"star"}, asset: []string{"north", "star"}, want: 14},
		{name: "no overlap", event: []string{"library"}, asset: []string{"foundry"}, want: 0},
		{name: "empty event", event: nil, asset: []string{"foundry"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matching.Score(tt.event, set(tt.asset)))
		})
	}
}

func TestMatchLadder(t *testing.T) {
	m := newMatcher(t,
		map[string]any{"venue_name": "The Foundry", "venue_city": "Nevada City", "asset_idx": float64(0)},
		map[string]any{"venue_name": "Foundry Annex", "venue_city": "Truckee", "asset_idx": float64(5)},
	)

	tests := []struct {
		name       string
		pid        catalogs.ID
		venue      string
		city       string
		wantPos    int
		wantMethod string
		wantConf   string
	}{
		{
			name: "identifier wins over everything", pid: "mf-1", venue: "Nevada Theatre", city: "Nevada City",
			wantPos: 0, wantMethod: catalogs.MethodExactIdentifier, wantConf: catalogs.ConfidenceHigh,
		},
		{
			name: "identifier tie goes to category rank", pid: "dup",
			wantPos: 7, wantMethod: catalogs.MethodExactIdentifier, wantConf: catalogs.ConfidenceHigh,
		},
		{
			name: "unknown identifier falls through", pid: "nope", venue: "Nevada Theatre", city: "Nevada City",
			wantPos: 1, wantMethod: catalogs.MethodExactNameCity, wantConf: catalogs.ConfidenceMedium,
		},
		{
			name: "alias city qualified", venue: "the foundry", city: "Nevada City",
			wantPos: 0, wantMethod: catalogs.MethodAlias, wantConf: catalogs.ConfidenceHigh,
		},
		{
			name: "alias name only", venue: "The Foundry", city: "Grass Valley",
			wantPos: 0, wantMethod: catalogs.MethodAlias, wantConf: catalogs.ConfidenceHigh,
		},
		{
			name: "alias beats exact name city", venue: "Foundry Annex", city: "Truckee",
			wantPos: 5, wantMethod: catalogs.MethodAlias, wantConf: catalogs.ConfidenceHigh,
		},
		{
			name: "exact name city picks higher category", venue: "Miners Foundry", city: "Nevada City",
			wantPos: 2, wantMethod: catalogs.MethodExactNameCity, wantConf: catalogs.ConfidenceMedium,
		},
		{
			name: "fuzzy in city", venue: "The Miners Foundry Cultural Center", city: "Nevada City",
			wantPos: 2, wantMethod: catalogs.MethodFuzzyNameCity, wantConf: catalogs.ConfidenceLow,
		},
		{
			name: "fuzzy with unknown city searches everything", venue: "North Star House Gardens", city: "Penn Valley",
			wantPos: 5, wantMethod: catalogs.MethodFuzzyNameCity, wantConf: catalogs.ConfidenceLow,
		},
		{
			name: "fuzzy without city searches everything", venue: "Historic North Star", city: "",
			wantPos: 5, wantMethod: catalogs.MethodFuzzyNameCity, wantConf: catalogs.ConfidenceLow,
		},
		{
			name: "fuzzy stays inside known city", venue: "North Star House", city: "Nevada City",
			wantPos: -1, wantMethod: catalogs.MethodNone, wantConf: catalogs.ConfidenceNone,
		},
		{
			name: "short single token is not enough", venue: "Art Space", city: "Grass Valley",
			wantPos: -1, wantMethod: catalogs.MethodNone, wantConf: catalogs.ConfidenceNone,
		},
		{
			name: "empty venue never matches", venue: "", city: "Nevada City",
			wantPos: -1, wantMethod: catalogs.MethodNone, wantConf: catalogs.ConfidenceNone,
		},
		{
			name: "punctuation-only venue never matches", venue: "--", city: "",
			wantPos: -1, wantMethod: catalogs.MethodNone, wantConf: catalogs.ConfidenceNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.pid, tt.venue, tt.city)
			assert.Equal(t, tt.wantPos, got.Pos)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantConf, got.Confidence)
			assert.Equal(t, tt.wantPos >= 0, got.Matched())
		})
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	m := newMatcher(t)
	first := m.Match("", "Foundry Annex Hall", "")
	for range 20 {
		assert.Equal(t, first, m.Match("", "Foundry Annex Hall", ""))
	}
}

func TestMatchEvent(t *testing.T) {
	m := newMatcher(t)

	e := &catalogs.Event{EventID: "a", VenueName: "Miners Foundry", VenueCity: "Nevada City"}
	r := m.MatchEvent(e)
	require.True(t, r.Matched())
	pos, ok := e.AssetPos()
	assert.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, catalogs.StatusMapped, e.MatchStatus)

	e = &catalogs.Event{EventID: "b", VenueCity: "Nevada City"}
	m.MatchEvent(e)
	assert.True(t, e.IsUnmatched)
	assert.Nil(t, e.MatchedAssetIdx)
	assert.Equal(t, catalogs.StatusNeedsMapping, e.MatchStatus)
}

func TestCandidates(t *testing.T) {
	m := newMatcher(t)

	got := m.Candidates("Foundry Stage", "", 3)
	want := []matching.Candidate{
		{AssetIdx: 2, AssetName: "Miners Foundry", AssetCity: "Nevada City", AssetCategory: "Performance Spaces", Score: 17},
		{AssetIdx: 0, AssetName: "Miners Foundry", AssetCity: "Nevada City", AssetCategory: "Arts Organizations", Score: 17},
		{AssetIdx: 7, AssetName: "Foundry Annex", AssetCity: "Truckee", AssetCategory: "Public Art", Score: 17},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, m.Candidates("Foundry Stage", "", -1), 4)
	assert.Empty(t, m.Candidates("", "Nevada City", 3))
}

func TestChooseBest(t *testing.T) {
	m := newMatcher(t)
	assert.Equal(t, 2, m.ChooseBest([]int{1, 0, 2}))
	assert.Equal(t, 3, m.ChooseBest([]int{4, 3}))
	assert.Equal(t, 5, m.ChooseBest([]int{5}))
}
