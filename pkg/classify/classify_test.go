package classify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturalmap/eventmap/internal/matcher"
	"github.com/culturalmap/eventmap/pkg/authority"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/classify"
	pkgerrors "github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/rules"
)

func compiledDefaults(t *testing.T) *rules.Compiled {
	t.Helper()
	compiled, _, err := rules.Default().Compile()
	require.NoError(t, err)
	return compiled
}

func allCategories() *categories.Allowed {
	labels := make([]string, 0)
	for _, c := range categories.All() {
		labels = append(labels, c.String())
	}
	return categories.NewAllowed(labels...)
}

func TestNewClassifierNoCategories(t *testing.T) {
	_, err := classify.NewClassifier(compiledDefaults(t), categories.NewAllowed(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNoCategories)
	var cfgErr *pkgerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		allowed     *categories.Allowed
		event       catalogs.Event
		asset       categories.Category
		wantPrimary categories.Category
		wantAll     []categories.Category
	}{
		{
			name:        "keyword rules sorted by priority",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Jazz Concert at the Art Gallery"},
			wantPrimary: categories.PerformanceSpaces,
			wantAll:     []categories.Category{categories.PerformanceSpaces, categories.GalleriesMuseums},
		},
		{
			name:        "festival from tags",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Opening night", Tags: []string{"Wild & Scenic"}},
			wantPrimary: categories.FairsFestivals,
			wantAll:     []categories.Category{categories.FairsFestivals},
		},
		{
			name:        "asset category inserted",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Wine tasting"},
			asset:       categories.HistoricLandmarks,
			wantPrimary: categories.HistoricLandmarks,
			wantAll:     []categories.Category{categories.HistoricLandmarks, categories.EatDrinkStay},
		},
		{
			name:        "known hint kept",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Something", EventCategory: "Historic Landmarks"},
			wantPrimary: categories.HistoricLandmarks,
			wantAll:     []categories.Category{categories.HistoricLandmarks},
		},
		{
			name:        "unknown hint ignored but searched",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Something", EventCategory: "Hike Club"},
			wantPrimary: categories.WalksTrails,
			wantAll:     []categories.Category{categories.WalksTrails},
		},
		{
			name:        "disallowed filtered to fallback",
			allowed:     categories.NewAllowed("Cultural Resources", "Public Art"),
			event:       catalogs.Event{Title: "Concert"},
			wantPrimary: categories.CulturalResources,
			wantAll:     []categories.Category{categories.CulturalResources},
		},
		{
			name:        "fallback to first allowed",
			allowed:     categories.NewAllowed("Walks & Trails", "Public Art"),
			event:       catalogs.Event{},
			wantPrimary: categories.PublicArt,
			wantAll:     []categories.Category{categories.PublicArt},
		},
		{
			name:        "disallowed asset category ignored",
			allowed:     categories.NewAllowed("Cultural Resources"),
			event:       catalogs.Event{Title: "Talk"},
			asset:       categories.PerformanceSpaces,
			wantPrimary: categories.CulturalResources,
			wantAll:     []categories.Category{categories.CulturalResources},
		},
		{
			name:        "word boundaries",
			allowed:     allCategories(),
			event:       catalogs.Event{Title: "Startup artisans", Description: "smart party"},
			wantPrimary: categories.CulturalResources,
			wantAll:     []categories.Category{categories.CulturalResources},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := classify.NewClassifier(compiledDefaults(t), tt.allowed, "")
			require.NoError(t, err)
			primary, all := c.Classify(&tt.event, tt.asset)
			assert.Equal(t, tt.wantPrimary, primary)
			if diff := cmp.Diff(tt.wantAll, all); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, all[0], primary)
		})
	}
}

func TestClassifyConfiguredFallback(t *testing.T) {
	c, err := classify.NewClassifier(compiledDefaults(t), allCategories(), categories.PublicArt)
	require.NoError(t, err)
	primary, _ := c.Classify(&catalogs.Event{Title: "Board meeting"}, "")
	assert.Equal(t, categories.PublicArt, primary)
}

func TestApply(t *testing.T) {
	c, err := classify.NewClassifier(compiledDefaults(t), allCategories(), "")
	require.NoError(t, err)

	e := &catalogs.Event{Title: "Heritage Dance Festival"}
	c.Apply(e, "")
	assert.Equal(t, "Performance Spaces", e.EventCategory)
	assert.Equal(t, []string{"Performance Spaces", "Fairs & Festivals", "Preservation & Culture"}, e.EventCategories)

	// Re-applying keeps the result.
	c.Apply(e, "")
	assert.Equal(t, []string{"Performance Spaces", "Fairs & Festivals", "Preservation & Culture"}, e.EventCategories)
}

func TestTagger(t *testing.T) {
	a, err := authority.New(rules.Default().Sources)
	require.NoError(t, err)
	tagger := classify.NewTagger(compiledDefaults(t), a)

	tests := []struct {
		name       string
		event      catalogs.Event
		wantTags   []string
		wantFamily bool
	}{
		{
			name:       "family tag",
			event:      catalogs.Event{EventID: "trumba-1", Title: "Storytime for Toddlers"},
			wantTags:   []string{"family-kids"},
			wantFamily: true,
		},
		{
			name:     "exclude wins",
			event:    catalogs.Event{EventID: "trumba-2", Title: "Family Brewery Tour", Description: "Adults only"},
			wantTags: nil,
		},
		{
			name:     "source defaults first",
			event:    catalogs.Event{EventID: "crazyhorse-1", Title: "Community jam"},
			wantTags: []string{"live-music", "community"},
		},
		{
			name:     "source defaults by type",
			event:    catalogs.Event{EventID: "x", SourceType: "ical", Title: "Book club"},
			wantTags: []string{"community"},
		},
		{
			name:     "multiple rules in table order",
			event:    catalogs.Event{EventID: "e", Title: "Gallery opening with live music"},
			wantTags: []string{"live-music", "arts-gallery"},
		},
		{
			name: "manual tags kept",
			event: catalogs.Event{
				EventID:       "trumba-3",
				Title:         "Kids concert",
				ActivityTags:  []string{"community"},
				TagConfidence: "manual",
			},
			wantTags: []string{"community"},
		},
		{
			name:       "legacy family when untagged",
			event:      catalogs.Event{EventID: "e", Title: "Pumpkin patch", Tags: []string{"all ages"}},
			wantTags:   nil,
			wantFamily: true,
		},
		{
			name:     "legacy negative first",
			event:    catalogs.Event{EventID: "e", Title: "Pub quiz", Tags: []string{"kids", "21+"}},
			wantTags: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			family := tagger.Apply(&e)
			assert.Equal(t, tt.wantTags, e.ActivityTags)
			assert.Equal(t, tt.wantFamily, family)
			assert.Equal(t, tt.wantFamily, e.IsFamily)
		})
	}
}

func TestTaggerManualOverrides(t *testing.T) {
	cfg := rules.Default()
	cfg.Tags[0].IncludeEvents = []string{"forced-on"}
	cfg.Tags[1].ExcludeEvents = []string{"crazyhorse-9"}
	compiled, _, err := cfg.Compile()
	require.NoError(t, err)
	a, err := authority.New(cfg.Sources)
	require.NoError(t, err)
	tagger := classify.NewTagger(compiled, a)

	on := &catalogs.Event{EventID: "forced-on", Title: "Wine tasting, adults only"}
	assert.Equal(t, []string{"family-kids"}, tagger.Tags(on))

	off := &catalogs.Event{EventID: "crazyhorse-9", Title: "Blues band"}
	assert.Empty(t, tagger.Tags(off))
}

func TestLegacyFamily(t *testing.T) {
	pos, err := matcher.NewMultiMatcher([]string{`\bkids?\b`}, matcher.Regex, &matcher.Options{CaseInsensitive: true})
	require.NoError(t, err)
	neg, err := matcher.NewMultiMatcher([]string{`\bbar\b`}, matcher.Regex, &matcher.Options{CaseInsensitive: true})
	require.NoError(t, err)

	assert.True(t, classify.LegacyFamily(&catalogs.Event{Title: "KIDS craft"}, pos, neg))
	assert.False(t, classify.LegacyFamily(&catalogs.Event{Title: "Kids at the bar"}, pos, neg))
	assert.False(t, classify.LegacyFamily(&catalogs.Event{Title: "  "}, pos, neg))
	assert.False(t, classify.LegacyFamily(&catalogs.Event{Title: "Kids"}, nil, nil))
}
