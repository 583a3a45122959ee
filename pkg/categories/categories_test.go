package categories_test

import (
	"testing"

	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	assert.Equal(t, 0, categories.Rank(categories.PerformanceSpaces))
	assert.Equal(t, 9, categories.Rank(categories.WalksTrails))
	assert.Equal(t, categories.Unranked, categories.Rank("Bowling Alleys"))
	assert.True(t, categories.Known(categories.PublicArt))
	assert.False(t, categories.Known("public art"))
}

func TestSort(t *testing.T) {
	cs := []categories.Category{
		categories.WalksTrails,
		"Zoo",
		categories.GalleriesMuseums,
		"Aquarium",
		categories.PerformanceSpaces,
	}
	categories.Sort(cs)
	want := []categories.Category{
		categories.PerformanceSpaces,
		categories.GalleriesMuseums,
		categories.WalksTrails,
		"Aquarium",
		"Zoo",
	}
	if diff := cmp.Diff(want, cs); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := categories.All()
	all[0] = "mutated"
	assert.Equal(t, categories.PerformanceSpaces, categories.All()[0])
	assert.Len(t, all, 10)
}

func TestAllowed(t *testing.T) {
	a := categories.NewAllowed("Public Art", "", " Galleries & Museums ", "Public Art", "Historic Landmarks")
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Has(categories.GalleriesMuseums))
	assert.False(t, a.Has(categories.CulturalResources))
	assert.Equal(t, []categories.Category{
		categories.GalleriesMuseums,
		categories.HistoricLandmarks,
		categories.PublicArt,
	}, a.List())
}

func TestAllowedFallback(t *testing.T) {
	tests := []struct {
		name      string
		allowed   *categories.Allowed
		preferred categories.Category
		want      categories.Category
		ok        bool
	}{
		{
			name:      "preferred allowed",
			allowed:   categories.NewAllowed("Cultural Resources", "Public Art"),
			preferred: categories.CulturalResources,
			want:      categories.CulturalResources,
			ok:        true,
		},
		{
			name:      "first allowed by priority",
			allowed:   categories.NewAllowed("Walks & Trails", "Historic Landmarks"),
			preferred: categories.CulturalResources,
			want:      categories.HistoricLandmarks,
			ok:        true,
		},
		{
			name:      "nothing allowed",
			allowed:   categories.NewAllowed(),
			preferred: categories.CulturalResources,
			ok:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.allowed.Fallback(tt.preferred)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
