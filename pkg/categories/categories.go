// Package categories holds the ordered category priority table shared by
// the matcher's tie-break, the classifier's ordering and the diagnostics
// report. A lower rank means higher priority.
package categories

import (
	"slices"
	"sort"
)

// Category is a place/event category label such as "Public Art".
type Category string

// Known categories, in priority order.
const (
	PerformanceSpaces   Category = "Performance Spaces"
	ArtsOrganizations   Category = "Arts Organizations"
	FairsFestivals      Category = "Fairs & Festivals"
	GalleriesMuseums    Category = "Galleries & Museums"
	PreservationCulture Category = "Preservation & Culture"
	HistoricLandmarks   Category = "Historic Landmarks"
	CulturalResources   Category = "Cultural Resources"
	PublicArt           Category = "Public Art"
	EatDrinkStay        Category = "Eat, Drink & Stay"
	WalksTrails         Category = "Walks & Trails"
)

// Unranked is the rank of any category not in the priority table.
const Unranked = 99

var priority = []Category{
	PerformanceSpaces,
	ArtsOrganizations,
	FairsFestivals,
	GalleriesMuseums,
	PreservationCulture,
	HistoricLandmarks,
	CulturalResources,
	PublicArt,
	EatDrinkStay,
	WalksTrails,
}

var ranks = func() map[Category]int {
	m := make(map[Category]int, len(priority))
	for i, c := range priority {
		m[c] = i
	}
	return m
}()

// All returns the known categories in priority order.
func All() []Category {
	return slices.Clone(priority)
}

// Rank returns the priority rank of c, or Unranked.
func Rank(c Category) int {
	if r, ok := ranks[c]; ok {
		return r
	}
	return Unranked
}

// Known reports whether c is in the priority table.
func Known(c Category) bool {
	_, ok := ranks[c]
	return ok
}

// Sort orders categories by rank, then by name for unranked ties.
func Sort(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		ri, rj := Rank(cs[i]), Rank(cs[j])
		if ri != rj {
			return ri < rj
		}
		return cs[i] < cs[j]
	})
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}
