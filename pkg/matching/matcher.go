// Package matching decides which asset, if any, an event's venue refers
// to. Strategies are tried strongest first and the first hit wins:
// external identifier, manual alias, exact name+city, then fuzzy token
// overlap. Ties always go to the higher-priority category, then the lower
// catalog position.
package matching

import (
	"sort"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
)

// Result is the matcher's verdict for one venue.
type Result struct {
	Pos        int // -1 when unmatched
	Method     string
	Confidence string
	Score      int // fuzzy score, zero otherwise
}

// Matched reports whether an asset was found.
func (r Result) Matched() bool { return r.Pos >= 0 }

var unmatched = Result{Pos: -1, Method: catalogs.MethodNone, Confidence: catalogs.ConfidenceNone}

// Matcher runs the strategy ladder against a fixed index and alias table.
type Matcher struct {
	index   *catalogs.Index
	aliases *aliases.Table
}

// New returns a Matcher. A nil alias table disables the alias strategy.
func New(index *catalogs.Index, table *aliases.Table) *Matcher {
	return &Matcher{index: index, aliases: table}
}

// Match resolves a venue. An unmatched venue is a normal outcome, not an
// error.
func (m *Matcher) Match(pid catalogs.ID, name, city string) Result {
	if pid != "" {
		if positions := m.index.ByPID(pid); len(positions) > 0 {
			return Result{Pos: m.ChooseBest(positions), Method: catalogs.MethodExactIdentifier, Confidence: catalogs.ConfidenceHigh}
		}
	}

	// Every name strategy needs a name.
	if textnorm.Token(name) == "" {
		return unmatched
	}

	if positions, ok := m.aliases.Lookup(name, city); ok {
		return Result{Pos: m.ChooseBest(positions), Method: catalogs.MethodAlias, Confidence: catalogs.ConfidenceHigh}
	}

	if positions := m.index.ByKey(textnorm.Key(name, city)); len(positions) > 0 {
		return Result{Pos: m.ChooseBest(positions), Method: catalogs.MethodExactNameCity, Confidence: catalogs.ConfidenceMedium}
	}

	tokens := textnorm.VenueTokenizer.Tokenize(name)
	best, bestPositions := 0, []int(nil)
	for _, pos := range m.fuzzyPool(city) {
		score := Score(tokens, m.index.TokenSet(pos))
		switch {
		case score <= 0:
		case score > best:
			best, bestPositions = score, []int{pos}
		case score == best:
			bestPositions = append(bestPositions, pos)
		}
	}
	if len(bestPositions) == 0 {
		return unmatched
	}
	return Result{Pos: m.ChooseBest(bestPositions), Method: catalogs.MethodFuzzyNameCity, Confidence: catalogs.ConfidenceLow, Score: best}
}

// MatchEvent runs Match on an event's venue fields and records the result
// on the event.
func (m *Matcher) MatchEvent(e *catalogs.Event) Result {
	r := m.Match(e.VenuePID, e.VenueName, e.VenueCity)
	e.SetMatch(r.Pos, r.Method, r.Confidence)
	return r
}

// fuzzyPool is the city's assets, or every asset when the city is blank or
// unknown to the catalog.
func (m *Matcher) fuzzyPool(city string) []int {
	cityToken := textnorm.Token(city)
	if cityToken != "" && m.index.HasCity(cityToken) {
		return m.index.ByCity(cityToken)
	}
	return m.index.Positions()
}

// ChooseBest picks the position whose asset category ranks highest,
// breaking ties by lower position. positions must not be empty.
func (m *Matcher) ChooseBest(positions []int) int {
	best := positions[0]
	for _, pos := range positions[1:] {
		if m.less(pos, best) {
			best = pos
		}
	}
	return best
}

func (m *Matcher) less(a, b int) bool {
	ra, rb := categories.Rank(m.index.Category(a)), categories.Rank(m.index.Category(b))
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// Candidate is a ranked suggestion for an unmatched venue.
type Candidate struct {
	AssetIdx      int    `json:"asset_idx"`
	AssetName     string `json:"asset_name"`
	AssetCity     string `json:"asset_city"`
	AssetCategory string `json:"asset_category"`
	Score         int    `json:"score"`
}

// Candidates ranks assets from the same pool the fuzzy strategy uses by
// score (descending), category priority, then position, and returns at
// most limit of them (all when limit is negative).
func (m *Matcher) Candidates(name, city string, limit int) []Candidate {
	tokens := textnorm.VenueTokenizer.Tokenize(name)
	type scored struct{ pos, score int }
	var all []scored
	for _, pos := range m.fuzzyPool(city) {
		if s := Score(tokens, m.index.TokenSet(pos)); s > 0 {
			all = append(all, scored{pos, s})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return m.less(all[i].pos, all[j].pos)
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]Candidate, 0, len(all))
	for _, s := range all {
		a := m.index.Asset(s.pos)
		out = append(out, Candidate{
			AssetIdx:      s.pos,
			AssetName:     a.Name,
			AssetCity:     a.City,
			AssetCategory: a.Category,
			Score:         s.score,
		})
	}
	return out
}
