package catalogs

import (
	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/categories"
)

// Index is the read-only lookup structure built once per run from the
// asset catalog. Every position list is in ascending order.
type Index struct {
	assets    []Asset
	byPID     map[ID][]int
	byKey     map[string][]int
	byCity    map[string][]int
	tokens    [][]string
	tokenSets []map[string]struct{}
	allowed   *categories.Allowed
}

// NewIndex builds the index in one pass over assets.
func NewIndex(assets []Asset) *Index {
	idx := &Index{
		assets:    assets,
		byPID:     make(map[ID][]int),
		byKey:     make(map[string][]int),
		byCity:    make(map[string][]int),
		tokens:    make([][]string, len(assets)),
		tokenSets: make([]map[string]struct{}, len(assets)),
	}

	labels := make([]string, 0, len(assets))
	for pos, a := range assets {
		if a.PID != "" {
			idx.byPID[a.PID] = append(idx.byPID[a.PID], pos)
		}
		if key := textnorm.Key(a.Name, a.City); key != textnorm.EmptyKey {
			idx.byKey[key] = append(idx.byKey[key], pos)
		}
		if city := textnorm.Token(a.City); city != "" {
			idx.byCity[city] = append(idx.byCity[city], pos)
		}
		idx.tokens[pos] = textnorm.VenueTokenizer.Tokenize(a.Name)
		idx.tokenSets[pos] = textnorm.Set(idx.tokens[pos])
		labels = append(labels, a.Category)
	}
	idx.allowed = categories.NewAllowed(labels...)
	return idx
}

// Len returns the number of assets.
func (idx *Index) Len() int { return len(idx.assets) }

// Valid reports whether pos refers to an asset.
func (idx *Index) Valid(pos int) bool { return pos >= 0 && pos < len(idx.assets) }

// Asset returns the asset at pos.
func (idx *Index) Asset(pos int) Asset { return idx.assets[pos] }

// Category returns the category of the asset at pos.
func (idx *Index) Category(pos int) categories.Category {
	return idx.assets[pos].CategoryValue()
}

// ByPID returns the positions of assets with the given external id.
func (idx *Index) ByPID(pid ID) []int { return idx.byPID[pid] }

// ByKey returns the positions of assets with the given name+city key.
func (idx *Index) ByKey(key string) []int { return idx.byKey[key] }

// ByCity returns the positions of assets in the city with the given token.
func (idx *Index) ByCity(cityToken string) []int { return idx.byCity[cityToken] }

// HasCity reports whether any asset is in the given city token.
func (idx *Index) HasCity(cityToken string) bool {
	_, ok := idx.byCity[cityToken]
	return ok
}

// Positions returns every asset position in ascending order.
func (idx *Index) Positions() []int {
	all := make([]int, len(idx.assets))
	for i := range all {
		all[i] = i
	}
	return all
}

// Tokens returns the cached name tokens of the asset at pos.
func (idx *Index) Tokens(pos int) []string { return idx.tokens[pos] }

// TokenSet returns the cached name token set of the asset at pos.
func (idx *Index) TokenSet(pos int) map[string]struct{} { return idx.tokenSets[pos] }

// Allowed returns the categories present in the catalog.
func (idx *Index) Allowed() *categories.Allowed { return idx.allowed }
