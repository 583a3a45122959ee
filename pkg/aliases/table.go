package aliases

import (
	"fmt"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/catalogs"
)

// Table maps normalized venue keys to candidate asset positions. It is
// read-only once built.
type Table struct {
	targets map[string][]int
}

// Resolve turns alias entries into a lookup table. Entries that are not
// objects, lack a venue name, or point at no asset are skipped with a
// warning naming their position. Target precedence is asset_idx, then
// asset_pid, then asset_name with asset_city. A later alias for the same
// key replaces an earlier one.
func Resolve(f *File, idx *catalogs.Index) (*Table, []string) {
	t := &Table{targets: make(map[string][]int)}
	if f == nil {
		return t, nil
	}

	var warnings []string
	for i, raw := range f.Entries {
		obj, ok := asObject(raw)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("aliases[%d] ignored: expected object", i))
			continue
		}
		venueName := stringField(obj, "venue_name")
		if venueName == "" {
			warnings = append(warnings, fmt.Sprintf("aliases[%d] ignored: missing venue_name", i))
			continue
		}
		venueCity := stringField(obj, "venue_city")

		targets := resolveTarget(obj, idx)
		if len(targets) == 0 {
			city := venueCity
			if city == "" {
				city = "any city"
			}
			warnings = append(warnings, fmt.Sprintf("aliases[%d] unresolved target for '%s' (%s)", i, venueName, city))
			continue
		}

		t.targets[textnorm.Key(venueName, venueCity)] = targets
		if venueCity != "" {
			t.targets[textnorm.Key(venueName, "")] = targets
		}
	}
	return t, warnings
}

func resolveTarget(obj map[string]any, idx *catalogs.Index) []int {
	if pos, ok := intField(obj, "asset_idx"); ok && idx.Valid(pos) {
		return []int{pos}
	}
	if pid := pidField(obj, "asset_pid"); pid != "" {
		if positions := idx.ByPID(pid); len(positions) > 0 {
			return positions
		}
	}
	if name := stringField(obj, "asset_name"); name != "" {
		return idx.ByKey(textnorm.Key(name, stringField(obj, "asset_city")))
	}
	return nil
}

// Lookup returns the alias targets for a venue, trying the city-qualified
// key before the name-only key.
func (t *Table) Lookup(name, city string) ([]int, bool) {
	if t == nil {
		return nil, false
	}
	if textnorm.Token(name) == "" {
		return nil, false
	}
	if targets, ok := t.targets[textnorm.Key(name, city)]; ok {
		return targets, true
	}
	if targets, ok := t.targets[textnorm.Key(name, "")]; ok {
		return targets, true
	}
	return nil, false
}

// Len returns the number of registered keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.targets)
}
