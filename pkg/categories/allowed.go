package categories

import (
	"slices"
	"strings"
)

// Allowed is the set of categories present in the asset catalog.
type Allowed struct {
	set     map[Category]struct{}
	ordered []Category
}

// NewAllowed builds an allowed set from raw labels, ignoring blanks.
func NewAllowed(labels ...string) *Allowed {
	a := &Allowed{set: make(map[Category]struct{})}
	for _, l := range labels {
		c := Category(strings.TrimSpace(l))
		if c == "" {
			continue
		}
		if _, ok := a.set[c]; ok {
			continue
		}
		a.set[c] = struct{}{}
		a.ordered = append(a.ordered, c)
	}
	Sort(a.ordered)
	return a
}

// Has reports whether c is allowed.
func (a *Allowed) Has(c Category) bool {
	if a == nil {
		return false
	}
	_, ok := a.set[c]
	return ok
}

// Len returns the number of allowed categories.
func (a *Allowed) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ordered)
}

// List returns the allowed categories in priority order.
func (a *Allowed) List() []Category {
	if a == nil {
		return nil
	}
	return slices.Clone(a.ordered)
}

// Fallback returns preferred when it is allowed, otherwise the
// highest-priority allowed category. It returns false when nothing is
// allowed.
func (a *Allowed) Fallback(preferred Category) (Category, bool) {
	if a.Has(preferred) {
		return preferred, true
	}
	if a.Len() == 0 {
		return "", false
	}
	return a.ordered[0], true
}
