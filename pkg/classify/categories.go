// Package classify assigns categories and activity tags to events. Both
// classifiers are driven by the compiled rule table; the logic here only
// decides ordering, fallbacks and overrides.
package classify

import (
	"strings"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/rules"
)

// Classifier assigns event categories restricted to the allowed set.
type Classifier struct {
	rules    []rules.CompiledCategory
	allowed  *categories.Allowed
	fallback categories.Category
}

// NewClassifier returns a category classifier. fallback is used when no
// rule yields an allowed category; when fallback itself is not allowed
// the highest-priority allowed category is used instead. An empty allowed
// set is a configuration error.
func NewClassifier(compiled *rules.Compiled, allowed *categories.Allowed, fallback categories.Category) (*Classifier, error) {
	if allowed.Len() == 0 {
		return nil, errors.NewConfigError("categories", "no categories found in asset catalog", errors.ErrNoCategories)
	}
	c := &Classifier{allowed: allowed, fallback: fallback}
	if compiled != nil {
		c.rules = compiled.Categories
		if c.fallback == "" {
			c.fallback = compiled.Fallback
		}
	}
	return c, nil
}

// Infer returns the categories suggested by the event's own text, before
// the allowed filter. A hint already naming a known category comes first.
func (c *Classifier) Infer(e *catalogs.Event) []categories.Category {
	var out []categories.Category
	seen := make(map[categories.Category]struct{})

	hint := categories.Category(strings.TrimSpace(e.EventCategory))
	if categories.Known(hint) {
		out = append(out, hint)
		seen[hint] = struct{}{}
	}

	text := searchText(e)
	if text == "" {
		return out
	}
	for _, rule := range c.rules {
		if _, ok := seen[rule.Category]; ok {
			continue
		}
		if rule.Match.Match(text) {
			out = append(out, rule.Category)
			seen[rule.Category] = struct{}{}
		}
	}
	return out
}

// Classify returns the primary category and the full ordered list. The
// matched asset's category, when allowed, is always included.
func (c *Classifier) Classify(e *catalogs.Event, assetCategory categories.Category) (categories.Category, []categories.Category) {
	inferred := c.Infer(e)
	if categories.Known(assetCategory) && c.allowed.Has(assetCategory) && !contains(inferred, assetCategory) {
		inferred = append([]categories.Category{assetCategory}, inferred...)
	}

	out := make([]categories.Category, 0, len(inferred))
	for _, cat := range inferred {
		if c.allowed.Has(cat) && !contains(out, cat) {
			out = append(out, cat)
		}
	}
	if len(out) == 0 {
		fb, _ := c.allowed.Fallback(c.fallback)
		out = append(out, fb)
	}
	categories.Sort(out)
	return out[0], out
}

// Apply classifies e and stores the result on it.
func (c *Classifier) Apply(e *catalogs.Event, assetCategory categories.Category) {
	primary, all := c.Classify(e, assetCategory)
	e.EventCategory = primary.String()
	e.EventCategories = make([]string, len(all))
	for i, cat := range all {
		e.EventCategories[i] = cat.String()
	}
}

// Allowed returns the allowed category set.
func (c *Classifier) Allowed() *categories.Allowed {
	return c.allowed
}

func searchText(e *catalogs.Event) string {
	parts := []string{
		strings.Join(e.Tags, " "),
		e.EventCategory,
		textnorm.Text(e.Title),
		textnorm.Text(e.Description),
		textnorm.Text(e.VenueName),
	}
	return strings.TrimSpace(strings.ToLower(strings.Join(parts, " ")))
}

func contains(list []categories.Category, c categories.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
