package classify

import (
	"slices"
	"strings"

	"github.com/culturalmap/eventmap/pkg/authority"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/rules"
)

// Tagger assigns activity tags and the family flag.
type Tagger struct {
	rules     *rules.Compiled
	authority authority.Authority
}

// NewTagger returns a tagger over the compiled rules. The authority
// resolves the source id used for source default tags.
func NewTagger(compiled *rules.Compiled, auth authority.Authority) *Tagger {
	return &Tagger{rules: compiled, authority: auth}
}

// Tags computes the activity tags for e. Curated tags are returned
// unchanged.
func (t *Tagger) Tags(e *catalogs.Event) []string {
	if e.ManualTags() {
		return slices.Clone(e.ActivityTags)
	}

	var tags []string
	if t.authority != nil {
		tags = catalogs.AppendUnique(tags, t.rules.SourceDefaults[t.authority.SourceOf(e)]...)
	}

	text := strings.ToLower(e.Title + " " + e.Description)
	for _, rule := range t.rules.Tags {
		if _, off := rule.ExcludeEvents[e.EventID]; off {
			tags = slices.DeleteFunc(tags, func(s string) bool { return s == rule.Tag })
			continue
		}
		if _, on := rule.IncludeEvents[e.EventID]; on {
			tags = catalogs.AppendUnique(tags, rule.Tag)
			continue
		}
		if rule.Exclude.Match(text) {
			continue
		}
		if rule.Match.Match(text) {
			tags = catalogs.AppendUnique(tags, rule.Tag)
		}
	}
	return tags
}

// IsFamily decides the family flag for an event with the given tags. The
// legacy patterns are consulted only when there are no tags at all.
func (t *Tagger) IsFamily(e *catalogs.Event, tags []string) bool {
	if len(tags) > 0 {
		return t.rules.FamilyTag != "" && slices.Contains(tags, t.rules.FamilyTag)
	}
	return LegacyFamily(e, t.rules.FamilyPositive, t.rules.FamilyNegative)
}

// Apply tags e in place and returns its family flag.
func (t *Tagger) Apply(e *catalogs.Event) bool {
	tags := t.Tags(e)
	e.ActivityTags = tags
	e.IsFamily = t.IsFamily(e, tags)
	return e.IsFamily
}
