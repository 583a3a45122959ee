package rules

import (
	"fmt"

	"github.com/culturalmap/eventmap/internal/matcher"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/errors"
)

// Compiled is the ready-to-run form of a Config. It is immutable.
type Compiled struct {
	Fallback       categories.Category
	Categories     []CompiledCategory
	FamilyTag      string
	Tags           []CompiledTag
	SourceDefaults map[string][]string
	FamilyPositive *matcher.MultiMatcher
	FamilyNegative *matcher.MultiMatcher
}

// CompiledCategory is one category rule.
type CompiledCategory struct {
	Category categories.Category
	Match    *matcher.MultiMatcher
}

// CompiledTag is one tag rule.
type CompiledTag struct {
	Tag           string
	Match         *matcher.MultiMatcher
	Exclude       *matcher.MultiMatcher
	IncludeEvents map[string]struct{}
	ExcludeEvents map[string]struct{}
}

// Compile validates and compiles the rule tables. Invalid category or tag
// patterns are fatal configuration errors. Invalid legacy family patterns
// are skipped with a warning.
func (c *Config) Compile() (*Compiled, []string, error) {
	out := &Compiled{
		Fallback:       categories.Category(c.FallbackCategory),
		FamilyTag:      c.FamilyTag,
		SourceDefaults: c.SourceDefaults,
	}

	for i, rule := range c.Categories {
		if rule.Category == "" {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("categories[%d]: category is required", i), nil)
		}
		mm, err := compileList(rule.Type, rule.Patterns)
		if err != nil {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("categories[%d] (%s): %v", i, rule.Category, err), err)
		}
		out.Categories = append(out.Categories, CompiledCategory{Category: categories.Category(rule.Category), Match: mm})
	}

	seenTags := make(map[string]struct{}, len(c.Tags))
	for i, rule := range c.Tags {
		if rule.Tag == "" {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("tags[%d]: tag is required", i), nil)
		}
		if _, dup := seenTags[rule.Tag]; dup {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("tags[%d]: duplicate tag %q", i, rule.Tag), nil)
		}
		seenTags[rule.Tag] = struct{}{}

		match, err := compileList(rule.Type, rule.Patterns)
		if err != nil {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("tags[%d] (%s): %v", i, rule.Tag, err), err)
		}
		exclude, err := compileList(rule.Type, rule.Exclude)
		if err != nil {
			return nil, nil, errors.NewConfigError("rules", fmt.Sprintf("tags[%d] (%s) exclude: %v", i, rule.Tag, err), err)
		}
		out.Tags = append(out.Tags, CompiledTag{
			Tag:           rule.Tag,
			Match:         match,
			Exclude:       exclude,
			IncludeEvents: idSet(rule.IncludeEvents),
			ExcludeEvents: idSet(rule.ExcludeEvents),
		})
	}

	var warnings []string
	out.FamilyPositive, warnings = compileLenient("positive", c.Family.Positive, warnings)
	out.FamilyNegative, warnings = compileLenient("negative", c.Family.Negative, warnings)

	return out, warnings, nil
}

func compileList(kind string, patterns []string) (*matcher.MultiMatcher, error) {
	pt, err := matcher.ParsePatternType(kind, matcher.Keyword)
	if err != nil {
		return nil, err
	}
	var opts *matcher.Options
	if pt == matcher.Regex {
		opts = &matcher.Options{CaseInsensitive: true}
	}
	return matcher.NewMultiMatcher(patterns, pt, opts)
}

func compileLenient(kind string, patterns []string, warnings []string) (*matcher.MultiMatcher, []string) {
	valid := make([]string, 0, len(patterns))
	opts := &matcher.Options{CaseInsensitive: true}
	for _, p := range patterns {
		if _, err := matcher.New(matcher.Regex, p, opts); err != nil {
			warnings = append(warnings, fmt.Sprintf("Invalid %s family pattern '%s': %v", kind, p, err))
			continue
		}
		valid = append(valid, p)
	}
	mm, _ := matcher.NewMultiMatcher(valid, matcher.Regex, opts)
	return mm, warnings
}

func idSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
