// Package authority is the source trust table. It decides which source an
// event came from, how much that source is trusted when two sources report
// the same occurrence, and which venues a source is the home of.
package authority

import (
	"fmt"
	"strings"

	"github.com/culturalmap/eventmap/internal/matcher"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/rules"
)

// UnknownRank is the trust rank of a source missing from the table.
const UnknownRank = 99

// Authority determines which source an event belongs to and how sources
// rank against each other.
type Authority interface {
	// SourceOf returns the source id of an event, or "unknown".
	SourceOf(e *catalogs.Event) string

	// Rank returns the trust rank of a source (lower is more trusted)
	Rank(source string) int

	// Find returns the source entry for an id
	Find(source string) *Source

	// List returns all sources in trust order
	List() []Source
}

// Source is one entry of the trust table.
type Source struct {
	ID                string
	Label             string
	DefaultSourceType string
	Priority          int
	HomeVenues        []string

	prefixes *matcher.MultiMatcher
	types    map[string]struct{}
}

type authorities struct {
	sources []Source
	byID    map[string]int
}

// New builds the trust table from the source registry. Priority follows
// list order.
func New(specs []rules.Source) (Authority, error) {
	a := &authorities{byID: make(map[string]int, len(specs))}
	for i, spec := range specs {
		id := strings.TrimSpace(spec.ID)
		if id == "" {
			return nil, errors.NewConfigError("sources", fmt.Sprintf("sources[%d]: id is required", i), nil)
		}
		if id == constants.UnknownSourceTag {
			return nil, errors.NewConfigError("sources", fmt.Sprintf("sources[%d]: %q is reserved", i, id), nil)
		}
		if _, dup := a.byID[id]; dup {
			return nil, errors.NewConfigError("sources", fmt.Sprintf("sources[%d]: duplicate id %q", i, id), nil)
		}
		prefixes, err := matcher.NewMultiMatcher(spec.IDPrefixes, matcher.Glob)
		if err != nil {
			return nil, errors.NewConfigError("sources", fmt.Sprintf("sources[%d] (%s): %v", i, id, err), err)
		}
		types := make(map[string]struct{}, len(spec.SourceTypes))
		for _, t := range spec.SourceTypes {
			types[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
		a.byID[id] = len(a.sources)
		a.sources = append(a.sources, Source{
			ID:                id,
			Label:             spec.Label,
			DefaultSourceType: spec.DefaultSourceType,
			Priority:          i,
			HomeVenues:        spec.HomeVenues,
			prefixes:          prefixes,
			types:             types,
		})
	}
	return a, nil
}

// SourceOf checks id prefixes across every source first, then the
// event's source_type.
func (a *authorities) SourceOf(e *catalogs.Event) string {
	for i := range a.sources {
		if a.sources[i].prefixes.Match(e.EventID) {
			return a.sources[i].ID
		}
	}
	st := strings.ToLower(strings.TrimSpace(e.SourceType))
	if st != "" {
		for i := range a.sources {
			if _, ok := a.sources[i].types[st]; ok {
				return a.sources[i].ID
			}
		}
	}
	return constants.UnknownSourceTag
}

// Rank returns the trust rank of a source (lower is more trusted)
func (a *authorities) Rank(source string) int {
	if s := a.Find(source); s != nil {
		return s.Priority
	}
	return UnknownRank
}

// Find returns the source entry for an id
func (a *authorities) Find(source string) *Source {
	i, ok := a.byID[source]
	if !ok {
		return nil
	}
	return &a.sources[i]
}

// List returns all sources in trust order
func (a *authorities) List() []Source {
	out := make([]Source, len(a.sources))
	copy(out, a.sources)
	return out
}

// FillDefaults sets a missing source_label and source_type from the
// source entry. An empty source is detected from the event. It reports
// whether anything changed.
func FillDefaults(a Authority, source string, e *catalogs.Event) bool {
	if source == "" {
		source = a.SourceOf(e)
	}
	s := a.Find(source)
	if s == nil {
		return false
	}
	changed := false
	if strings.TrimSpace(e.SourceLabel) == "" && s.Label != "" {
		e.SourceLabel = s.Label
		changed = true
	}
	if strings.TrimSpace(e.SourceType) == "" && s.DefaultSourceType != "" {
		e.SourceType = s.DefaultSourceType
		changed = true
	}
	return changed
}
