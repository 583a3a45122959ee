// Package matcher compiles the text patterns used by classification rules
// and the source registry. Keyword patterns match whole words in lowercase
// text, regex patterns are used as written, and glob patterns match event
// ids and labels.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions as written.
	Regex
	// Keyword wraps a regex alternation so it only matches at word
	// boundaries made of non-letters.
	Keyword
	// Auto attempts to detect the pattern type.
	Auto
)

// Matcher is the main interface for pattern matching operations.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// MatchAll checks multiple inputs and returns matches.
	MatchAll(inputs ...string) []string
	// Pattern returns the original pattern string.
	Pattern() string
	// Type returns the pattern type being used.
	Type() PatternType
}

type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{}
}

// New creates a new Matcher with the specified pattern and type.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{
		pattern:     pattern,
		patternType: patternType,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return m, nil
}

// MustNew creates a new Matcher and panics if there's an error.
func MustNew(patternType PatternType, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if _, err := filepath.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
		return nil
	case Regex, Keyword:
		if strings.TrimSpace(m.pattern) == "" {
			return fmt.Errorf("empty pattern")
		}
		pattern := m.pattern
		if m.patternType == Keyword {
			// the bare pattern must compile before it is wrapped
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("invalid keyword pattern: %w", err)
			}
			pattern = "(?:^|[^a-z])(?:" + pattern + ")(?:[^a-z]|$)"
		} else if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^" + pattern
			}
			if !strings.HasSuffix(pattern, "$") {
				pattern += "$"
			}
		}
		if opts.CaseInsensitive && m.patternType == Regex && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
		return nil
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
}

// Match checks if the input matches the pattern. Keyword patterns lowercase
// their input first.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		matched, _ := filepath.Match(m.globPattern, input)
		return matched
	case Keyword:
		return m.compiled.MatchString(strings.ToLower(input))
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// MatchAll checks multiple inputs and returns matches.
func (m *matcher) MatchAll(inputs ...string) []string {
	results := make([]string, 0)
	for _, input := range inputs {
		if m.Match(input) {
			results = append(results, input)
		}
	}
	return results
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *matcher) Type() PatternType {
	return m.patternType
}

func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\b",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Keyword:
		return "keyword"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParsePatternType maps a config string to a PatternType. The empty string
// selects def.
func ParsePatternType(s string, def PatternType) (PatternType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def, nil
	case "glob":
		return Glob, nil
	case "regex":
		return Regex, nil
	case "keyword":
		return Keyword, nil
	case "auto":
		return Auto, nil
	default:
		return def, fmt.Errorf("unknown pattern type %q", s)
	}
}

// MultiMatcher handles multiple patterns and reports the first that matches.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher creates a matcher with multiple patterns.
func NewMultiMatcher(patterns []string, patternType PatternType, opts ...*Options) (*MultiMatcher, error) {
	mm := &MultiMatcher{
		matchers: make([]Matcher, 0, len(patterns)),
	}
	for _, pattern := range patterns {
		m, err := New(patternType, pattern, opts...)
		if err != nil {
			return nil, err
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Len reports the number of patterns.
func (mm *MultiMatcher) Len() int {
	if mm == nil {
		return 0
	}
	return len(mm.matchers)
}

// Match returns true if any pattern matches.
func (mm *MultiMatcher) Match(input string) bool {
	_, ok := mm.FirstMatch(input)
	return ok
}

// FirstMatch returns the first pattern, in declaration order, that matches.
func (mm *MultiMatcher) FirstMatch(input string) (string, bool) {
	if mm == nil {
		return "", false
	}
	for _, m := range mm.matchers {
		if m.Match(input) {
			return m.Pattern(), true
		}
	}
	return "", false
}

// MatchAny returns true if any of the inputs match any pattern.
func (mm *MultiMatcher) MatchAny(inputs ...string) bool {
	for _, input := range inputs {
		if mm.Match(input) {
			return true
		}
	}
	return false
}
