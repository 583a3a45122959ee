package reconciler

import (
	"fmt"
	"strings"
)

// StrategyType names the order in which pipeline stages run.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	str := s.String()
	// Replace hyphens with spaces and title case each word
	words := strings.Split(str, "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyTypeMatchFirst matches and classifies every event before
	// cross-source deduplication, then tags the survivors.
	StrategyTypeMatchFirst StrategyType = "match-first"
	// StrategyTypeDedupFirst deduplicates and tags first, then matches
	// and classifies the survivors.
	StrategyTypeDedupFirst StrategyType = "dedup-first"
)

// Stage is one pipeline step.
type Stage string

// Pipeline stages.
const (
	StageMatch    Stage = "match"
	StageClassify Stage = "classify"
	StageDedup    Stage = "dedup"
	StageTag      Stage = "tag"
)

// Strategy defines the order of pipeline stages.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Stages returns the stages in execution order
	Stages() []Stage
}

type baseStrategy struct {
	typ         StrategyType
	description string
	stages      []Stage
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// Stages returns the stages in execution order.
func (s *baseStrategy) Stages() []Stage {
	out := make([]Stage, len(s.stages))
	copy(out, s.stages)
	return out
}

// NewMatchFirstStrategy returns the default stage order.
func NewMatchFirstStrategy() Strategy {
	return &baseStrategy{
		typ:         StrategyTypeMatchFirst,
		description: "Match and classify every event, then deduplicate across sources and tag",
		stages:      []Stage{StageMatch, StageClassify, StageDedup, StageTag},
	}
}

// NewDedupFirstStrategy deduplicates before matching.
func NewDedupFirstStrategy() Strategy {
	return &baseStrategy{
		typ:         StrategyTypeDedupFirst,
		description: "Deduplicate across sources and tag, then match and classify the survivors",
		stages:      []Stage{StageDedup, StageTag, StageMatch, StageClassify},
	}
}

// ParseStrategy maps a configured stage order to a Strategy. The empty
// string selects match-first.
func ParseStrategy(s string) (Strategy, error) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyTypeMatchFirst:
		return NewMatchFirstStrategy(), nil
	case StrategyTypeDedupFirst:
		return NewDedupFirstStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown stage order %q (want %s or %s)", s, StrategyTypeMatchFirst, StrategyTypeDedupFirst)
	}
}
