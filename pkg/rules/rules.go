// Package rules holds the data-driven keyword configuration: category
// rules, activity tag rules with exclusions and manual overrides, source
// default tags, the legacy family patterns, and the source registry. The
// classifiers only read the compiled form.
package rules

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/culturalmap/eventmap/pkg/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the rule document as written in YAML or JSON.
type Config struct {
	FallbackCategory string              `json:"fallback_category,omitempty" yaml:"fallback_category,omitempty"`
	Categories       []CategoryRule      `json:"categories" yaml:"categories"`
	FamilyTag        string              `json:"family_tag,omitempty" yaml:"family_tag,omitempty"`
	Tags             []TagRule           `json:"tags" yaml:"tags"`
	SourceDefaults   map[string][]string `json:"source_defaults,omitempty" yaml:"source_defaults,omitempty"`
	Family           FamilyPatterns      `json:"family" yaml:"family"`
	Sources          []Source            `json:"sources" yaml:"sources"`
}

// CategoryRule maps patterns to exactly one category.
type CategoryRule struct {
	Category string   `json:"category" yaml:"category"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Patterns []string `json:"patterns" yaml:"patterns"`
}

// TagRule defines one activity tag. Exclude patterns are checked first.
// IncludeEvents and ExcludeEvents force the tag on or off for specific
// event ids regardless of patterns.
type TagRule struct {
	Tag           string   `json:"tag" yaml:"tag"`
	Type          string   `json:"type,omitempty" yaml:"type,omitempty"`
	Patterns      []string `json:"patterns" yaml:"patterns"`
	Exclude       []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	IncludeEvents []string `json:"include_events,omitempty" yaml:"include_events,omitempty"`
	ExcludeEvents []string `json:"exclude_events,omitempty" yaml:"exclude_events,omitempty"`
}

// FamilyPatterns are the legacy family-friendly regular expressions,
// matched case-insensitively.
type FamilyPatterns struct {
	Positive []string `json:"positive_patterns" yaml:"positive_patterns"`
	Negative []string `json:"negative_patterns" yaml:"negative_patterns"`
}

// Source describes one event source. Sources are listed in trust order:
// an earlier source wins dedup conflicts against a later one.
type Source struct {
	ID                string   `json:"id" yaml:"id"`
	Label             string   `json:"label,omitempty" yaml:"label,omitempty"`
	DefaultSourceType string   `json:"default_source_type,omitempty" yaml:"default_source_type,omitempty"`
	IDPrefixes        []string `json:"id_prefixes,omitempty" yaml:"id_prefixes,omitempty"`
	SourceTypes       []string `json:"source_types,omitempty" yaml:"source_types,omitempty"`
	HomeVenues        []string `json:"home_venues,omitempty" yaml:"home_venues,omitempty"`
}

// Default returns the embedded default rules.
func Default() *Config {
	cfg, err := Parse(defaultsYAML, "yaml", "defaults.yaml")
	if err != nil {
		panic("rules: embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// Load reads a rule file. An empty path returns the defaults. Sections
// the file leaves out are taken from the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg, err := Parse(data, formatOf(path), path)
	if err != nil {
		return nil, err
	}
	return cfg.withDefaults(Default()), nil
}

// Parse decodes a rule document.
func Parse(data []byte, format, file string) (*Config, error) {
	cfg := &Config{}
	var err error
	if format == "json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.WrapParse(format, file, err)
	}
	return cfg, nil
}

func (c *Config) withDefaults(def *Config) *Config {
	if c.FallbackCategory == "" {
		c.FallbackCategory = def.FallbackCategory
	}
	if c.Categories == nil {
		c.Categories = def.Categories
	}
	if c.FamilyTag == "" {
		c.FamilyTag = def.FamilyTag
	}
	if c.Tags == nil {
		c.Tags = def.Tags
	}
	if c.SourceDefaults == nil {
		c.SourceDefaults = def.SourceDefaults
	}
	if c.Family.Positive == nil && c.Family.Negative == nil {
		c.Family = def.Family
	}
	if c.Sources == nil {
		c.Sources = def.Sources
	}
	return c
}

// LoadFamily reads a standalone legacy family keyword file
// ({"positive_patterns": [...], "negative_patterns": [...]}). Problems are
// reported as warnings and yield no patterns.
func LoadFamily(path string) (FamilyPatterns, []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FamilyPatterns{}, []string{"Family keywords file not found: " + path}
		}
		return FamilyPatterns{}, []string{"Failed to read family keywords: " + err.Error()}
	}
	var fp FamilyPatterns
	if formatOf(path) == "yaml" {
		err = yaml.Unmarshal(data, &fp)
	} else {
		err = json.Unmarshal(data, &fp)
	}
	if err != nil {
		return FamilyPatterns{}, []string{"Failed to parse family keywords: " + err.Error()}
	}
	return fp, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}
