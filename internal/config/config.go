// Package config holds the eventmap CLI settings decoded from config
// files, environment variables and flags.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/culturalmap/eventmap/internal/persistence"
	"github.com/culturalmap/eventmap/internal/validation"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/reconciler"
	"github.com/culturalmap/eventmap/pkg/validate"
)

// SourceDateEpochEnv pins the clock for reproducible artifacts.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// Config holds the application configuration.
type Config struct {
	// Global flags
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`
	NoColor bool   `mapstructure:"no_color"`
	Format  string `mapstructure:"format" validate:"omitempty,oneof=table json yaml wide"`
	Now     string `mapstructure:"now"`

	// Config file
	ConfigFile string `mapstructure:"-"`

	// Inputs
	AssetsFile  string                   `mapstructure:"assets_file" validate:"required"`
	EventsFile  string                   `mapstructure:"events_file"`
	AliasesFile string                   `mapstructure:"aliases_file"`
	RulesFile   string                   `mapstructure:"rules_file"`
	Sources     []persistence.SourceFile `mapstructure:"sources" validate:"dive"`

	// Outputs
	OutputFile     string `mapstructure:"output_file"`
	ReportFile     string `mapstructure:"report_file"`
	MarkdownFile   string `mapstructure:"markdown_file"`
	MergedFile     string `mapstructure:"merged_file"`
	FlatFile       string `mapstructure:"flat_file"`
	BaselineFile   string `mapstructure:"baseline_file"`
	MetricsFile    string `mapstructure:"metrics_file"`
	ValidationFile string `mapstructure:"validation_file"`
	AuditFile      string `mapstructure:"audit_file"`

	// Pipeline
	Dedup            Dedup    `mapstructure:"dedup"`
	FallbackCategory string   `mapstructure:"fallback_category"`
	StageOrder       string   `mapstructure:"stage_order" validate:"omitempty,oneof=match-first dedup-first"`
	WindowDays       int      `mapstructure:"window_days" validate:"gt=0"`
	Validate         Validate `mapstructure:"validate"`

	// Logging configuration
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=auto json console pretty"`
	LogOutput string `mapstructure:"log_output"`
}

// Dedup holds the duplicate detection thresholds (0-100).
type Dedup struct {
	TitleThreshold float64 `mapstructure:"title_threshold" validate:"gte=0,lte=100"`
	VenueThreshold float64 `mapstructure:"venue_threshold" validate:"gte=0,lte=100"`
}

// Validate holds the publishing gate ratios.
type Validate struct {
	MaxUnmatchedRatio         float64 `mapstructure:"max_unmatched_ratio" validate:"gte=0,lte=1"`
	MaxUpcomingUnmatchedRatio float64 `mapstructure:"max_upcoming_unmatched_ratio" validate:"gte=0,lte=1"`
}

// SetDefaults registers every key with its default so environment
// variables are picked up on Unmarshal.
func SetDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"verbose":                               false,
		"quiet":                                 false,
		"no_color":                              false,
		"format":                                "",
		"now":                                   "",
		"assets_file":                           "data.json",
		"events_file":                           constants.FlatFile,
		"aliases_file":                          "",
		"rules_file":                            "",
		"output_file":                           constants.EventIndexFile,
		"report_file":                           constants.MatchReportFile,
		"markdown_file":                         "",
		"merged_file":                           constants.MergedFile,
		"flat_file":                             constants.FlatFile,
		"baseline_file":                         "",
		"metrics_file":                          "",
		"validation_file":                       constants.ValidationFile,
		"audit_file":                            constants.AuditFile,
		"dedup.title_threshold":                 constants.DefaultTitleThreshold,
		"dedup.venue_threshold":                 constants.DefaultVenueThreshold,
		"fallback_category":                     "",
		"stage_order":                           string(reconciler.StrategyTypeMatchFirst),
		"window_days":                           constants.DefaultWindowDays,
		"validate.max_unmatched_ratio":          constants.DefaultMaxUnmatchedRatio,
		"validate.max_upcoming_unmatched_ratio": constants.DefaultMaxUpcomingUnmatchedRatio,
		"log_level":                             "",
		"log_format":                            "auto",
		"log_output":                            "stderr",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Check validates the struct tags of the configuration.
func (c *Config) Check() error {
	if err := validation.Struct(c); err != nil {
		return errors.NewConfigError("config", err.Error(), err)
	}
	return nil
}

// Clock returns the time source for a run. --now wins over
// SOURCE_DATE_EPOCH; both accept RFC3339 or unix seconds.
func (c *Config) Clock() (func() time.Time, error) {
	value, field := c.Now, "now"
	if value == "" {
		value, field = os.Getenv(SourceDateEpochEnv), SourceDateEpochEnv
	}
	if value == "" {
		return time.Now, nil
	}
	t, err := ParseTime(value)
	if err != nil {
		return nil, errors.WrapValidation(field, err)
	}
	return func() time.Time { return t }, nil
}

// ParseTime accepts RFC3339 or unix seconds.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.NewValidationError("time", value, "must be RFC3339 or unix seconds")
	}
	return t.UTC(), nil
}

// Strategy returns the configured stage order.
func (c *Config) Strategy() (reconciler.Strategy, error) {
	return reconciler.ParseStrategy(c.StageOrder)
}

// Thresholds returns the validation gate ratios.
func (c *Config) Thresholds() validate.Thresholds {
	return validate.Thresholds{
		MaxUnmatchedRatio:         c.Validate.MaxUnmatchedRatio,
		MaxUpcomingUnmatchedRatio: c.Validate.MaxUpcomingUnmatchedRatio,
	}
}
