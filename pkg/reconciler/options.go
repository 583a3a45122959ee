package reconciler

import (
	"time"

	"github.com/culturalmap/eventmap/pkg/aliases"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/rules"
)

// Options configures a reconciler.
type options struct {
	strategy       Strategy
	rules          *rules.Config
	aliases        *aliases.File
	aliasWarnings  []string
	files          SourceFiles
	titleThreshold float64
	venueThreshold float64
	fallback       categories.Category
	windowDays     int
	candidates     int
	now            func() time.Time
	baseline       []*catalogs.Event // Existing events for comparison
	observer       Observer
}

func defaultOptions() *options {
	return &options{
		strategy:       NewMatchFirstStrategy(),
		titleThreshold: constants.DefaultTitleThreshold,
		venueThreshold: constants.DefaultVenueThreshold,
		windowDays:     constants.DefaultWindowDays,
		candidates:     constants.DefaultCandidateCount,
		now:            time.Now,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if options.rules == nil {
		options.rules = rules.Default()
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithStrategy sets the stage order.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithRules sets the classification rules and source registry.
func WithRules(cfg *rules.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return &errors.ValidationError{
				Field:   "rules",
				Message: "cannot be nil",
			}
		}
		o.rules = cfg
		return nil
	}
}

// WithAliases sets the alias file and the warnings produced loading it.
// Entries are resolved against the asset index when the reconciler is
// built.
func WithAliases(f *aliases.File, warnings ...string) Option {
	return func(o *options) error {
		o.aliases = f
		o.aliasWarnings = warnings
		return nil
	}
}

// WithSourceFiles records the input paths in the generated artifacts.
func WithSourceFiles(files SourceFiles) Option {
	return func(o *options) error {
		o.files = files
		return nil
	}
}

// WithThresholds sets the dedup title and venue similarity thresholds.
func WithThresholds(title, venue float64) Option {
	return func(o *options) error {
		if title < 0 || title > 100 {
			return &errors.ValidationError{Field: "dedup.title_threshold", Value: title, Message: "must be between 0 and 100"}
		}
		if venue < 0 || venue > 100 {
			return &errors.ValidationError{Field: "dedup.venue_threshold", Value: venue, Message: "must be between 0 and 100"}
		}
		o.titleThreshold = title
		o.venueThreshold = venue
		return nil
	}
}

// WithFallbackCategory overrides the rule file's fallback category.
func WithFallbackCategory(c categories.Category) Option {
	return func(o *options) error {
		o.fallback = c
		return nil
	}
}

// WithWindowDays sets the length of the upcoming window used in stats.
func WithWindowDays(days int) Option {
	return func(o *options) error {
		if days <= 0 {
			return &errors.ValidationError{Field: "window_days", Value: days, Message: "must be positive"}
		}
		o.windowDays = days
		return nil
	}
}

// WithCandidateCount sets how many candidate assets are suggested per
// unmatched venue in the report.
func WithCandidateCount(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "candidates", Value: n, Message: "cannot be negative"}
		}
		o.candidates = n
		return nil
	}
}

// WithClock sets the time source used for generated_at and the upcoming
// window.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithBaseline sets existing events to compare against for change detection.
func WithBaseline(events []*catalogs.Event) Option {
	return func(o *options) error {
		o.baseline = events
		return nil
	}
}

// WithObserver registers an observer for stage timings and results.
func WithObserver(obs Observer) Option {
	return func(o *options) error {
		o.observer = obs
		return nil
	}
}
