// Package validate checks a built event index before it is published:
// record shape, index coverage, category assignment and match ratios.
package validate

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/culturalmap/eventmap/internal/validation"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
	"github.com/culturalmap/eventmap/pkg/logging"
)

// sampleSize caps the event ids quoted in a gate failure.
const sampleSize = 6

// Thresholds are the maximum tolerated unmatched ratios.
type Thresholds struct {
	MaxUnmatchedRatio         float64 `json:"max_unmatched_ratio" yaml:"max_unmatched_ratio"`
	MaxUpcomingUnmatchedRatio float64 `json:"max_upcoming_unmatched_ratio" yaml:"max_upcoming_unmatched_ratio"`
}

// DefaultThresholds returns the publishing thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxUnmatchedRatio:         constants.DefaultMaxUnmatchedRatio,
		MaxUpcomingUnmatchedRatio: constants.DefaultMaxUpcomingUnmatchedRatio,
	}
}

// Stats are the counters written to the validation report.
type Stats struct {
	TotalEvents             int     `json:"total_events" yaml:"total_events"`
	UpcomingEvents          int     `json:"upcoming_events" yaml:"upcoming_events"`
	WeekendEvents           int     `json:"weekend_events" yaml:"weekend_events"`
	MappedTotal             int     `json:"mapped_total" yaml:"mapped_total"`
	UnmatchedTotal          int     `json:"unmatched_total" yaml:"unmatched_total"`
	MappedUpcoming          int     `json:"mapped_upcoming" yaml:"mapped_upcoming"`
	UnmatchedUpcoming       int     `json:"unmatched_upcoming" yaml:"unmatched_upcoming"`
	UnmatchedRatio          float64 `json:"unmatched_ratio" yaml:"unmatched_ratio"`
	UpcomingUnmatchedRatio  float64 `json:"upcoming_unmatched_ratio" yaml:"upcoming_unmatched_ratio"`
	AllowedCategoriesCount  int     `json:"allowed_categories_count" yaml:"allowed_categories_count"`
	UncategorizedCount      int     `json:"uncategorized_count" yaml:"uncategorized_count"`
	DisallowedCategoryCount int     `json:"disallowed_category_count" yaml:"disallowed_category_count"`
}

// UnmatchedVenue counts unmatched events per raw venue.
type UnmatchedVenue struct {
	VenueName string `json:"venue_name" yaml:"venue_name"`
	VenueCity string `json:"venue_city" yaml:"venue_city"`
	Count     int    `json:"count" yaml:"count"`
}

// Files names the validated inputs in the report.
type Files struct {
	Events string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
	Index  string `json:"index_file,omitempty" yaml:"index_file,omitempty"`
	Data   string `json:"data_file,omitempty" yaml:"data_file,omitempty"`
}

// Report is the events-validation-report.json artifact.
type Report struct {
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Files
	WindowDays        int              `json:"window_days" yaml:"window_days"`
	Passed            bool             `json:"passed" yaml:"passed"`
	Failures          []string         `json:"failures" yaml:"failures"`
	Stats             Stats            `json:"stats" yaml:"stats"`
	Thresholds        Thresholds       `json:"thresholds" yaml:"thresholds"`
	UnmatchedVenues   []UnmatchedVenue `json:"unmatched_venues" yaml:"unmatched_venues"`
	AllowedCategories []string         `json:"allowed_categories" yaml:"allowed_categories"`
}

// Option configures a Gate.
type Option func(*Gate)

// WithThresholds sets the unmatched ratio limits.
func WithThresholds(t Thresholds) Option {
	return func(g *Gate) { g.thresholds = t }
}

// WithWindowDays sets the upcoming window.
func WithWindowDays(days int) Option {
	return func(g *Gate) {
		if days > 0 {
			g.windowDays = days
		}
	}
}

// WithClock sets the time source for the upcoming window.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithFiles records the input paths in the report.
func WithFiles(files Files) Option {
	return func(g *Gate) { g.files = files }
}

// Gate runs the publishing checks.
type Gate struct {
	thresholds Thresholds
	windowDays int
	now        func() time.Time
	files      Files
}

// New creates a Gate with the default thresholds.
func New(opts ...Option) *Gate {
	g := &Gate{
		thresholds: DefaultThresholds(),
		windowDays: constants.DefaultWindowDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// required is the subset of event fields that must be non-blank.
type required struct {
	EventID  string `json:"event_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	StartISO string `json:"start_iso" validate:"required"`
	EndISO   string `json:"end_iso" validate:"required"`
}

// Check validates the source events against their indexed form. Malformed
// records fail immediately with a RecordError. Otherwise every gate is
// evaluated and the report is returned; failed gates also yield a
// GateError.
func (g *Gate) Check(ctx context.Context, events, indexed []*catalogs.Event, allowed *categories.Allowed) (*Report, error) {
	logger := logging.FromContext(ctx)
	if allowed.Len() == 0 {
		return nil, errors.NewConfigError("categories", "no categories found in asset catalog", errors.ErrNoCategories)
	}

	byID := make(map[string]*catalogs.Event, len(indexed))
	for _, e := range indexed {
		if e != nil && e.EventID != "" {
			byID[e.EventID] = e
		}
	}

	now := g.now()
	windowEnd := now.Add(time.Duration(g.windowDays) * 24 * time.Hour)
	var (
		stats         Stats
		missingIndex  []string
		uncategorized []string
		disallowed    []string
		venues        []UnmatchedVenue
	)
	venueIdx := make(map[[2]string]int)
	seen := make(map[string]struct{}, len(events))

	for i, e := range events {
		if err := checkRecord(i, e, seen); err != nil {
			return nil, err
		}
		ix, ok := byID[e.EventID]
		if !ok {
			missingIndex = append(missingIndex, e.EventID)
			continue
		}

		_, mapped := ix.AssetPos()
		if ix.MatchStatus == catalogs.StatusMapped {
			mapped = true
		}
		if mapped {
			stats.MappedTotal++
		} else {
			stats.UnmatchedTotal++
			key := [2]string{e.VenueName, e.VenueCity}
			if j, ok := venueIdx[key]; ok {
				venues[j].Count++
			} else {
				name := e.VenueName
				if name == "" {
					name = "Unknown venue"
				}
				venueIdx[key] = len(venues)
				venues = append(venues, UnmatchedVenue{VenueName: name, VenueCity: e.VenueCity, Count: 1})
			}
		}

		switch {
		case !categorized(ix):
			uncategorized = append(uncategorized, e.EventID)
		case !withinAllowed(ix, allowed):
			disallowed = append(disallowed, e.EventID)
		}

		start := e.Start()
		if !start.Before(now) && !start.After(windowEnd) {
			stats.UpcomingEvents++
			if mapped {
				stats.MappedUpcoming++
			} else {
				stats.UnmatchedUpcoming++
			}
		}
		if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
			stats.WeekendEvents++
		}
	}

	stats.TotalEvents = len(events)
	stats.AllowedCategoriesCount = allowed.Len()
	stats.UncategorizedCount = len(uncategorized)
	stats.DisallowedCategoryCount = len(disallowed)
	if stats.TotalEvents > 0 {
		stats.UnmatchedRatio = round6(float64(stats.UnmatchedTotal) / float64(stats.TotalEvents))
	}
	if stats.UpcomingEvents > 0 {
		stats.UpcomingUnmatchedRatio = round6(float64(stats.UnmatchedUpcoming) / float64(stats.UpcomingEvents))
	}

	failures := []string{}
	if len(missingIndex) > 0 {
		failures = append(failures, fmt.Sprintf("missing index entries for %d events (sample: %s)", len(missingIndex), sample(missingIndex)))
	}
	if len(uncategorized) > 0 {
		failures = append(failures, fmt.Sprintf("missing event_category assignment for %d events (sample: %s)", len(uncategorized), sample(uncategorized)))
	}
	if len(disallowed) > 0 {
		failures = append(failures, fmt.Sprintf("events contain categories outside the allowed set: %d (sample: %s)", len(disallowed), sample(disallowed)))
	}
	if stats.UnmatchedRatio > g.thresholds.MaxUnmatchedRatio {
		failures = append(failures, fmt.Sprintf("unmatched ratio too high: %d/%d = %.3f (max %.3f)",
			stats.UnmatchedTotal, stats.TotalEvents, stats.UnmatchedRatio, g.thresholds.MaxUnmatchedRatio))
	}
	if stats.UpcomingUnmatchedRatio > g.thresholds.MaxUpcomingUnmatchedRatio {
		failures = append(failures, fmt.Sprintf("upcoming unmatched ratio too high: %d/%d = %.3f (max %.3f)",
			stats.UnmatchedUpcoming, stats.UpcomingEvents, stats.UpcomingUnmatchedRatio, g.thresholds.MaxUpcomingUnmatchedRatio))
	}

	sort.SliceStable(venues, func(i, j int) bool { return venues[i].Count > venues[j].Count })
	if venues == nil {
		venues = []UnmatchedVenue{}
	}
	allowedLabels := make([]string, 0, allowed.Len())
	for _, c := range allowed.List() {
		allowedLabels = append(allowedLabels, c.String())
	}
	sort.Strings(allowedLabels)

	report := &Report{
		GeneratedAt:       now.UTC().Format(time.RFC3339),
		Files:             g.files,
		WindowDays:        g.windowDays,
		Passed:            len(failures) == 0,
		Failures:          failures,
		Stats:             stats,
		Thresholds:        g.thresholds,
		UnmatchedVenues:   venues,
		AllowedCategories: allowedLabels,
	}

	if !report.Passed {
		for _, f := range failures {
			logger.Warn().Str("gate", f).Msg("Validation gate failed")
		}
		return report, &errors.GateError{Failures: failures}
	}
	logger.Info().
		Int("total", stats.TotalEvents).
		Int("upcoming", stats.UpcomingEvents).
		Float64("unmatched_ratio", stats.UnmatchedRatio).
		Msg("Events validation passed")
	return report, nil
}

func checkRecord(i int, e *catalogs.Event, seen map[string]struct{}) error {
	if e == nil {
		return errors.NewRecordError("events", i, "", "", "record is not an object")
	}
	fields := required{
		EventID:  strings.TrimSpace(e.EventID),
		Title:    strings.TrimSpace(e.Title),
		StartISO: strings.TrimSpace(e.StartISO),
		EndISO:   strings.TrimSpace(e.EndISO),
	}
	if err := validation.Struct(fields); err != nil {
		re := errors.NewRecordError("events", i, e.EventID, "", err.Error())
		re.Err = err
		return re
	}
	if _, dup := seen[e.EventID]; dup {
		re := errors.NewRecordError("events", i, e.EventID, "event_id", "duplicate event_id")
		re.Err = errors.ErrDuplicateEvent
		return re
	}
	seen[e.EventID] = struct{}{}
	if err := e.ParseTimes(); err != nil {
		re := errors.NewRecordError("events", i, e.EventID, "", err.Error())
		re.Err = err
		return re
	}
	return nil
}

func categorized(e *catalogs.Event) bool {
	if strings.TrimSpace(e.EventCategory) != "" {
		return true
	}
	for _, c := range e.EventCategories {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func withinAllowed(e *catalogs.Event, allowed *categories.Allowed) bool {
	if !allowed.Has(categories.Category(e.EventCategory)) {
		return false
	}
	for _, c := range e.EventCategories {
		if strings.TrimSpace(c) != "" && !allowed.Has(categories.Category(c)) {
			return false
		}
	}
	return true
}

func sample(ids []string) string {
	if len(ids) > sampleSize {
		ids = ids[:sampleSize]
	}
	return strings.Join(ids, ", ")
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
