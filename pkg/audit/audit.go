// Package audit surfaces coverage gaps between the asset catalog and the
// event index. It never fails a build; the report is advisory.
package audit

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/categories"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/logging"
)

// DefaultMaxExamples caps each example list in the report.
const DefaultMaxExamples = 40

var yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// Summary holds the audit counters.
type Summary struct {
	AllowedCategoriesCount                         int `json:"allowed_categories_count" yaml:"allowed_categories_count"`
	UpcomingEventsCount                            int `json:"upcoming_events_count" yaml:"upcoming_events_count"`
	UpcomingUnmappedCount                          int `json:"upcoming_unmapped_count" yaml:"upcoming_unmapped_count"`
	EventsWithDisallowedCategoriesCount            int `json:"events_with_disallowed_categories_count" yaml:"events_with_disallowed_categories_count"`
	StaleFestivalAssetsCount                       int `json:"stale_festival_assets_count" yaml:"stale_festival_assets_count"`
	StaleFestivalAssetsWithoutUpcomingCounterparts int `json:"stale_festival_assets_without_upcoming_counterpart_count" yaml:"stale_festival_assets_without_upcoming_counterpart_count"`
}

// UnmappedEvent is an upcoming event with no asset.
type UnmappedEvent struct {
	EventID       string `json:"event_id" yaml:"event_id"`
	Title         string `json:"title" yaml:"title"`
	StartISO      string `json:"start_iso" yaml:"start_iso"`
	VenueName     string `json:"venue_name" yaml:"venue_name"`
	VenueCity     string `json:"venue_city" yaml:"venue_city"`
	EventCategory string `json:"event_category" yaml:"event_category"`
}

// DisallowedEvent is an event carrying a category outside the catalog's set.
type DisallowedEvent struct {
	EventID    string   `json:"event_id" yaml:"event_id"`
	Title      string   `json:"title" yaml:"title"`
	Categories []string `json:"categories" yaml:"categories"`
}

// StaleAsset is a festival asset whose text only mentions past years.
type StaleAsset struct {
	Name       string `json:"name" yaml:"name"`
	City       string `json:"city" yaml:"city"`
	LatestYear int    `json:"latest_year_in_text" yaml:"latest_year_in_text"`
	YearsFound []int  `json:"years_found" yaml:"years_found"`
}

// Sources names the audited inputs.
type Sources struct {
	DataFile  string `json:"data_file,omitempty" yaml:"data_file,omitempty"`
	IndexFile string `json:"index_file,omitempty" yaml:"index_file,omitempty"`
}

// Report is the events-coverage-audit.json artifact.
type Report struct {
	GeneratedAt                 string            `json:"generated_at" yaml:"generated_at"`
	WindowDays                  int               `json:"window_days" yaml:"window_days"`
	Sources                     Sources           `json:"sources" yaml:"sources"`
	Summary                     Summary           `json:"summary" yaml:"summary"`
	AllowedCategories           []string          `json:"allowed_categories" yaml:"allowed_categories"`
	UpcomingUnmapped            []UnmappedEvent   `json:"upcoming_unmapped_examples" yaml:"upcoming_unmapped_examples"`
	DisallowedCategories        []DisallowedEvent `json:"events_with_disallowed_categories" yaml:"events_with_disallowed_categories"`
	StaleFestivalAssets         []StaleAsset      `json:"stale_festival_assets" yaml:"stale_festival_assets"`
	StaleWithoutUpcomingMatches []StaleAsset      `json:"stale_festival_assets_without_upcoming_counterpart" yaml:"stale_festival_assets_without_upcoming_counterpart"`
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithWindowDays sets the upcoming window.
func WithWindowDays(days int) Option {
	return func(a *Auditor) {
		if days > 0 {
			a.windowDays = days
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Auditor) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMaxExamples caps each example list.
func WithMaxExamples(n int) Option {
	return func(a *Auditor) {
		if n >= 0 {
			a.maxExamples = n
		}
	}
}

// WithSources records the input paths in the report.
func WithSources(s Sources) Option {
	return func(a *Auditor) { a.sources = s }
}

// Auditor compares assets against indexed events.
type Auditor struct {
	windowDays  int
	maxExamples int
	now         func() time.Time
	sources     Sources
}

// New creates an Auditor.
func New(opts ...Option) *Auditor {
	a := &Auditor{
		windowDays:  constants.DefaultWindowDays,
		maxExamples: DefaultMaxExamples,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run audits indexed events against the catalog. Events whose timestamps
// do not parse are skipped.
func (a *Auditor) Run(ctx context.Context, assets []catalogs.Asset, events []*catalogs.Event) *Report {
	logger := logging.FromContext(ctx)
	now := a.now().UTC()
	windowEnd := now.Add(time.Duration(a.windowDays) * 24 * time.Hour)

	labels := make([]string, 0, len(assets))
	for _, asset := range assets {
		labels = append(labels, asset.Category)
	}
	allowed := categories.NewAllowed(labels...)
	allowedLabels := make([]string, 0, allowed.Len())
	for _, c := range allowed.List() {
		allowedLabels = append(allowedLabels, c.String())
	}
	slices.Sort(allowedLabels)

	var (
		upcoming   []*catalogs.Event
		unmapped   []UnmappedEvent
		disallowed []DisallowedEvent
	)
	for _, e := range events {
		if e == nil || e.ParseTimes() != nil {
			continue
		}
		if !e.End().Before(now) && !e.Start().After(windowEnd) {
			upcoming = append(upcoming, e)
			if _, ok := e.AssetPos(); !ok {
				unmapped = append(unmapped, UnmappedEvent{
					EventID:       e.EventID,
					Title:         e.Title,
					StartISO:      e.StartISO,
					VenueName:     e.VenueName,
					VenueCity:     e.VenueCity,
					EventCategory: e.EventCategory,
				})
			}
		}

		cats := eventCategories(e)
		for _, c := range cats {
			if !allowed.Has(categories.Category(c)) {
				disallowed = append(disallowed, DisallowedEvent{EventID: e.EventID, Title: e.Title, Categories: cats})
				break
			}
		}
	}

	var stale, orphaned []StaleAsset
	for _, asset := range assets {
		s, ok := staleFestival(asset, now.Year())
		if !ok {
			continue
		}
		stale = append(stale, s)
		if !hasUpcomingCounterpart(asset, upcoming) {
			orphaned = append(orphaned, s)
		}
	}

	report := &Report{
		GeneratedAt: now.Format(time.RFC3339),
		WindowDays:  a.windowDays,
		Sources:     a.sources,
		Summary: Summary{
			AllowedCategoriesCount:                         len(allowedLabels),
			UpcomingEventsCount:                            len(upcoming),
			UpcomingUnmappedCount:                          len(unmapped),
			EventsWithDisallowedCategoriesCount:            len(disallowed),
			StaleFestivalAssetsCount:                       len(stale),
			StaleFestivalAssetsWithoutUpcomingCounterparts: len(orphaned),
		},
		AllowedCategories:           allowedLabels,
		UpcomingUnmapped:            limit(unmapped, a.maxExamples),
		DisallowedCategories:        limit(disallowed, a.maxExamples),
		StaleFestivalAssets:         limit(stale, a.maxExamples),
		StaleWithoutUpcomingMatches: limit(orphaned, a.maxExamples),
	}

	logger.Info().
		Int("upcoming", report.Summary.UpcomingEventsCount).
		Int("upcoming_unmapped", report.Summary.UpcomingUnmappedCount).
		Int("disallowed_categories", report.Summary.EventsWithDisallowedCategoriesCount).
		Int("stale_festivals", report.Summary.StaleFestivalAssetsCount).
		Msg("Event coverage audit complete")
	return report
}

// eventCategories returns the sorted distinct non-empty categories of e.
func eventCategories(e *catalogs.Event) []string {
	var out []string
	if e.EventCategory != "" {
		out = append(out, e.EventCategory)
	}
	for _, c := range e.EventCategories {
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// staleFestival reports a Fairs & Festivals asset whose newest year in
// name or description is before the current year.
func staleFestival(asset catalogs.Asset, year int) (StaleAsset, bool) {
	if asset.CategoryValue() != categories.FairsFestivals {
		return StaleAsset{}, false
	}
	text := textnorm.Text(asset.Name) + " " + textnorm.Text(asset.Description)
	var years []int
	for _, m := range yearPattern.FindAllString(text, -1) {
		y, err := strconv.Atoi(m)
		if err == nil {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return StaleAsset{}, false
	}
	slices.Sort(years)
	years = slices.Compact(years)
	latest := years[len(years)-1]
	if latest >= year {
		return StaleAsset{}, false
	}
	return StaleAsset{Name: asset.Name, City: asset.City, LatestYear: latest, YearsFound: years}, true
}

// hasUpcomingCounterpart looks for an upcoming event in the same city
// (when both are known) sharing one asset name token with its title or
// two with its description.
func hasUpcomingCounterpart(asset catalogs.Asset, upcoming []*catalogs.Event) bool {
	nameTokens := textnorm.Set(textnorm.AuditTokenizer.Tokenize(asset.Name))
	if len(nameTokens) == 0 {
		return false
	}
	assetCity := textnorm.Token(asset.City)
	for _, e := range upcoming {
		eventCity := textnorm.Token(e.VenueCity)
		if assetCity != "" && eventCity != "" && assetCity != eventCity {
			continue
		}
		if textnorm.Overlap(textnorm.AuditTokenizer.Tokenize(e.Title), nameTokens) >= 1 {
			return true
		}
		if textnorm.Overlap(textnorm.AuditTokenizer.Tokenize(e.Description), nameTokens) >= 2 {
			return true
		}
	}
	return false
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	if items == nil {
		return []T{}
	}
	return items
}
