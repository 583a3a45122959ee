// Package dedup removes events that several sources report for the same
// real-world occurrence. Comparison is pairwise within a calendar date and
// only across different sources; there is no transitive closure, so two
// near-duplicates that were never compared directly both survive.
package dedup

import (
	"context"
	"slices"
	"strings"

	"github.com/culturalmap/eventmap/internal/textnorm"
	"github.com/culturalmap/eventmap/pkg/authority"
	"github.com/culturalmap/eventmap/pkg/catalogs"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/logging"
)

// Reasons a winner was chosen.
const (
	ReasonVenueOwner = "venue-owner"
	ReasonPriority   = "priority"
	ReasonListOrder  = "list-order"
)

// Decision records one removed duplicate.
type Decision struct {
	Date         string   `json:"date" yaml:"date"`
	WinnerID     string   `json:"winner_id" yaml:"winner_id"`
	WinnerSource string   `json:"winner_source" yaml:"winner_source"`
	WinnerTitle  string   `json:"winner_title" yaml:"winner_title"`
	LoserID      string   `json:"loser_id" yaml:"loser_id"`
	LoserSource  string   `json:"loser_source" yaml:"loser_source"`
	LoserTitle   string   `json:"loser_title" yaml:"loser_title"`
	LoserVenue   string   `json:"loser_venue,omitempty" yaml:"loser_venue,omitempty"`
	TitleScore   float64  `json:"title_score" yaml:"title_score"`
	VenueScore   *float64 `json:"venue_score,omitempty" yaml:"venue_score,omitempty"`
	Reason       string   `json:"reason" yaml:"reason"`
}

// Result is the outcome of a dedup pass.
type Result struct {
	Events    []*catalogs.Event
	Removed   int
	Decisions []Decision
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithTitleThreshold sets the minimum title similarity (0-100).
func WithTitleThreshold(t float64) Option {
	return func(d *Deduplicator) { d.titleThreshold = t }
}

// WithVenueThreshold sets the minimum venue similarity (0-100).
func WithVenueThreshold(t float64) Option {
	return func(d *Deduplicator) { d.venueThreshold = t }
}

// Deduplicator compares events across sources.
type Deduplicator struct {
	authority      authority.Authority
	titleThreshold float64
	venueThreshold float64
}

// New returns a Deduplicator using the trust table of auth.
func New(auth authority.Authority, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		authority:      auth,
		titleThreshold: constants.DefaultTitleThreshold,
		venueThreshold: constants.DefaultVenueThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Match holds the scores of one comparison.
type Match struct {
	Duplicate  bool
	TitleScore float64
	VenueScore *float64
}

// Compare decides whether a and b describe the same occurrence. Blank
// titles never match. A blank venue on either side matches on title
// alone.
func (d *Deduplicator) Compare(a, b *catalogs.Event) Match {
	ta, tb := textnorm.Title(a.Title), textnorm.Title(b.Title)
	if ta == "" || tb == "" {
		return Match{}
	}
	m := Match{TitleScore: TokenSortRatio(ta, tb)}
	if m.TitleScore < d.titleThreshold {
		return m
	}
	if strings.TrimSpace(a.VenueName) == "" || strings.TrimSpace(b.VenueName) == "" {
		m.Duplicate = true
		return m
	}
	va, vb := textnorm.Venue(a.VenueName), textnorm.Venue(b.VenueName)
	if va == "" || vb == "" {
		m.Duplicate = true
		return m
	}
	score := TokenSetRatio(va, vb)
	m.VenueScore = &score
	m.Duplicate = score >= d.venueThreshold
	return m
}

// Run removes cross-source duplicates. The surviving events keep their
// input order. Running it again on its own output removes nothing.
func (d *Deduplicator) Run(ctx context.Context, events []*catalogs.Event) Result {
	logger := logging.FromContext(ctx)

	sources := make([]string, len(events))
	byDate := make(map[string][]int)
	for i, e := range events {
		sources[i] = d.authority.SourceOf(e)
		date := e.Date()
		byDate[date] = append(byDate[date], i)
	}
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	removed := make(map[int]struct{})
	var decisions []Decision

	for _, date := range dates {
		group := byDate[date]
		for x := 0; x < len(group); x++ {
			i := group[x]
			if _, gone := removed[i]; gone {
				continue
			}
			for y := x + 1; y < len(group); y++ {
				j := group[y]
				if _, gone := removed[j]; gone {
					continue
				}
				if sources[i] == sources[j] {
					continue
				}
				m := d.Compare(events[i], events[j])
				if !m.Duplicate {
					continue
				}

				winner, loser, reason := d.pickWinner(events, sources, i, j)
				mergeLabels(events[winner], events[loser])
				removed[loser] = struct{}{}

				dec := Decision{
					Date:         date,
					WinnerID:     events[winner].EventID,
					WinnerSource: sources[winner],
					WinnerTitle:  events[winner].Title,
					LoserID:      events[loser].EventID,
					LoserSource:  sources[loser],
					LoserTitle:   events[loser].Title,
					LoserVenue:   events[loser].VenueName,
					TitleScore:   m.TitleScore,
					VenueScore:   m.VenueScore,
					Reason:       reason,
				}
				decisions = append(decisions, dec)
				logger.Debug().
					Str("date", date).
					Str("kept", dec.WinnerID).
					Str("kept_source", dec.WinnerSource).
					Str("removed", dec.LoserID).
					Str("removed_source", dec.LoserSource).
					Float64("title_score", dec.TitleScore).
					Str("reason", reason).
					Msg("Duplicate removed")

				if loser == i {
					break
				}
			}
		}
	}

	kept := make([]*catalogs.Event, 0, len(events)-len(removed))
	for i, e := range events {
		if _, gone := removed[i]; !gone {
			kept = append(kept, e)
		}
	}

	logger.Info().
		Int("input", len(events)).
		Int("removed", len(removed)).
		Int("kept", len(kept)).
		Msg("Deduplication complete")

	return Result{Events: kept, Removed: len(removed), Decisions: decisions}
}

// pickWinner applies venue ownership, then trust rank, then list order.
func (d *Deduplicator) pickWinner(events []*catalogs.Event, sources []string, i, j int) (int, int, string) {
	ownsI := d.ownsVenue(sources[i], events[i], events[j])
	ownsJ := d.ownsVenue(sources[j], events[i], events[j])
	switch {
	case ownsI && !ownsJ:
		return i, j, ReasonVenueOwner
	case ownsJ && !ownsI:
		return j, i, ReasonVenueOwner
	}

	ri, rj := d.authority.Rank(sources[i]), d.authority.Rank(sources[j])
	switch {
	case ri < rj:
		return i, j, ReasonPriority
	case rj < ri:
		return j, i, ReasonPriority
	default:
		return i, j, ReasonListOrder
	}
}

// ownsVenue reports whether source has a home venue close to either
// event's venue.
func (d *Deduplicator) ownsVenue(source string, a, b *catalogs.Event) bool {
	s := d.authority.Find(source)
	if s == nil || len(s.HomeVenues) == 0 {
		return false
	}
	for _, home := range s.HomeVenues {
		hv := textnorm.Venue(home)
		if hv == "" {
			continue
		}
		for _, e := range []*catalogs.Event{a, b} {
			v := textnorm.Venue(e.VenueName)
			if v != "" && TokenSetRatio(hv, v) >= d.venueThreshold {
				return true
			}
		}
	}
	return false
}

// mergeLabels seeds the winner's label list with its own label and adds
// the loser's labels.
func mergeLabels(winner, loser *catalogs.Event) {
	if len(winner.SourceLabels) == 0 && winner.SourceLabel != "" {
		winner.SourceLabels = []string{winner.SourceLabel}
	}
	winner.SourceLabels = catalogs.AppendUnique(winner.SourceLabels, loser.SourceLabel)
	winner.SourceLabels = catalogs.AppendUnique(winner.SourceLabels, loser.SourceLabels...)
}
