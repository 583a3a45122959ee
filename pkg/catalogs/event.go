package catalogs

import (
	"slices"
	"strings"
	"time"
)

// Match methods, strongest first.
const (
	MethodExactIdentifier = "exact-identifier"
	MethodAlias           = "alias"
	MethodExactNameCity   = "exact-name-city"
	MethodFuzzyNameCity   = "fuzzy-name-city"
	MethodNone            = "none"
)

// Match confidence tiers.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
	ConfidenceNone   = "none"
)

// Match status values.
const (
	StatusMapped       = "mapped"
	StatusNeedsMapping = "needs_mapping"
)

// TagConfidenceManual marks an event whose activity tags were curated by a
// person and must be kept as-is.
const TagConfidenceManual = "manual"

// Event is one occurrence reported by a source. Adapters fill the input
// fields; the pipeline stages fill the rest.
type Event struct {
	EventID     string   `json:"event_id" yaml:"event_id" validate:"required"`
	Title       string   `json:"title" yaml:"title"`
	StartISO    string   `json:"start_iso" yaml:"start_iso" validate:"required"`
	EndISO      string   `json:"end_iso" yaml:"end_iso" validate:"required"`
	Timezone    string   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	VenueName   string   `json:"venue_name,omitempty" yaml:"venue_name,omitempty"`
	VenueCity   string   `json:"venue_city,omitempty" yaml:"venue_city,omitempty"`
	VenuePID    ID       `json:"venue_pid,omitempty" yaml:"venue_pid,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	TicketURL   string   `json:"ticket_url,omitempty" yaml:"ticket_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`

	SourceType     string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
	SourceLabel    string `json:"source_label,omitempty" yaml:"source_label,omitempty"`
	SourceRef      string `json:"source_ref,omitempty" yaml:"source_ref,omitempty"`
	LastVerifiedAt string `json:"last_verified_at,omitempty" yaml:"last_verified_at,omitempty"`

	// Matching
	MatchedAssetIdx *int   `json:"matched_asset_idx" yaml:"matched_asset_idx"`
	MatchMethod     string `json:"match_method,omitempty" yaml:"match_method,omitempty" validate:"omitempty,oneof=exact-identifier alias exact-name-city fuzzy-name-city none"`
	MatchConfidence string `json:"match_confidence,omitempty" yaml:"match_confidence,omitempty" validate:"omitempty,oneof=high medium low none"`
	MatchStatus     string `json:"match_status,omitempty" yaml:"match_status,omitempty" validate:"omitempty,oneof=mapped needs_mapping"`
	IsUnmatched     bool   `json:"is_unmatched" yaml:"is_unmatched"`

	// Classification
	EventCategory   string   `json:"event_category,omitempty" yaml:"event_category,omitempty"`
	EventCategories []string `json:"event_categories,omitempty" yaml:"event_categories,omitempty"`

	// Deduplication
	SourceLabels []string `json:"source_labels,omitempty" yaml:"source_labels,omitempty"`

	// Tagging
	ActivityTags  []string `json:"activity_tags,omitempty" yaml:"activity_tags,omitempty"`
	TagConfidence string   `json:"tag_confidence,omitempty" yaml:"tag_confidence,omitempty"`
	IsFamily      bool     `json:"is_family" yaml:"is_family"`

	start time.Time
	end   time.Time
}

// Start returns the parsed start instant. It is zero until ParseTimes ran.
func (e *Event) Start() time.Time { return e.start }

// End returns the parsed end instant.
func (e *Event) End() time.Time { return e.end }

// Date is the calendar date of the start timestamp in its own offset.
func (e *Event) Date() string {
	if !e.start.IsZero() {
		return e.start.Format(time.DateOnly)
	}
	if len(e.StartISO) >= 10 {
		return e.StartISO[:10]
	}
	return e.StartISO
}

// ManualTags reports whether the event's activity tags are curated.
func (e *Event) ManualTags() bool {
	return strings.EqualFold(strings.TrimSpace(e.TagConfidence), TagConfidenceManual)
}

// HasTag reports whether tag is among the activity tags.
func (e *Event) HasTag(tag string) bool {
	return slices.Contains(e.ActivityTags, tag)
}

// SetMatch records the matcher's verdict. pos < 0 means unmatched.
func (e *Event) SetMatch(pos int, method, confidence string) {
	if pos < 0 {
		e.MatchedAssetIdx = nil
		e.MatchMethod = MethodNone
		e.MatchConfidence = ConfidenceNone
		e.MatchStatus = StatusNeedsMapping
		e.IsUnmatched = true
		return
	}
	p := pos
	e.MatchedAssetIdx = &p
	e.MatchMethod = method
	e.MatchConfidence = confidence
	e.MatchStatus = StatusMapped
	e.IsUnmatched = false
}

// AssetPos returns the matched asset position, if any.
func (e *Event) AssetPos() (int, bool) {
	if e.MatchedAssetIdx == nil {
		return 0, false
	}
	return *e.MatchedAssetIdx, true
}

// Clone returns a deep copy of e.
func (e *Event) Clone() *Event {
	c := *e
	c.Tags = slices.Clone(e.Tags)
	c.EventCategories = slices.Clone(e.EventCategories)
	c.SourceLabels = slices.Clone(e.SourceLabels)
	c.ActivityTags = slices.Clone(e.ActivityTags)
	if e.MatchedAssetIdx != nil {
		p := *e.MatchedAssetIdx
		c.MatchedAssetIdx = &p
	}
	return &c
}

// AppendUnique appends the values of add to list that are not already
// present, keeping order.
func AppendUnique(list []string, add ...string) []string {
	for _, v := range add {
		if v == "" || slices.Contains(list, v) {
			continue
		}
		list = append(list, v)
	}
	return list
}
