package catalogs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/culturalmap/eventmap/internal/validation"
	"github.com/culturalmap/eventmap/pkg/errors"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// ParseTimestamp parses an ISO-8601 timestamp that carries a UTC offset.
// Date-only and offset-less values are rejected.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 timestamp with offset", s)
}

// ParseTimes parses the start and end timestamps and checks end > start.
func (e *Event) ParseTimes() error {
	start, err := ParseTimestamp(e.StartISO)
	if err != nil {
		return errors.NewValidationError("start_iso", e.StartISO, err.Error())
	}
	end, err := ParseTimestamp(e.EndISO)
	if err != nil {
		return errors.NewValidationError("end_iso", e.EndISO, err.Error())
	}
	if !end.After(start) {
		return errors.NewValidationError("end_iso", e.EndISO, "must be after start_iso")
	}
	e.start, e.end = start, end
	return nil
}

// Prepare validates a batch before it enters the pipeline: required
// fields, timestamps, and event id uniqueness. The returned error names the
// offending record.
func Prepare(source string, events []*Event) error {
	seen := make(map[string]int, len(events))
	for i, e := range events {
		if e == nil {
			return errors.NewRecordError(source, i, "", "", "record is null")
		}
		e.EventID = strings.TrimSpace(e.EventID)
		if err := validation.Struct(e); err != nil {
			return recordError(source, i, e.EventID, err)
		}
		if err := e.ParseTimes(); err != nil {
			return recordError(source, i, e.EventID, err)
		}
		if first, dup := seen[e.EventID]; dup {
			re := errors.NewRecordError(source, i, e.EventID, "event_id", fmt.Sprintf("duplicate of record %d", first))
			re.Err = errors.ErrDuplicateEvent
			return re
		}
		seen[e.EventID] = i
	}
	return nil
}

func recordError(source string, index int, id string, err error) error {
	re := &errors.RecordError{Source: source, Index: index, EventID: id, Message: err.Error(), Err: err}
	if ve, ok := err.(*errors.ValidationError); ok {
		re.Field = ve.Field
		re.Message = ve.Message
	}
	return re
}

// SortEvents orders events by start instant, then event id.
func SortEvents(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.EventID < b.EventID
	})
}
