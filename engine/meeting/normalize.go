package meeting

import (
	"time"

	"github.com/bvtime/reconciler/engine/calendar"
	"github.com/bvtime/reconciler/engine/core"
)

// Normalize parses one raw calendar event into a Meeting in loc. Events
// without both start and end are rejected (returns an error); callers
// should skip-and-log per §7 rather than fail the whole stage.
func Normalize(e calendar.RawEvent, loc *time.Location) (Meeting, error) {
	if e.Start == nil || e.End == nil || e.Start.DateTime == "" || e.End.DateTime == "" {
		return Meeting{}, core.NewError(nil, core.KindMissingField, map[string]any{"id": e.ID})
	}

	start, err := parseInstant(e.Start.DateTime, loc)
	if err != nil {
		return Meeting{}, core.NewError(err, core.KindInvalidInput, map[string]any{"id": e.ID, "field": "start"})
	}
	end, err := parseInstant(e.End.DateTime, loc)
	if err != nil {
		return Meeting{}, core.NewError(err, core.KindInvalidInput, map[string]any{"id": e.ID, "field": "end"})
	}
	if !end.After(start) {
		return Meeting{}, core.NewError(nil, core.KindInvalidInput, map[string]any{"id": e.ID, "reason": "end <= start"})
	}

	organizer := ""
	if e.Organizer != nil {
		organizer = lower(e.Organizer.EmailAddress.Address)
	}

	m := Meeting{
		ID:            e.ID,
		Subject:       e.Subject,
		Start:         start,
		End:           end,
		DurationHours: end.Sub(start).Hours(),
		Date:          core.LocalDate(start, loc),
		Attendees:     calendar.GetMeetingAttendees(e),
		Organizer:     organizer,
		IsCancelled:   e.IsCancelled,
		IsOnline:      e.IsOnlineMeeting,
	}
	return m, nil
}

// parseInstant parses an ISO-8601 timestamp. A trailing Z is UTC; a naive
// timestamp (no offset, no Z) is assumed UTC, then converted to loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	// Naive datetime: assume UTC.
	const naiveLayout = "2006-01-02T15:04:05"
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// NormalizeAll parses every raw event, skipping (not failing) malformed
// ones. onSkip, if non-nil, is invoked once per skipped event for logging.
func NormalizeAll(events []calendar.RawEvent, loc *time.Location, onSkip func(calendar.RawEvent, error)) []Meeting {
	out := make([]Meeting, 0, len(events))
	for _, e := range events {
		m, err := Normalize(e, loc)
		if err != nil {
			if onSkip != nil {
				onSkip(e, err)
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
