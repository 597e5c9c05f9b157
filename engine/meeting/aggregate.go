package meeting

import (
	"time"

	"github.com/bvtime/reconciler/engine/core"
)

// Summary is the batch-level rollup of a set of meetings.
type Summary struct {
	Total       int
	Active      int
	Cancelled   int
	Online      int
	TotalHours  float64
	AvgDuration float64
}

// active filters out cancelled meetings, the rule every aggregation in this
// package follows.
func active(meetings []Meeting) []Meeting {
	out := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if !m.IsCancelled {
			out = append(out, m)
		}
	}
	return out
}

// ByDay groups active meetings by their local calendar date.
func ByDay(meetings []Meeting) map[string][]Meeting {
	out := map[string][]Meeting{}
	for _, m := range active(meetings) {
		out[m.Date] = append(out[m.Date], m)
	}
	return out
}

// ByWeek groups active meetings by ISO year-week (YYYY-Www), using loc to
// recompute the week key from Start (Date alone is not enough to cross
// year boundaries correctly).
func ByWeek(meetings []Meeting, loc *time.Location) map[string][]Meeting {
	out := map[string][]Meeting{}
	for _, m := range active(meetings) {
		key := core.ISOWeekKey(m.Start, loc)
		out[key] = append(out[key], m)
	}
	return out
}

// ByUser groups active meetings by attendee email; a meeting contributes to
// every attendee's bucket.
func ByUser(meetings []Meeting) map[string][]Meeting {
	out := map[string][]Meeting{}
	for _, m := range active(meetings) {
		for _, a := range m.Attendees {
			out[a] = append(out[a], m)
		}
	}
	return out
}

// BuildSummary computes the batch statistics over meetings (§4.D).
func BuildSummary(meetings []Meeting) Summary {
	s := Summary{Total: len(meetings)}
	var hours float64
	for _, m := range meetings {
		if m.IsCancelled {
			s.Cancelled++
			continue
		}
		s.Active++
		hours += m.DurationHours
		if m.IsOnline {
			s.Online++
		}
	}
	s.TotalHours = hours
	if s.Active > 0 {
		s.AvgDuration = hours / float64(s.Active)
	}
	return s
}
