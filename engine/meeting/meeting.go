// Package meeting normalises raw calendar events into the engine's Meeting
// record and aggregates them by day, week, and attendee.
package meeting

import "time"

// Meeting is the normalised calendar event the rest of the pipeline
// operates on. Once produced by Normalize it is immutable.
type Meeting struct {
	ID             string
	Subject        string
	Start          time.Time
	End            time.Time
	DurationHours  float64
	Date           string // local calendar date of Start, YYYY-MM-DD
	Attendees      []string
	Organizer      string
	IsCancelled    bool
	IsOnline       bool
}

// Valid reports the §3 invariant end > start (and therefore
// DurationHours > 0).
func (m Meeting) Valid() bool {
	return m.End.After(m.Start)
}
