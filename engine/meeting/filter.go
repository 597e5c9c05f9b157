package meeting

import "strings"

// FilterByDateRange keeps meetings whose Date falls within [start, end]
// inclusive on both ends, post-normalisation.
func FilterByDateRange(meetings []Meeting, start, end string) []Meeting {
	out := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m.Date >= start && m.Date <= end {
			out = append(out, m)
		}
	}
	return out
}

// FilterByAttendee keeps meetings that include attendee, compared
// case-insensitively.
func FilterByAttendee(meetings []Meeting, attendee string) []Meeting {
	target := strings.ToLower(attendee)
	out := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		for _, a := range m.Attendees {
			if a == target {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
