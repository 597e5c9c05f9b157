// Package match links meetings to work items (component E). Strategies run
// in a fixed order — custom rules, ID-in-subject, subject similarity,
// attendee/assignee overlap — and the first to fire wins; a meeting that
// matches nothing is reported unmatched rather than forced onto a guess.
package match

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bvtime/reconciler/engine/meeting"
	"github.com/bvtime/reconciler/engine/workitem"
)

// Strategy names recorded on a Match for auditability.
const (
	StrategyIDInSubject  = "id_in_subject"
	StrategyAttendeeOwner = "attendee_owner"
	StrategySimilarity    = "subject_similarity"
	StrategyCustomRule    = "custom_rule"
)

// SimilarityThreshold is the minimum Ratcliff/Obershelp ratio (§4.E) at
// which a subject-similarity match is accepted.
const SimilarityThreshold = 0.6

// Match links one meeting to one work item via the strategy that found it
// (§3: duration_hours is copied from the meeting at match time).
type Match struct {
	MeetingID     string
	WorkItemID    int
	Strategy      string
	Confidence    float64
	DurationHours float64
}

// Rule is a pluggable custom matching rule (§4.E's "custom rule engine"):
// given a meeting and the candidate work items, return the matched ID and
// true, or 0 and false if the rule does not apply.
type Rule func(m meeting.Meeting, candidates []workitem.WorkItem) (int, bool)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`#(\d+)`),
	regexp.MustCompile(`(?i)WI[- ]?(\d+)`),
	regexp.MustCompile(`(?i)Task[- ]?(\d+)`),
	regexp.MustCompile(`\[(\d+)\]`),
	regexp.MustCompile(`(?:^|\s)(\d{3,})`),
}

// Matcher holds the candidate pool and any custom rules, and matches
// meetings against it one at a time.
type Matcher struct {
	candidates []workitem.WorkItem
	rules      []Rule
}

func NewMatcher(candidates []workitem.WorkItem, rules ...Rule) *Matcher {
	return &Matcher{candidates: candidates, rules: rules}
}

// Match runs every strategy in order against m and returns the first hit.
// Cancelled meetings are never matched (§4.E). Custom rules run before
// strategy 1, exactly as §4.E specifies for a plugged-in rule engine.
func (mr *Matcher) Match(m meeting.Meeting) (Match, bool) {
	if m.IsCancelled {
		return Match{}, false
	}
	for _, rule := range mr.rules {
		if id, ok := rule(m, mr.candidates); ok {
			return Match{MeetingID: m.ID, WorkItemID: id, Strategy: StrategyCustomRule, Confidence: 1.0, DurationHours: m.DurationHours}, true
		}
	}
	if id, ok := matchIDInSubject(m.Subject, mr.candidates); ok {
		return Match{MeetingID: m.ID, WorkItemID: id, Strategy: StrategyIDInSubject, Confidence: 1.0, DurationHours: m.DurationHours}, true
	}
	if id, ratio, ok := matchSubjectSimilarity(m.Subject, mr.candidates); ok {
		return Match{MeetingID: m.ID, WorkItemID: id, Strategy: StrategySimilarity, Confidence: ratio, DurationHours: m.DurationHours}, true
	}
	if id, ok := matchAttendeeOwner(m, mr.candidates); ok {
		return Match{MeetingID: m.ID, WorkItemID: id, Strategy: StrategyAttendeeOwner, Confidence: 0.7, DurationHours: m.DurationHours}, true
	}
	return Match{}, false
}

// MatchAll matches every meeting, returning matches and the meetings left
// unmatched in encounter order.
func (mr *Matcher) MatchAll(meetings []meeting.Meeting) (matches []Match, unmatched []meeting.Meeting) {
	for _, m := range meetings {
		if mt, ok := mr.Match(m); ok {
			matches = append(matches, mt)
		} else {
			unmatched = append(unmatched, m)
		}
	}
	return matches, unmatched
}

func matchIDInSubject(subject string, candidates []workitem.WorkItem) (int, bool) {
	for _, re := range idPatterns {
		m := re.FindStringSubmatch(subject)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if hasCandidate(candidates, id) {
			return id, true
		}
	}
	return 0, false
}

func matchAttendeeOwner(m meeting.Meeting, candidates []workitem.WorkItem) (int, bool) {
	attendees := make(map[string]struct{}, len(m.Attendees))
	for _, a := range m.Attendees {
		attendees[strings.ToLower(a)] = struct{}{}
	}
	for _, wi := range candidates {
		if wi.AssignedTo == "" {
			continue
		}
		if _, ok := attendees[strings.ToLower(wi.AssignedTo)]; ok {
			return wi.ID, true
		}
	}
	return 0, false
}

func matchSubjectSimilarity(subject string, candidates []workitem.WorkItem) (int, float64, bool) {
	best, bestRatio := 0, 0.0
	for _, wi := range candidates {
		ratio := SimilarityRatio(subject, wi.Title)
		if ratio > bestRatio {
			best, bestRatio = wi.ID, ratio
		}
	}
	if bestRatio >= SimilarityThreshold {
		return best, bestRatio, true
	}
	return 0, 0, false
}

func hasCandidate(candidates []workitem.WorkItem, id int) bool {
	for _, wi := range candidates {
		if wi.ID == id {
			return true
		}
	}
	return false
}
