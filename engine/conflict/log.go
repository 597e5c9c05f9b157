package conflict

import (
	"sync"
	"time"

	"github.com/bvtime/reconciler/engine/core"
)

// DefaultLogCapacity bounds the in-memory conflict log (§3: default 100).
const DefaultLogCapacity = 100

// LogEntry is one resolution attempt appended to the conflict log.
type LogEntry struct {
	ID         core.ID
	Timestamp  time.Time
	WorkItemID int
	Kinds      []Kind
	Strategy   Strategy
	Action     string
	Resolved   bool
	Current    float64
	Proposed   float64
	FinalValue *float64
}

// Log is the bounded, ordered, process-scoped conflict log (§3). Entries
// appear in input order within a batch; once full, the oldest entry is
// dropped to admit the newest.
type Log struct {
	mu       sync.Mutex
	capacity int
	entries  []LogEntry
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{capacity: capacity}
}

// Append records one resolution attempt, evicting the oldest entry if the
// log is at capacity.
func (l *Log) Append(workItemID int, conflicts []Conflict, current, proposed float64, res Resolution) LogEntry {
	kinds := make([]Kind, len(conflicts))
	for i, c := range conflicts {
		kinds[i] = c.Kind
	}
	entry := LogEntry{
		ID:         core.MustNewID(),
		Timestamp:  time.Now().UTC(),
		WorkItemID: workItemID,
		Kinds:      kinds,
		Strategy:   res.Strategy,
		Action:     res.ActionTaken,
		Resolved:   res.Resolved,
		Current:    current,
		Proposed:   proposed,
		FinalValue: res.FinalValue,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	return entry
}

// Entries returns a snapshot of the log in append order.
func (l *Log) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
