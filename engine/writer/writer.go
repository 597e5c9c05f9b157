// Package writer validates and applies completed-work updates, keeping an
// audit log of every write attempt (component H).
package writer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/workitem"
)

var structValidator = validator.New()

// updateShape carries the struct tags structValidator checks before the
// ratio/permission checks that need live work-item state run.
type updateShape struct {
	WorkItemID int     `validate:"required,gt=0"`
	Hours      float64 `validate:"gte=0,lte=1000"`
}

// maxVarianceThreshold is the default hard-fail ratio (§4.H): hours over
// estimate past this multiple is rejected outright.
const maxVarianceThreshold = 2.0

// warnVarianceRatio is the softer ratio past which validation warns but
// does not fail.
const warnVarianceRatio = 1.5

// Update is one prospective write: set work item id's completed_work to
// hours, with an optional caller comment.
type Update struct {
	WorkItemID int
	Hours      float64
	Comment    string
	Force      bool
}

// Result is the outcome of applying one Update.
type Result struct {
	WorkItemID int
	Updated    bool
	Warnings   []string
	Err        error
}

// BatchResult tallies a batch run (§4.H, §8: successful+failed+skipped=total).
type BatchResult struct {
	Results    []Result
	Successful int
	Failed     int
	Skipped    int
}

// Writer validates and issues completed-work patches, recording an audit
// entry for every attempt.
type Writer struct {
	store   workitem.Store
	dryRun  bool
	project string
	audit   *AuditLog
}

func New(store workitem.Store, dryRun bool, auditCapacity int, project string) *Writer {
	return &Writer{store: store, dryRun: dryRun, project: project, audit: NewAuditLog(auditCapacity)}
}

func (w *Writer) AuditLog() *AuditLog { return w.audit }

// Write applies one update per §4.H's five steps.
func (w *Writer) Write(ctx context.Context, u Update) Result {
	result := Result{WorkItemID: u.WorkItemID}

	item, err := w.store.GetWorkItem(ctx, u.WorkItemID, nil)
	if err != nil {
		result.Err = err
		w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "failed", Hours: u.Hours, Err: err.Error()})
		return result
	}

	if !u.Force {
		if warnings, failErr := w.validate(ctx, *item, u); failErr != nil {
			result.Err = failErr
			w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "rejected", Hours: u.Hours, Err: failErr.Error()})
			return result
		} else {
			result.Warnings = warnings
		}
	}

	if item.Scheduling.Completed == u.Hours {
		result.Updated = false
		w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "no_op", Hours: u.Hours})
		return result
	}

	if w.dryRun {
		result.Updated = false
		w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "dry_run", Hours: u.Hours, DryRun: true})
		return result
	}

	comment := u.Comment
	if comment == "" {
		comment = fmt.Sprintf("completed work updated to %.2f", u.Hours)
	}
	if err := w.store.UpdateCompletedWork(ctx, u.WorkItemID, u.Hours, comment); err != nil {
		result.Err = err
		w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "failed", Hours: u.Hours, Err: err.Error()})
		return result
	}

	result.Updated = true
	w.audit.Append(AuditEntry{WorkItemID: u.WorkItemID, Action: "written", Hours: u.Hours})
	return result
}

// WriteBatch applies updates in order (serial, per §5's audit-ordering
// guarantee); stopOnError aborts remaining updates on the first hard
// failure.
func (w *Writer) WriteBatch(ctx context.Context, updates []Update, stopOnError bool) BatchResult {
	batch := BatchResult{Results: make([]Result, 0, len(updates))}
	for _, u := range updates {
		res := w.Write(ctx, u)
		batch.Results = append(batch.Results, res)
		switch {
		case res.Err != nil:
			batch.Failed++
			if stopOnError {
				return batch
			}
		case !res.Updated:
			batch.Skipped++
		default:
			batch.Successful++
		}
	}
	return batch
}

// validate runs §4.H's hard/soft checks, including step 1's permission
// check. A non-nil error means hard failure; otherwise the returned
// warnings are informational.
func (w *Writer) validate(ctx context.Context, item workitem.WorkItem, u Update) ([]string, error) {
	var warnings []string

	shape := updateShape{WorkItemID: u.WorkItemID, Hours: u.Hours}
	if err := structValidator.Struct(shape); err != nil {
		return nil, core.NewError(err, core.KindOutOfRange, map[string]any{"hours": u.Hours})
	}

	if ok, err := w.store.HasProjectAccess(ctx, w.project); err != nil || !ok {
		details := map[string]any{"project": w.project}
		if err != nil {
			details["cause"] = err.Error()
		}
		return nil, core.NewError(fmt.Errorf("no write access to project %q", w.project), core.KindForbidden, details)
	}

	if item.State == workitem.StateRemoved || item.State == workitem.StateClosed {
		warnings = append(warnings, fmt.Sprintf("work item %d is in terminal-adjacent state %q", item.ID, item.State))
	}

	if item.Scheduling.Estimate > 0 {
		ratio := u.Hours / item.Scheduling.Estimate
		if ratio > maxVarianceThreshold {
			return nil, core.NewError(
				fmt.Errorf("hours %.2f exceed %v x estimate %.2f", u.Hours, maxVarianceThreshold, item.Scheduling.Estimate),
				core.KindWriteRejected, map[string]any{"ratio": ratio},
			)
		}
		if ratio > warnVarianceRatio {
			warnings = append(warnings, fmt.Sprintf("hours %.2f exceed %vx estimate %.2f", u.Hours, warnVarianceRatio, item.Scheduling.Estimate))
		}
	}

	return warnings, nil
}

// AuditEntry is one write attempt (§3).
type AuditEntry struct {
	ID         core.ID
	Timestamp  time.Time
	WorkItemID int
	Action     string
	Hours      float64
	DryRun     bool
	Err        string
}

// AuditLog is the Writer's bounded, in-memory, ordered audit log.
type AuditLog struct {
	mu       sync.Mutex
	capacity int
	entries  []AuditEntry
}

const defaultAuditCapacity = 100

func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		capacity = defaultAuditCapacity
	}
	return &AuditLog{capacity: capacity}
}

func (a *AuditLog) Append(entry AuditEntry) AuditEntry {
	entry.ID = core.MustNewID()
	entry.Timestamp = time.Now().UTC()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	if len(a.entries) > a.capacity {
		a.entries = a.entries[len(a.entries)-a.capacity:]
	}
	return entry
}

func (a *AuditLog) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out
}
