// Package reconcile wires components A-H into the six-stage pipeline
// (component I, the Orchestrator): fetch events, normalise, fetch work
// items, match, compare, resolve-and-write.
package reconcile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bvtime/reconciler/engine/calendar"
	"github.com/bvtime/reconciler/engine/compare"
	"github.com/bvtime/reconciler/engine/conflict"
	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/match"
	"github.com/bvtime/reconciler/engine/meeting"
	"github.com/bvtime/reconciler/engine/workitem"
	"github.com/bvtime/reconciler/engine/writer"
	"github.com/bvtime/reconciler/pkg/logger"
)

// maxConcurrentRequests bounds per-user fetch and per-item read fan-out
// (§5: suggested ≤ 8 concurrent requests per run).
const maxConcurrentRequests = 8

// Params is one invocation's scope: a half-open date range, an optional
// set of users, and an optional project/predicate override.
type Params struct {
	Start          time.Time
	End            time.Time
	Users          []string
	DefaultUser    string
	Project        string
	Strategy       conflict.Strategy
	ConflictLogCap int
	AuditLogCap    int
	StopOnError    bool
}

// Orchestrator drives components B-H per run. It owns no process-scoped
// state itself; the logs it creates belong to the run that created them.
type Orchestrator struct {
	calendar   calendar.Source
	store      workitem.Store
	loc        *time.Location
	thresholds compare.Thresholds
	dryRun     bool
}

func New(cal calendar.Source, store workitem.Store, loc *time.Location, thresholds compare.Thresholds, dryRun bool) *Orchestrator {
	return &Orchestrator{calendar: cal, store: store, loc: loc, thresholds: thresholds, dryRun: dryRun}
}

// Result is the structured execution record a single run returns.
type Result struct {
	Meetings    []meeting.Meeting
	Matches     []match.Match
	Unmatched   []meeting.Meeting
	Comparisons []compare.Discrepancy
	BatchResult writer.BatchResult
	// ConflictSkips counts resolutions that never reached the Writer
	// because the resolver itself chose skip/fail (e.g. work_item_locked,
	// manual_update) — counted as skipped, never as failed, per §8/E5.
	ConflictSkips int
	ConflictLog   []conflict.LogEntry
	AuditLog      []writer.AuditEntry
	Errors        []string
	Success       bool
}

// Run executes all six stages. A transport/auth failure in stage 1 is
// fatal; every later stage failure is recorded into Errors and the run
// continues with whatever input it has (possibly empty).
func (o *Orchestrator) Run(ctx context.Context, p Params) Result {
	result := Result{}
	log := logger.FromContext(ctx)

	events, err := o.fetchEvents(ctx, p)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Success = false
		return result
	}

	result.Meetings = meeting.NormalizeAll(events, o.loc, func(_ calendar.RawEvent, err error) {
		log.Warn("skipping malformed event", "error", err.Error())
	})

	ids, err := o.store.QueryWorkItems(ctx, workitem.ExcludeTerminalStates(p.Project), p.Project, 0)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		ids = nil
	}

	candidates := o.fetchWorkItems(ctx, ids, &result)

	matcher := match.NewMatcher(candidates)
	result.Matches, result.Unmatched = matcher.MatchAll(activeMeetings(result.Meetings))

	comparisons := o.buildComparisons(result.Matches, candidates)

	lastKnownByID := map[int]float64{}
	for _, wi := range candidates {
		lastKnownByID[wi.ID] = wi.Scheduling.Completed
	}

	conflictLog := conflict.NewLog(p.ConflictLogCap)
	updates := o.resolveUpdates(ctx, comparisons, lastKnownByID, p.Project, p.Strategy, conflictLog, &result)
	result.ConflictLog = conflictLog.Entries()

	wr := writer.New(o.store, o.dryRun, p.AuditLogCap, p.Project)
	result.BatchResult = wr.WriteBatch(ctx, updates, p.StopOnError)
	result.AuditLog = wr.AuditLog().Entries()

	result.Comparisons = compare.TopN(comparisons, len(comparisons))
	// §7: success iff no fatal stage error occurred; the all-skipped case
	// still counts as success since stage 1 already returned early on any
	// fatal transport/auth failure.
	result.Success = true
	return result
}

func activeMeetings(meetings []meeting.Meeting) []meeting.Meeting {
	out := make([]meeting.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if !m.IsCancelled {
			out = append(out, m)
		}
	}
	return out
}

// fetchEvents fetches calendar events for every configured user, fanned
// out with a bounded worker pool (§5). A single user's failure is fatal
// for the run, mirroring stage 1's "fatal on transport/auth failure" rule.
func (o *Orchestrator) fetchEvents(ctx context.Context, p Params) ([]calendar.RawEvent, error) {
	users := p.Users
	if len(users) == 0 {
		users = []string{p.DefaultUser}
	}

	sem := semaphore.NewWeighted(maxConcurrentRequests)
	group, gctx := errgroup.WithContext(ctx)
	results := make([][]calendar.RawEvent, len(users))

	for i, user := range users {
		i, user := i, user
		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return core.NewError(err, core.KindCancelled, nil)
			}
			defer sem.Release(1)

			events, err := o.calendar.GetCalendarEvents(gctx, user, p.Start, p.End, 50, true)
			if err != nil {
				return err
			}
			results[i] = events
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []calendar.RawEvent
	for _, events := range results {
		all = append(all, events...)
	}
	return all, nil
}

// fetchWorkItems reads full work items for each candidate ID, fanned out
// with the same bounded pool. Per-item failures are recorded but do not
// abort the batch.
func (o *Orchestrator) fetchWorkItems(ctx context.Context, ids []int, result *Result) []workitem.WorkItem {
	sem := semaphore.NewWeighted(maxConcurrentRequests)
	group, gctx := errgroup.WithContext(ctx)
	items := make([]*workitem.WorkItem, len(ids))
	errs := make([]error, len(ids))

	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			item, err := o.store.GetWorkItem(gctx, id, nil)
			if err != nil {
				errs[i] = err
				return nil
			}
			items[i] = item
			return nil
		})
	}
	_ = group.Wait()
	for _, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	out := make([]workitem.WorkItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// buildComparisons groups matches by work-item ID, sums meeting durations,
// and pairs the total with the candidate's estimate (§4.I stage 5). Order
// follows first appearance in matches so results stay deterministic.
func (o *Orchestrator) buildComparisons(matches []match.Match, candidates []workitem.WorkItem) []compare.Discrepancy {
	estimateByID := map[int]float64{}
	for _, wi := range candidates {
		estimateByID[wi.ID] = wi.Scheduling.Estimate
	}

	sumByID := map[int]float64{}
	var order []int
	seen := map[int]bool{}
	for _, m := range matches {
		sumByID[m.WorkItemID] += m.DurationHours
		if !seen[m.WorkItemID] {
			seen[m.WorkItemID] = true
			order = append(order, m.WorkItemID)
		}
	}

	out := make([]compare.Discrepancy, 0, len(order))
	for _, id := range order {
		c := compare.CompareTimes(sumByID[id], estimateByID[id], o.thresholds)
		out = append(out, compare.Discrepancy{WorkItemID: id, Comparison: c})
	}
	return out
}

// resolveUpdates detects and resolves a conflict per comparison, logging
// every attempt, and returns only the updates whose resolution allows
// proceeding. Per-item permission is checked by re-reading the work item
// (the canonical check per SPEC_FULL.md §9); HasProjectAccess is only a
// cheap org-level pre-filter the orchestrator does not repeat here.
// lastKnownByID carries each candidate's completed_work as read during
// stage 3 (fetch candidate work items); a mismatch against the value
// re-read here means something else wrote to the item mid-run, which is
// exactly §4.G's manual_update conflict.
func (o *Orchestrator) resolveUpdates(
	ctx context.Context,
	discrepancies []compare.Discrepancy,
	lastKnownByID map[int]float64,
	project string,
	strategy conflict.Strategy,
	log *conflict.Log,
	result *Result,
) []writer.Update {
	var updates []writer.Update

	for _, d := range discrepancies {
		item, err := o.store.GetWorkItem(ctx, d.WorkItemID, nil)
		permOK := err == nil
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		var lastKnown *float64
		if v, ok := lastKnownByID[d.WorkItemID]; ok {
			lastKnown = &v
		}

		candidate := conflict.Candidate{
			WorkItemID:     d.WorkItemID,
			ProposedHours:  d.Comparison.ActualHours,
			LastKnownHours: lastKnown,
			CurrentHours:   item.Scheduling.Completed,
			Estimate:       item.Scheduling.Estimate,
			State:          item.State,
			PermissionOK:   permOK,
		}

		conflicts := conflict.Detect(candidate)
		effectiveStrategy := strategy
		if effectiveStrategy == "" {
			effectiveStrategy = conflict.RecommendedStrategy(conflicts, candidate.ProposedHours, candidate.CurrentHours)
		}

		resolution := conflict.Resolve(candidate, conflicts, effectiveStrategy)
		log.Append(d.WorkItemID, conflicts, candidate.CurrentHours, candidate.ProposedHours, resolution)

		if effectiveStrategy == conflict.StrategySkip || !resolution.Resolved {
			result.ConflictSkips++
			continue
		}
		if resolution.FinalValue != nil {
			updates = append(updates, writer.Update{WorkItemID: d.WorkItemID, Hours: *resolution.FinalValue})
		}
	}

	return updates
}
