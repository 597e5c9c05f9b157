package writer

import (
	"context"
	"errors"
	"testing"

	"github.com/bvtime/reconciler/engine/core"
	"github.com/bvtime/reconciler/engine/workitem"
)

type fakeStore struct {
	items      map[int]*workitem.WorkItem
	patched    []int
	getErr     error
	updateErr  error
	denyAccess bool
}

func newFakeStore(items ...*workitem.WorkItem) *fakeStore {
	m := map[int]*workitem.WorkItem{}
	for _, it := range items {
		m[it.ID] = it
	}
	return &fakeStore{items: m}
}

func (f *fakeStore) GetWorkItem(_ context.Context, id int, _ []string) (*workitem.WorkItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *item
	return &copied, nil
}

func (f *fakeStore) UpdateWorkItem(_ context.Context, id int, ops []workitem.PatchOp) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, op := range ops {
		if op.Path == "/fields/Microsoft.VSTS.Scheduling.CompletedWork" {
			f.items[id].Scheduling.Completed = op.Value.(float64)
		}
	}
	f.patched = append(f.patched, id)
	return nil
}

func (f *fakeStore) UpdateCompletedWork(ctx context.Context, id int, hours float64, comment string) error {
	return f.UpdateWorkItem(ctx, id, workitem.BuildCompletedWorkPatch(hours, comment))
}

func (f *fakeStore) QueryWorkItems(_ context.Context, _ workitem.Predicate, _ string, _ int) ([]int, error) {
	return nil, nil
}

func (f *fakeStore) GetSchedulingFields(_ context.Context, id int) (workitem.SchedulingFields, error) {
	item, ok := f.items[id]
	if !ok {
		return workitem.SchedulingFields{}, errors.New("not found")
	}
	return item.Scheduling, nil
}

func (f *fakeStore) HasProjectAccess(_ context.Context, _ string) (bool, error) {
	return !f.denyAccess, nil
}

// E1: happy path writes once, one audit entry.
func TestWrite_HappyPath(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 0}})
	w := New(store, false, 10, "proj")

	res := w.Write(context.Background(), Update{WorkItemID: 1, Hours: 1})
	if res.Err != nil {
		t.Fatalf("Write() error = %v", res.Err)
	}
	if !res.Updated {
		t.Error("expected Updated = true")
	}
	if len(w.AuditLog().Entries()) != 1 {
		t.Errorf("len(audit) = %d, want 1", len(w.AuditLog().Entries()))
	}
}

func TestWrite_NoOp_SameHours(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 3}})
	w := New(store, false, 10, "proj")

	res := w.Write(context.Background(), Update{WorkItemID: 1, Hours: 3})
	if res.Err != nil || res.Updated {
		t.Errorf("Write() = %+v, want no-op success", res)
	}
	if len(store.patched) != 0 {
		t.Error("expected no HTTP patch on no-op")
	}
}

// E4: dry-run issues no write, audit entry records dry_run=true.
func TestWrite_DryRun(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 0}})
	w := New(store, true, 10, "proj")

	res := w.Write(context.Background(), Update{WorkItemID: 1, Hours: 5})
	if res.Err != nil || res.Updated {
		t.Errorf("Write() = %+v, want success with Updated=false", res)
	}
	if len(store.patched) != 0 {
		t.Error("expected no HTTP patch in dry-run mode")
	}
	entries := w.AuditLog().Entries()
	if len(entries) != 1 || !entries[0].DryRun {
		t.Errorf("audit = %+v, want one dry_run entry", entries)
	}
}

// §4.H ratio check: 10h against an estimate of 2 exceeds the 2.0 variance
// ratio limit, which is a hard failure that never reaches the store's patch
// call.
func TestWrite_RejectsOverbudget(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 2, Completed: 0}})
	w := New(store, false, 10, "proj")

	res := w.Write(context.Background(), Update{WorkItemID: 1, Hours: 10})
	if res.Err == nil {
		t.Fatal("expected hard validation failure")
	}
	if len(store.patched) != 0 {
		t.Error("expected no patch on rejected write")
	}
}

// §4.H step 1's permission check: denied project access is a hard
// failure, and the store's patch call must never be reached.
func TestWrite_RejectsPermissionDenied(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 0}})
	store.denyAccess = true
	w := New(store, false, 10, "proj")

	res := w.Write(context.Background(), Update{WorkItemID: 1, Hours: 1})
	if res.Err == nil {
		t.Fatal("expected permission failure")
	}
	werr, ok := res.Err.(*core.Error)
	if !ok || !werr.Is(core.KindForbidden) {
		t.Errorf("Err = %+v, want KindForbidden", res.Err)
	}
	if len(store.patched) != 0 {
		t.Error("expected no patch on permission-denied write")
	}
}

func TestWriteBatch_Totals(t *testing.T) {
	store := newFakeStore(
		&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 0}},
		&workitem.WorkItem{ID: 2, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 8, Completed: 2}},
	)
	w := New(store, false, 10, "proj")

	batch := w.WriteBatch(context.Background(), []Update{
		{WorkItemID: 1, Hours: 3},
		{WorkItemID: 2, Hours: 2},
		{WorkItemID: 1, Hours: 100},
	}, false)

	if batch.Successful+batch.Failed+batch.Skipped != len(batch.Results) {
		t.Errorf("invariant violated: successful+failed+skipped != total (%d+%d+%d != %d)",
			batch.Successful, batch.Failed, batch.Skipped, len(batch.Results))
	}
	if batch.Successful != 1 || batch.Skipped != 1 || batch.Failed != 1 {
		t.Errorf("batch = %+v, want 1 successful, 1 skipped, 1 failed", batch)
	}
}

func TestWriteBatch_StopOnError(t *testing.T) {
	store := newFakeStore(&workitem.WorkItem{ID: 1, State: "Active", Scheduling: workitem.SchedulingFields{Estimate: 2, Completed: 0}})
	w := New(store, false, 10, "proj")

	batch := w.WriteBatch(context.Background(), []Update{
		{WorkItemID: 1, Hours: 100},
		{WorkItemID: 1, Hours: 1},
	}, true)

	if len(batch.Results) != 1 {
		t.Errorf("len(Results) = %d, want 1 (stopped after first failure)", len(batch.Results))
	}
}
