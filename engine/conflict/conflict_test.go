package conflict

import "testing"

func TestDetect_NoConflicts(t *testing.T) {
	c := Candidate{WorkItemID: 1, ProposedHours: 4, CurrentHours: 0, Estimate: 8, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if len(conflicts) != 0 {
		t.Errorf("Detect() = %+v, want none", conflicts)
	}
}

// E2: manual-update conflict forces skip.
func TestDetect_ManualUpdate(t *testing.T) {
	last := 3.0
	c := Candidate{WorkItemID: 1, ProposedHours: 5, LastKnownHours: &last, CurrentHours: 7, Estimate: 8, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if len(conflicts) != 1 || conflicts[0].Kind != KindManualUpdate {
		t.Fatalf("Detect() = %+v, want manual_update", conflicts)
	}
	if RecommendedStrategy(conflicts, c.ProposedHours, c.CurrentHours) != StrategySkip {
		t.Error("expected recommended strategy skip")
	}
}

func TestDetect_ValueMismatch(t *testing.T) {
	c := Candidate{WorkItemID: 1, ProposedHours: 5, CurrentHours: 2, Estimate: 8, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if len(conflicts) != 1 || conflicts[0].Kind != KindValueMismatch {
		t.Fatalf("Detect() = %+v, want value_mismatch", conflicts)
	}
}

func TestDetect_ValueMismatch_RecommendsOverrideWhenProposedHigher(t *testing.T) {
	c := Candidate{WorkItemID: 1, ProposedHours: 5, CurrentHours: 2, Estimate: 8, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if got := RecommendedStrategy(conflicts, c.ProposedHours, c.CurrentHours); got != StrategyOverride {
		t.Errorf("RecommendedStrategy() = %v, want override", got)
	}
}

func TestDetect_ValueMismatch_RecommendsAddWhenProposedLower(t *testing.T) {
	c := Candidate{WorkItemID: 1, ProposedHours: 1, CurrentHours: 2, Estimate: 8, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if got := RecommendedStrategy(conflicts, c.ProposedHours, c.CurrentHours); got != StrategyAdd {
		t.Errorf("RecommendedStrategy() = %v, want add", got)
	}
}

// E3: overbudget ratio 2.75 (11/4) forces skip.
func TestDetect_Overbudget(t *testing.T) {
	c := Candidate{WorkItemID: 1, ProposedHours: 11, CurrentHours: 0, Estimate: 4, State: "Active", PermissionOK: true}
	conflicts := Detect(c)
	if len(conflicts) != 1 || conflicts[0].Kind != KindOverbudget {
		t.Fatalf("Detect() = %+v, want overbudget", conflicts)
	}
	if conflicts[0].Ratio != 2.75 {
		t.Errorf("Ratio = %v, want 2.75", conflicts[0].Ratio)
	}
	if RecommendedStrategy(conflicts, c.ProposedHours, c.CurrentHours) != StrategySkip {
		t.Error("expected recommended strategy skip")
	}
}

func TestDetect_WorkItemLocked(t *testing.T) {
	c := Candidate{WorkItemID: 1, State: "Removed", PermissionOK: true}
	conflicts := Detect(c)
	if len(conflicts) != 1 || conflicts[0].Kind != KindWorkItemLocked {
		t.Fatalf("Detect() = %+v, want work_item_locked", conflicts)
	}
	if CanProceed(conflicts) {
		t.Error("invariant violated: work_item_locked must forbid proceeding")
	}
}

func TestDetect_PermissionDenied(t *testing.T) {
	c := Candidate{WorkItemID: 1, State: "Active", PermissionOK: false}
	conflicts := Detect(c)
	if len(conflicts) != 1 || conflicts[0].Kind != KindPermissionDenied {
		t.Fatalf("Detect() = %+v, want permission_denied", conflicts)
	}
	if CanProceed(conflicts) {
		t.Error("invariant violated: permission_denied must forbid proceeding")
	}
}

// Invariant: can_proceed=false implies resolved=false regardless of
// requested strategy.
func TestResolve_CannotProceedForcesUnresolved(t *testing.T) {
	c := Candidate{WorkItemID: 1, State: "Removed", PermissionOK: true}
	conflicts := Detect(c)
	res := Resolve(c, conflicts, StrategyOverride)
	if res.Resolved {
		t.Error("invariant violated: resolved must be false when can_proceed is false")
	}
}

func TestResolve_Override(t *testing.T) {
	c := Candidate{ProposedHours: 6, CurrentHours: 2}
	res := Resolve(c, nil, StrategyOverride)
	if !res.Resolved || res.FinalValue == nil || *res.FinalValue != 6 {
		t.Errorf("Resolve() = %+v, want final_value 6", res)
	}
}

func TestResolve_Add(t *testing.T) {
	c := Candidate{ProposedHours: 6, CurrentHours: 2}
	res := Resolve(c, nil, StrategyAdd)
	if !res.Resolved || res.FinalValue == nil || *res.FinalValue != 8 {
		t.Errorf("Resolve() = %+v, want final_value 8", res)
	}
}

func TestResolve_Skip(t *testing.T) {
	c := Candidate{ProposedHours: 6, CurrentHours: 2}
	res := Resolve(c, nil, StrategySkip)
	if !res.Resolved || res.FinalValue == nil || *res.FinalValue != 2 {
		t.Errorf("Resolve() = %+v, want final_value 2 (no write)", res)
	}
}

func TestLog_AppendOrderAndCapacity(t *testing.T) {
	log := NewLog(2)
	log.Append(1, nil, 0, 1, Resolution{Strategy: StrategyOverride, Resolved: true})
	log.Append(2, nil, 0, 2, Resolution{Strategy: StrategyOverride, Resolved: true})
	log.Append(3, nil, 0, 3, Resolution{Strategy: StrategyOverride, Resolved: true})

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].WorkItemID != 2 || entries[1].WorkItemID != 3 {
		t.Errorf("entries = %+v, want oldest evicted, order preserved", entries)
	}
}
