package workitem

import (
	"testing"
)

func TestPredicate_ExcludeTerminalStates_Render(t *testing.T) {
	p := ExcludeTerminalStates("Contoso")
	got := p.Render()
	for _, state := range []string{StateRemoved, StateClosed, StateDeleted} {
		if !contains(got, state) {
			t.Errorf("Render() = %q, want to mention state %q", got, state)
		}
	}
}

func TestPredicate_Render_AssignedTo(t *testing.T) {
	p := Predicate{AssignedTo: "o'brien@contoso.com"}
	got := p.Render()
	if !contains(got, "o''brien@contoso.com") {
		t.Errorf("Render() = %q, want escaped quote", got)
	}
}

func TestBuildCompletedWorkPatch_NoComment(t *testing.T) {
	ops := BuildCompletedWorkPatch(3.5, "")
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}
	if ops[0].Path != completedWorkPath || ops[0].Value != 3.5 {
		t.Errorf("ops[0] = %+v", ops[0])
	}
}

func TestBuildCompletedWorkPatch_WithComment(t *testing.T) {
	ops := BuildCompletedWorkPatch(3.5, "synced from calendar")
	if len(ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(ops))
	}
	if ops[1].Path != historyPath || ops[1].Value != "synced from calendar" {
		t.Errorf("ops[1] = %+v", ops[1])
	}
}

func TestWireWorkItem_ToWorkItem(t *testing.T) {
	var w wireWorkItem
	w.ID = 42
	w.Fields.Title = "Fix bug"
	w.Fields.State = "Active"
	w.Fields.WorkType = "Bug"
	w.Fields.Estimate = 8
	w.Fields.Completed = 2

	got := w.toWorkItem()
	if got.ID != 42 || got.Title != "Fix bug" || got.AssignedTo != "" {
		t.Errorf("toWorkItem() = %+v", got)
	}
	if got.Scheduling.Estimate != 8 || got.Scheduling.Completed != 2 {
		t.Errorf("Scheduling = %+v", got.Scheduling)
	}
}

func TestIsTerminal(t *testing.T) {
	cases := map[string]bool{
		"Removed": true,
		"Closed":  true,
		"Deleted": true,
		"Active":  false,
		"New":     false,
	}
	for state, want := range cases {
		if got := IsTerminal(state); got != want {
			t.Errorf("IsTerminal(%q) = %v, want %v", state, got, want)
		}
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
