package workitem

// PatchOp is one json-patch+json operation as the provider expects
// (§6: `PATCH .../workitems/{id}` with an ordered list of {op, path, value}).
type PatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

const (
	completedWorkPath = "/fields/Microsoft.VSTS.Scheduling.CompletedWork"
	historyPath        = "/fields/System.History"
)

// BuildCompletedWorkPatch builds the ordered patch for
// update_completed_work: a single "add" op on the completed-work field,
// plus an optional "add" op appending comment to the history field.
func BuildCompletedWorkPatch(hours float64, comment string) []PatchOp {
	ops := []PatchOp{
		{Op: "add", Path: completedWorkPath, Value: hours},
	}
	if comment != "" {
		ops = append(ops, PatchOp{Op: "add", Path: historyPath, Value: comment})
	}
	return ops
}
