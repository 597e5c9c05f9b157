package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bvtime/reconciler/engine/compare"
	"github.com/bvtime/reconciler/engine/reconcile"
)

func TestFilename(t *testing.T) {
	got := Filename(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), "json")
	if got != "reconcile-report-2026-03-05.json" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestWriteJSON_InfinitySentinel(t *testing.T) {
	result := reconcile.Result{
		Success: true,
		Comparisons: []compare.Discrepancy{
			{WorkItemID: 1, Comparison: compare.CompareTimes(5, 0, compare.DefaultThresholds())},
		},
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, result, time.Now(), compare.DeviationNone); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"Infinity"`) {
		t.Errorf("output = %s, want Infinity sentinel", buf.String())
	}
	if !strings.Contains(buf.String(), `"stats"`) {
		t.Errorf("output = %s, want a stats block", buf.String())
	}
}

func TestWriteCSV_Header(t *testing.T) {
	result := reconcile.Result{
		Comparisons: []compare.Discrepancy{
			{WorkItemID: 7, Comparison: compare.CompareTimes(2, 8, compare.DefaultThresholds())},
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result, compare.DeviationNone); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.Contains(buf.String(), "work_item_id") {
		t.Errorf("output = %s, want header row", buf.String())
	}
}

func TestWriteCSV_FiltersByMinLevel(t *testing.T) {
	thresholds := compare.DefaultThresholds()
	result := reconcile.Result{
		Comparisons: []compare.Discrepancy{
			{WorkItemID: 1, Comparison: compare.CompareTimes(10, 10, thresholds)}, // none
			{WorkItemID: 2, Comparison: compare.CompareTimes(30, 10, thresholds)}, // high
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result, compare.DeviationLight); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\n1,") {
		t.Errorf("output = %s, want work item 1 (none) excluded", out)
	}
	if !strings.Contains(out, "2,") {
		t.Errorf("output = %s, want work item 2 (high) included", out)
	}
}
