package logger

import (
	"errors"
	"testing"
	"time"
)

func TestNewFields(t *testing.T) {
	fields := NewFields()
	if len(fields) != 0 {
		t.Errorf("NewFields() should be empty, got %d fields", len(fields))
	}
}

func TestFields_Component(t *testing.T) {
	fields := NewFields().Component("workitem")
	if fields["component"] != "workitem" {
		t.Errorf("Component() = %v, want workitem", fields["component"])
	}
}

func TestFields_Resource(t *testing.T) {
	fields := NewFields().Resource("work_item", "42")
	if fields["resource_type"] != "work_item" || fields["resource_name"] != "42" {
		t.Errorf("Resource() = %v", fields)
	}
}

func TestFields_ResourceWithoutName(t *testing.T) {
	fields := NewFields().Resource("work_item", "")
	if _, exists := fields["resource_name"]; exists {
		t.Error("Resource() should not set resource_name when empty")
	}
}

func TestFields_Duration(t *testing.T) {
	fields := NewFields().Duration(150 * time.Millisecond)
	if fields["duration_ms"] != int64(150) {
		t.Errorf("Duration() = %v, want 150", fields["duration_ms"])
	}
}

func TestFields_Error(t *testing.T) {
	fields := NewFields().Error(errors.New("boom"))
	if fields["error"] != "boom" {
		t.Errorf("Error() = %v, want boom", fields["error"])
	}
}

func TestFields_ErrorNil(t *testing.T) {
	fields := NewFields().Error(nil)
	if _, exists := fields["error"]; exists {
		t.Error("Error(nil) should not set error field")
	}
}

func TestFields_Chained(t *testing.T) {
	fields := NewFields().
		Component("workitem").
		Operation("patch").
		Resource("work_item", "42").
		Count(1)

	want := map[string]any{
		"component":     "workitem",
		"operation":     "patch",
		"resource_type": "work_item",
		"resource_name": "42",
		"count":         1,
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("chained: %s = %v, want %v", k, fields[k], v)
		}
	}
}

func TestWorkItemFields(t *testing.T) {
	fields := WorkItemFields("patch", 42)
	if fields["component"] != "workitem" || fields["operation"] != "patch" || fields["resource_name"] != "42" {
		t.Errorf("WorkItemFields() = %v", fields)
	}
}

func TestFields_KV(t *testing.T) {
	fields := NewFields().Component("workitem")
	kv := fields.KV()
	if len(kv) != 2 {
		t.Fatalf("KV() length = %d, want 2", len(kv))
	}
}
