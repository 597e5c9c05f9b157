package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, manualStorePath string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "org: acme\nproject: demo\nmanual_store_path: " + manualStorePath + "\nreport_dir: " + dir + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestManualAddListRemove(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)

	if _, err := runCommand(t, cfgPath, "manual", "add",
		"--work-item", "42", "--hours", "2.5", "--date", "2026-07-30",
		"--description", "standup", "--user", "alice"); err != nil {
		t.Fatalf("manual add error = %v", err)
	}

	out, err := runCommand(t, cfgPath, "manual", "list")
	if err != nil {
		t.Fatalf("manual list error = %v", err)
	}
	if !strings.Contains(out, "standup") || !strings.Contains(out, "42") {
		t.Errorf("manual list output = %q, want entry fields", out)
	}

	var id string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "standup") {
			id = strings.Fields(line)[0]
		}
	}
	if id == "" {
		t.Fatalf("could not find entry ID in output: %q", out)
	}

	if _, err := runCommand(t, cfgPath, "manual", "remove", id); err != nil {
		t.Fatalf("manual remove error = %v", err)
	}

	out, err = runCommand(t, cfgPath, "manual", "list")
	if err != nil {
		t.Fatalf("manual list (after remove) error = %v", err)
	}
	if !strings.Contains(out, "No manual entries") {
		t.Errorf("manual list after remove = %q, want empty", out)
	}
}

func TestManualAdd_RejectsInvalidHours(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)

	_, err := runCommand(t, cfgPath, "manual", "add",
		"--work-item", "1", "--hours", "25", "--date", "2026-07-30",
		"--description", "x", "--user", "bob")
	if err == nil {
		t.Error("expected error for hours=25, got nil")
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)
	csvPath := filepath.Join(t.TempDir(), "entries.csv")

	if _, err := runCommand(t, cfgPath, "manual", "add",
		"--work-item", "7", "--hours", "3", "--date", "2026-07-29",
		"--description", "review", "--user", "carol"); err != nil {
		t.Fatalf("manual add error = %v", err)
	}

	if _, err := runCommand(t, cfgPath, "export", csvPath); err != nil {
		t.Fatalf("export error = %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "review") {
		t.Errorf("exported CSV = %q, want entry", string(data))
	}

	storePath2 := filepath.Join(t.TempDir(), "manual2.json")
	cfgPath2 := writeTestConfig(t, storePath2)
	if _, err := runCommand(t, cfgPath2, "import", csvPath); err != nil {
		t.Fatalf("import error = %v", err)
	}
	out, err := runCommand(t, cfgPath2, "manual", "list")
	if err != nil {
		t.Fatalf("manual list error = %v", err)
	}
	if !strings.Contains(out, "review") {
		t.Errorf("imported list = %q, want entry", out)
	}
}

func TestStatus_ReportsConfigScope(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)

	out, err := runCommand(t, cfgPath, "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "Org: acme") || !strings.Contains(out, "Project: demo") {
		t.Errorf("status output = %q, want org/project", out)
	}
	if !strings.Contains(out, "Scheduler: not running") {
		t.Errorf("status output = %q, want scheduler not running", out)
	}
}

func TestScheduleJobs_NoneConfigured(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)

	out, err := runCommand(t, cfgPath, "schedule", "jobs")
	if err != nil {
		t.Fatalf("schedule jobs error = %v", err)
	}
	if !strings.Contains(out, "daily-sync") {
		t.Errorf("schedule jobs output = %q, want default daily_time job", out)
	}
}

func TestScheduleStop_NoPidFile(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "manual.json")
	cfgPath := writeTestConfig(t, storePath)

	if _, err := runCommand(t, cfgPath, "schedule", "stop"); err == nil {
		t.Error("expected error stopping a non-running scheduler, got nil")
	}
}
