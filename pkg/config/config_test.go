package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if cfg.SyncFrequencyHours != 24 {
		t.Errorf("SyncFrequencyHours = %d, want 24", cfg.SyncFrequencyHours)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("org: acme\nproject: widgets\ndry_run: true\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Org != "acme" || cfg.Project != "widgets" {
		t.Errorf("Org/Project = %q/%q, want acme/widgets", cfg.Org, cfg.Project)
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true")
	}
	// Defaults not present in the file survive.
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestLoad_OverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("org: acme\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, &Config{Org: "override-org"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Org != "override-org" {
		t.Errorf("Org = %q, want override-org", cfg.Org)
	}
}

func TestConfig_Redact(t *testing.T) {
	cfg := Config{DevOpsToken: "secret-token", ClientSecret: "secret-2", ClientID: "abc"}
	m := cfg.Redact()
	if m["devops_token"] != redactedPlaceholder {
		t.Errorf("devops_token = %v, want redacted", m["devops_token"])
	}
	if m["client_secret"] != redactedPlaceholder {
		t.Errorf("client_secret = %v, want redacted", m["client_secret"])
	}
	if m["client_id"] != "abc" {
		t.Errorf("client_id = %v, want abc (not sensitive)", m["client_id"])
	}
}

func TestConfig_RedactEmptyStaysEmpty(t *testing.T) {
	cfg := Config{}
	m := cfg.Redact()
	if m["devops_token"] != "" {
		t.Errorf("devops_token = %v, want empty string for unset token", m["devops_token"])
	}
}

func TestConfig_EffectiveSyncInterval(t *testing.T) {
	cfg := Config{SyncFrequencyHours: 6}
	d, err := cfg.EffectiveSyncInterval()
	if err != nil {
		t.Fatalf("EffectiveSyncInterval() error = %v", err)
	}
	if d.Hours() != 6 {
		t.Errorf("EffectiveSyncInterval() = %v, want 6h", d)
	}
}

func TestConfig_EffectiveSyncIntervalFallsBackToDailyTime(t *testing.T) {
	cfg := Config{DailyTime: "90 minutes"}
	d, err := cfg.EffectiveSyncInterval()
	if err != nil {
		t.Fatalf("EffectiveSyncInterval() error = %v", err)
	}
	if d.Minutes() != 90 {
		t.Errorf("EffectiveSyncInterval() = %v, want 90m", d)
	}
}
