package config

// sensitiveKeys lists the config fields that must never appear unredacted
// in a dumped/logged configuration, grounded on the teacher's secret
// redaction contract (pkg/config/sensitive_test.go).
var sensitiveKeys = map[string]bool{
	"devops_token":  true,
	"client_secret": true,
}

const redactedPlaceholder = "***REDACTED***"

// Redact returns a map[string]any representation of c with every sensitive
// value replaced, suitable for dumping or logging a configuration.
func (c Config) Redact() map[string]any {
	m := map[string]any{
		"org":                  c.Org,
		"project":              c.Project,
		"devops_token":         redactIf("devops_token", c.DevOpsToken),
		"client_id":            c.ClientID,
		"client_secret":        redactIf("client_secret", c.ClientSecret),
		"tenant_id":            c.TenantID,
		"timezone":             c.Timezone,
		"sync_frequency_hours": c.SyncFrequencyHours,
		"daily_time":           c.DailyTime,
		"dry_run":              c.DryRun,
		"log_level":            c.LogLevel,
		"report_dir":           c.ReportDir,
		"manual_store_path":    c.ManualStorePath,
	}
	return m
}

func redactIf(key, value string) string {
	if value == "" {
		return ""
	}
	if sensitiveKeys[key] {
		return redactedPlaceholder
	}
	return value
}
