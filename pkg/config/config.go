// Package config loads and layers the engine's configuration: a YAML file,
// then RECONCILE_-prefixed environment variables, then explicit
// programmatic overrides — the provider-layering idiom implied by the
// teacher's koanf-based stack (koanf/v2 + providers/env/v2 + providers/structs).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/bvtime/reconciler/engine/core"
)

// Config enumerates every recognised option from §6.
type Config struct {
	Org     string `koanf:"org"`
	Project string `koanf:"project"`

	DevOpsToken  string `koanf:"devops_token"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	TenantID     string `koanf:"tenant_id"`

	Timezone string `koanf:"timezone"`

	SyncFrequencyHours int    `koanf:"sync_frequency_hours"`
	DailyTime          string `koanf:"daily_time"`

	DryRun bool `koanf:"dry_run"`

	LogLevel string `koanf:"log_level"`

	ReportDir       string `koanf:"report_dir"`
	ManualStorePath string `koanf:"manual_store_path"`
}

// Defaults mirrors what an operator gets with no file and no environment
// variables set.
func Defaults() Config {
	return Config{
		Timezone:           "UTC",
		SyncFrequencyHours: 24,
		DailyTime:          "09:00",
		LogLevel:           "info",
		ReportDir:          "./reports",
		ManualStorePath:    "./manual_entries.json",
	}
}

// Load layers a YAML file (optional), environment variables prefixed
// RECONCILE_, and overrides (applied last, highest precedence) on top of
// Defaults().
func Load(path string, overrides *Config) (*Config, error) {
	k := koanf.New(".")

	defaults := Defaults()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"stage": "defaults"})
	}

	if path != "" {
		raw, err := readYAML(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawMapProvider{raw}, nil); err != nil {
			return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"stage": "file", "path": path})
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: "RECONCILE_",
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(key, value)
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"stage": "env"})
	}

	if overrides != nil {
		if err := k.Load(structs.Provider(*overrides, "koanf"), nil); err != nil {
			return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"stage": "overrides"})
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"stage": "unmarshal"})
	}
	return &cfg, nil
}

// envKeyTransform turns RECONCILE_DEVOPS_TOKEN into devops_token, the
// config struct's koanf tag shape.
func envKeyTransform(key, value string) (string, any) {
	return strings.ToLower(strings.TrimPrefix(key, "RECONCILE_")), value
}

func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(err, core.KindIOError, map[string]any{"path": path})
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, core.NewError(err, core.KindInvalidInput, map[string]any{"path": path})
	}
	return out, nil
}

// rawMapProvider adapts an already-decoded map[string]any into a koanf
// provider, since the YAML file is parsed with gopkg.in/yaml.v3 directly
// (koanf's own YAML parser targets a different provider shape).
type rawMapProvider struct{ m map[string]any }

func (p rawMapProvider) ReadBytes() ([]byte, error) { return nil, fmt.Errorf("not supported") }
func (p rawMapProvider) Read() (map[string]any, error) {
	if p.m == nil {
		return map[string]any{}, nil
	}
	return p.m, nil
}

// EffectiveSyncInterval resolves sync_frequency_hours/daily_time into a
// single duration, accepting either an integer-hours config or a
// human-readable override string (recovered from original_source's
// scheduling config, see SPEC_FULL.md §3).
func (c Config) EffectiveSyncInterval() (time.Duration, error) {
	if c.SyncFrequencyHours > 0 {
		return time.Duration(c.SyncFrequencyHours) * time.Hour, nil
	}
	return core.ParseHumanDuration(c.DailyTime)
}
