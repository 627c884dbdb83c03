package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fieldsim.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[sim]
tick_duration = 1000000000
max_cycles = 2000

[field]
half_length = 5.0
half_width = 3.5
goal_half_width = 0.8
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sim.TickDuration != time.Second {
		t.Fatalf("tick = %s, want 1s", cfg.Sim.TickDuration)
	}
	if cfg.Sim.MaxCycles != 2000 {
		t.Fatalf("max_cycles = %d, want 2000", cfg.Sim.MaxCycles)
	}
	if cfg.Field.HalfLength != 5.0 {
		t.Fatalf("half_length = %v, want 5.0", cfg.Field.HalfLength)
	}
	// Untouched sections keep defaults.
	if cfg.Scripts.Dir != "scripts" {
		t.Fatalf("scripts dir = %q, want default", cfg.Scripts.Dir)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %q, want default", cfg.Logging.Level)
	}
}

func TestLoadRejectsNonPositiveTick(t *testing.T) {
	path := writeConfig(t, `
[sim]
tick_duration = 0
`)
	if _, err := Load(path); err == nil {
		t.Fatal("zero tick_duration accepted")
	}
}

func TestDefaultsAreSane(t *testing.T) {
	cfg := Defaults()
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Sim.TickDuration != 12*time.Millisecond {
		t.Fatalf("default tick = %s", cfg.Sim.TickDuration)
	}
}
