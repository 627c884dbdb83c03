package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Sim      SimConfig      `toml:"sim"`
	Field    FieldConfig    `toml:"field"`
	Scripts  ScriptsConfig  `toml:"scripts"`
	Scenario ScenarioConfig `toml:"scenario"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
	ID   int    `toml:"id"`
}

type SimConfig struct {
	TickDuration time.Duration `toml:"tick_duration"` // seconds per cycle
	MaxCycles    uint64        `toml:"max_cycles"`    // 0 = no ceiling
	Realtime     bool          `toml:"realtime"`      // pace with wall clock instead of free-running
}

// FieldConfig holds the goal-line geometry in meters. Defaults follow
// an SPL-sized field: goal lines at ±4.5m, goal mouth 1.5m wide.
type FieldConfig struct {
	HalfLength    float64 `toml:"half_length"`
	HalfWidth     float64 `toml:"half_width"`
	GoalHalfWidth float64 `toml:"goal_half_width"`
}

type ScriptsConfig struct {
	Dir string `toml:"dir"`
}

type ScenarioConfig struct {
	Path string `toml:"path"` // empty = default world (ball at origin, no robots)
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "fieldsim",
			ID:   1,
		},
		Sim: SimConfig{
			TickDuration: 12 * time.Millisecond,
			MaxCycles:    0,
			Realtime:     false,
		},
		Field: FieldConfig{
			HalfLength:    4.5,
			HalfWidth:     3.0,
			GoalHalfWidth: 0.75,
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Sim.TickDuration <= 0 {
		return fmt.Errorf("sim.tick_duration must be positive, got %s", c.Sim.TickDuration)
	}
	if c.Field.HalfLength <= 0 || c.Field.HalfWidth <= 0 || c.Field.GoalHalfWidth <= 0 {
		return fmt.Errorf("field dimensions must be positive")
	}
	return nil
}
