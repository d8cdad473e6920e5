// Package ecsconfig loads the runtime's tunables from a TOML file, the same
// shape and library the pack's game server uses for its own config.
package ecsconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/forgecs/ecs/ecslog"
)

// Config is the top-level runtime configuration: everything a host process
// needs to construct a World, a Registry and a Logger.
type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
	Profiling ProfilingConfig `toml:"profiling"`
}

// SchedulerConfig tunes Registry construction and RunParallelJob defaults.
type SchedulerConfig struct {
	// RefreshWorkers sizes the ObserverManager's refresh pool. 0 defaults
	// to runtime.NumCPU().
	RefreshWorkers int `toml:"refresh_workers"`
	// TickInterval is the host loop's target frame period; the Registry
	// itself is not clocked, so this is advisory to the host's own ticker.
	TickInterval time.Duration `toml:"tick_interval"`
	// DefaultJobPeriod is used by hosts that don't hardcode a period for
	// RunParallelJob background jobs.
	DefaultJobPeriod time.Duration `toml:"default_job_period"`
}

// LoggingConfig selects the ecslog level/format.
type LoggingConfig struct {
	Level  ecslog.Level  `toml:"level"`
	Format ecslog.Format `toml:"format"`
}

// ProfilingConfig gates the profiling package's whole-run pkg/profile
// scope. Disabled by default; hosts that want a trace enable it and pick
// where the output goes.
type ProfilingConfig struct {
	Enabled bool   `toml:"enabled"`
	Kind    string `toml:"kind"`
	Dir     string `toml:"dir"`
}

// Load reads and parses path, applying Defaults for anything the file
// leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ecsconfig: read %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ecsconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the configuration a host gets with no file present.
func Defaults() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			RefreshWorkers:   0,
			TickInterval:     16 * time.Millisecond,
			DefaultJobPeriod: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  ecslog.LevelInfo,
			Format: ecslog.FormatConsole,
		},
		Profiling: ProfilingConfig{
			Enabled: false,
			Kind:    "cpu",
			Dir:     ".",
		},
	}
}
