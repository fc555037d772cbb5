package config

import (
	"fmt"
	"time"

	"github.com/fkjellberg/haproxy/internal/sched"
	"github.com/fkjellberg/haproxy/internal/storage"
	"github.com/fkjellberg/haproxy/pkg/logx"
)

// Config is the daemon configuration. YAML and JSON are both accepted; YAML
// is converted to JSON first so one strict decoder covers both formats.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Journal   JournalConfig   `json:"journal,omitempty"`
	Storage   StorageConfig   `json:"storage,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console *bool      `json:"console,omitempty"` // pointer so "omitted" defaults to true
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// SchedulerConfig sizes the task scheduler.
type SchedulerConfig struct {
	// PoolSize caps live task records. 0 selects the built-in default.
	PoolSize int `json:"pool_size,omitempty"`
}

// JournalConfig controls the periodic cycle-statistics journal.
type JournalConfig struct {
	Enabled bool `json:"enabled,omitempty"`
	// Interval between journal records; default "1m".
	Interval string `json:"interval,omitempty"`
}

// StorageConfig selects the journal backend.
//
// Driver values: "", "none" (disabled), "file" (JSONL), "sqlite".
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

// Validate rejects configurations the daemon cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Scheduler.PoolSize < 0 {
		return fmt.Errorf("scheduler.pool_size must be >= 0")
	}
	if _, err := ParseDurationField("journal.interval", cfg.Journal.Interval); err != nil {
		return err
	}
	if _, err := ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout); err != nil {
		return err
	}
	if _, err := storage.ParseDriver(cfg.Storage.Driver); err != nil {
		return err
	}
	return nil
}

// LogxConfig maps the logging section onto pkg/logx.
func (c LoggingConfig) LogxConfig() logx.Config {
	console := true
	if c.Console != nil {
		console = *c.Console
	}
	return logx.Config{
		Level:   c.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
	}
}

// SchedConfig maps the scheduler section onto internal/sched.
func (c SchedulerConfig) SchedConfig() sched.Config {
	return sched.Config{PoolSize: c.PoolSize}
}

// StorageConfig maps the storage section onto internal/storage.
func (c StorageConfig) StorageConfig() (storage.Config, error) {
	busy, err := ParseDurationField("storage.busy_timeout", c.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      c.Driver,
		Path:        c.Path,
		BusyTimeout: busy,
	}, nil
}

// JournalInterval returns the effective journal period.
func (c JournalConfig) JournalInterval() (time.Duration, error) {
	return ParseDurationOrDefault("journal.interval", c.Interval, time.Minute)
}
