package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
logging:
  level: debug
  console: false
scheduler:
  pool_size: 128
journal:
  enabled: true
  interval: 30s
storage:
  driver: file
  path: /tmp/cycles.jsonl
`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Logging.Console == nil || *cfg.Logging.Console {
		t.Error("logging.console should be explicitly false")
	}
	if cfg.Scheduler.PoolSize != 128 {
		t.Errorf("scheduler.pool_size = %d, want 128", cfg.Scheduler.PoolSize)
	}
	if !cfg.Journal.Enabled {
		t.Error("journal.enabled should be true")
	}
	iv, err := cfg.Journal.JournalInterval()
	if err != nil {
		t.Fatalf("JournalInterval: %v", err)
	}
	if iv != 30*time.Second {
		t.Errorf("journal interval = %v, want 30s", iv)
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("storage.driver = %q, want file", cfg.Storage.Driver)
	}
	if got := m.Get(); got != cfg {
		t.Error("Get did not return the committed config")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
logging:
  level: info
`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Logging.LogxConfig().Console {
		t.Error("console should default to true when omitted")
	}
	iv, err := cfg.Journal.JournalInterval()
	if err != nil {
		t.Fatalf("JournalInterval: %v", err)
	}
	if iv != time.Minute {
		t.Errorf("default journal interval = %v, want 1m", iv)
	}
	if cfg.Scheduler.PoolSize != 0 {
		t.Errorf("pool_size = %d, want 0 (scheduler default)", cfg.Scheduler.PoolSize)
	}
}

func TestParseRejectsBadConfig(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
	}{
		{"unknown field", "logging:\n  level: info\nbogus_section: 1\n"},
		{"negative pool", "scheduler:\n  pool_size: -5\n"},
		{"bad duration", "journal:\n  interval: soon\n"},
		{"unknown driver", "storage:\n  driver: etcd\n"},
		{"not yaml", "{{{\n"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.content)
			if _, err := NewManager(path).Parse(); err == nil {
				t.Fatal("Parse accepted an invalid config")
			}
		})
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{"logging":{"level":"warn"},"scheduler":{"pool_size":64}}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Logging.Level != "warn" || cfg.Scheduler.PoolSize != 64 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	sub := m.Subscribe(1)

	want := &Config{}
	m.publish(want)
	select {
	case got := <-sub:
		if got != want {
			t.Fatal("received a different config pointer")
		}
	default:
		t.Fatal("publish did not deliver to the subscriber")
	}

	// A slow subscriber keeps the latest update, not the oldest.
	first, second := &Config{}, &Config{}
	m.publish(first)
	m.publish(second)
	if got := <-sub; got != second {
		t.Fatal("slow subscriber should see the latest update")
	}

	m.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after Unsubscribe")
	}
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	off := false
	oldCfg := &Config{}
	newCfg := &Config{
		Logging:   LoggingConfig{Level: "debug", Console: &off},
		Scheduler: SchedulerConfig{PoolSize: 64},
	}

	changed, _ := SummarizeChange(oldCfg, newCfg)
	if len(changed) != 2 || changed[0] != "logging" || changed[1] != "scheduler" {
		t.Fatalf("changed = %v, want [logging scheduler]", changed)
	}

	if changed, _ := SummarizeChange(newCfg, newCfg); len(changed) != 0 {
		t.Fatalf("identical configs reported changes: %v", changed)
	}

	// Omitted console and explicit true are the same effective value.
	on := true
	a := &Config{}
	b := &Config{Logging: LoggingConfig{Console: &on}}
	if changed, _ := SummarizeChange(a, b); len(changed) != 0 {
		t.Fatalf("console default flagged as a change: %v", changed)
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()
	if _, err := ParseDurationField("x", "10s"); err != nil {
		t.Fatalf("valid duration rejected: %v", err)
	}
	if _, err := ParseDurationField("x", "ten seconds"); err == nil {
		t.Fatal("invalid duration accepted")
	}
	d, err := ParseDurationOrDefault("x", "", 5*time.Second)
	if err != nil || d != 5*time.Second {
		t.Fatalf("ParseDurationOrDefault = %v, %v; want 5s, nil", d, err)
	}
}
