package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures the journal backend.
//
// Driver values:
//   - "file": dependency-free JSONL backend
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// ParseDriver normalizes and validates a driver name.
func ParseDriver(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	switch d {
	case "", "none", "file", "sqlite", "sqlite3":
		return d, nil
	default:
		return "", fmt.Errorf("unknown storage driver: %q", s)
	}
}

// CycleRecord is one periodic sample of the scheduler counters.
// Keep it compact and schema-stable.
type CycleRecord struct {
	At         time.Time `json:"at"`
	Tasks      int       `json:"tasks"`
	RunQueue   int       `json:"run_queue"`
	WaitQueue  int       `json:"wait_queue"`
	Niced      int       `json:"niced"`
	Admissions uint64    `json:"admissions"`
	Cycles     uint64    `json:"cycles"`
	Processed  uint64    `json:"processed"`
}
