package storage

import (
	"context"

	"github.com/fkjellberg/haproxy/pkg/logx"
)

// Store is the persistence API consumed by the daemon's housekeeping.
type Store interface {
	AppendCycle(ctx context.Context, r CycleRecord) error
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver, err := ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "", "none":
		return nil, nil
	case "file":
		return openFile(cfg, log)
	default: // "sqlite", "sqlite3"
		return openSQLite(cfg, log)
	}
}
