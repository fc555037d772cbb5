package config

import (
	"sort"
	"strings"

	"github.com/fkjellberg/haproxy/pkg/logx"
)

// SummarizeChange returns the list of changed sections between two
// configurations plus structured attributes describing the new values,
// suitable for one reload log line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		derefBool(oldCfg.Logging.Console, true) != derefBool(newCfg.Logging.Console, true) ||
		oldCfg.Logging.File != newCfg.Logging.File {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", derefBool(newCfg.Logging.Console, true)),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Scheduler != newCfg.Scheduler {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Int("scheduler.pool_size", newCfg.Scheduler.PoolSize),
		)
	}

	if oldCfg.Journal != newCfg.Journal {
		changed = append(changed, "journal")
		attrs = append(attrs,
			logx.Bool("journal.enabled", newCfg.Journal.Enabled),
			logx.String("journal.interval", strings.TrimSpace(newCfg.Journal.Interval)),
		)
	}

	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(newCfg.Storage.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(newCfg.Storage.Path) != ""),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

func derefBool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
