package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fkjellberg/haproxy/internal/config"
	"github.com/fkjellberg/haproxy/internal/sched"
	"github.com/fkjellberg/haproxy/internal/storage"
	"github.com/fkjellberg/haproxy/pkg/logx"
)

// heartbeatTicks is the period of the internal heartbeat task, which cycles
// through the wait queue so the core is exercised even on an idle daemon.
const heartbeatTicks uint32 = 1000

// housekeeping runs the daemon's periodic jobs (snapshot logging, journal
// appends) on a cron runner, outside the scheduling goroutine. Jobs only
// touch the atomic snapshot and the thread-safe store.
type housekeeping struct {
	app *App
	c   *cron.Cron
}

func newHousekeeping(a *App, cfg *config.Config) (*housekeeping, error) {
	hk := &housekeeping{app: a, c: cron.New()}

	if _, err := hk.c.AddFunc("@every 30s", hk.logStats); err != nil {
		return nil, fmt.Errorf("stats schedule: %w", err)
	}

	if cfg.Journal.Enabled && a.store != nil {
		ivl, err := cfg.Journal.JournalInterval()
		if err != nil {
			return nil, err
		}
		spec := fmt.Sprintf("@every %s", ivl)
		if _, err := hk.c.AddFunc(spec, hk.appendJournal); err != nil {
			return nil, fmt.Errorf("journal schedule: %w", err)
		}
	}
	return hk, nil
}

func (hk *housekeeping) start() { hk.c.Start() }

func (hk *housekeeping) stop() { <-hk.c.Stop().Done() }

func (hk *housekeeping) logStats() {
	s := hk.app.Snapshot()
	hk.app.log.Info("scheduler stats",
		logx.Int("tasks", s.Tasks),
		logx.Int("run_queue", s.RunQueueCur),
		logx.Int("wait_queue", s.WaitQueue),
		logx.Int("niced", s.Niced),
		logx.Uint64("processed", s.Processed),
	)
}

func (hk *housekeeping) appendJournal() {
	s := hk.app.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := hk.app.store.AppendCycle(ctx, storage.CycleRecord{
		At:         time.Now(),
		Tasks:      s.Tasks,
		RunQueue:   s.RunQueueCur,
		WaitQueue:  s.WaitQueue,
		Niced:      s.Niced,
		Admissions: s.Admissions,
		Cycles:     s.Cycles,
		Processed:  s.Processed,
	})
	if err != nil {
		hk.app.log.Warn("journal append failed", logx.Err(err))
	}
}

// spawnHeartbeat creates the task that re-arms itself every heartbeatTicks.
func (a *App) spawnHeartbeat() error {
	if _, err := a.Spawn(a.heartbeat, 0); err != nil {
		return fmt.Errorf("heartbeat task: %w", err)
	}
	return nil
}

func (a *App) heartbeat(t *sched.Task) *sched.Task {
	s := a.sch.Snapshot()
	a.log.Trace("heartbeat",
		logx.Uint64("calls", t.Calls),
		logx.Int("run_queue", s.RunQueue),
		logx.Int("wait_queue", s.WaitQueue),
	)
	t.Expire = sched.TickAdd(a.clock.Now(), heartbeatTicks)
	return t
}
