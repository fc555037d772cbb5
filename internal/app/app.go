package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/fkjellberg/haproxy/internal/config"
	"github.com/fkjellberg/haproxy/internal/sched"
	"github.com/fkjellberg/haproxy/internal/storage"
	"github.com/fkjellberg/haproxy/pkg/logx"
)

// App wires the scheduler core to its collaborators: configuration,
// logging, the cycle journal, housekeeping schedules and the outer event
// loop. The scheduler itself is confined to the loop goroutine; everything
// crossing that boundary goes through the wake mailbox or atomic snapshots.
type App struct {
	cfgm *config.Manager

	logs *logx.Service
	log  logx.Logger

	clock *sched.WallClock
	sch   *sched.Scheduler
	store storage.Store

	hk *housekeeping

	// mailbox carries wake requests from other goroutines into the
	// scheduling loop (the core itself is single-goroutine).
	mailbox chan wakeRequest

	// snap is the latest scheduler snapshot, refreshed by the loop and
	// read by housekeeping jobs on their own goroutine.
	snap atomic.Value // stores sched.Snapshot
}

type wakeRequest struct {
	task   *sched.Task
	reason sched.Flags
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.New(cfg.Logging.LogxConfig())
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	storeCfg, err := cfg.Storage.StorageConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storeCfg, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	clock := sched.NewWallClock()
	sch, err := sched.New(cfg.Scheduler.SchedConfig(), clock, log.With(logx.String("comp", "sched")))
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	a := &App{
		cfgm:    cfgm,
		logs:    logs,
		log:     log,
		clock:   clock,
		sch:     sch,
		store:   store,
		mailbox: make(chan wakeRequest, 1024),
	}
	a.snap.Store(sched.Snapshot{})

	hk, err := newHousekeeping(a, cfg)
	if err != nil {
		return nil, err
	}
	a.hk = hk

	if err := a.spawnHeartbeat(); err != nil {
		return nil, err
	}
	return a, nil
}

// Scheduler exposes the core for callers running on the loop goroutine
// (task callbacks, pre-Run setup).
func (a *App) Scheduler() *sched.Scheduler { return a.sch }

// Clock exposes the tick source shared with the scheduler.
func (a *App) Clock() *sched.WallClock { return a.clock }

// Spawn allocates a task and gives it its first wake. Like Scheduler, it
// belongs on the loop goroutine (or before Run starts).
func (a *App) Spawn(process func(*sched.Task) *sched.Task, nice int) (*sched.Task, error) {
	t, err := a.sch.NewTask(process, nice)
	if err != nil {
		return nil, err
	}
	a.sch.Wakeup(t, sched.WokenInit)
	return t, nil
}

// Release frees an idle task. Same goroutine contract as Spawn.
func (a *App) Release(t *sched.Task) error {
	return a.sch.FreeTask(t)
}

// Wake requests a wake from any goroutine. The request is applied by the
// scheduling loop before its next cycle. Blocks only when the mailbox is
// full, which bounds the backlog instead of dropping wakes.
func (a *App) Wake(t *sched.Task, reason sched.Flags) {
	a.mailbox <- wakeRequest{task: t, reason: reason}
}

// Snapshot returns the counters captured at the latest loop iteration.
// Safe from any goroutine.
func (a *App) Snapshot() sched.Snapshot {
	s, _ := a.snap.Load().(sched.Snapshot)
	return s
}

// watchConfig follows the config file and hot-applies what can be applied
// at runtime. Scheduler pool size and storage driver changes need a
// restart; only logging is re-applied live.
func (a *App) watchConfig(ctx context.Context) {
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	go func() {
		if err := a.cfgm.Watch(ctx); err != nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	prev := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok || cfg == nil {
				return
			}
			changed, attrs := config.SummarizeChange(prev, cfg)
			prev = cfg
			if len(changed) == 0 {
				continue
			}
			a.logs.Apply(cfg.Logging.LogxConfig())
			attrs = append(attrs, logx.Strs("sections", changed))
			a.log.Info("config change applied", attrs...)
		}
	}
}

func (a *App) Close() error {
	var first error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			first = err
		}
	}
	if err := a.logs.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
