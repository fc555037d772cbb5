package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/fkjellberg/haproxy/internal/sched"
)

// maxIdle caps how long the loop sleeps without a deadline so a wake that
// somehow bypassed the mailbox can never stall the daemon forever.
const maxIdle = time.Minute

// Run drives the scheduler until ctx is cancelled. Each iteration applies
// queued cross-goroutine wakes, sweeps expired timers, executes one bounded
// run-queue cycle and then idles until the next deadline or wake.
func (a *App) Run(ctx context.Context) error {
	go a.watchConfig(ctx)

	a.hk.start()
	defer a.hk.stop()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	a.log.Info("scheduler loop started")

	timer := time.NewTimer(maxIdle)
	defer timer.Stop()

	for {
		a.drainMailbox()

		next := a.sch.WakeExpired()
		a.sch.RunCycle()
		a.snap.Store(a.sch.Snapshot())

		if ctx.Err() != nil {
			a.log.Info("scheduler loop stopped")
			return nil
		}

		// Runnable work left over (budget exhausted): go again without
		// idling, but stay responsive to cancellation above.
		if a.sch.Snapshot().RunQueue > 0 {
			continue
		}

		idle := maxIdle
		if next != sched.Eternity {
			if d := sched.UntilTick(a.clock.Now(), next); d > 0 {
				if d < idle {
					idle = d
				}
			} else {
				// Deadline already due; sweep again immediately.
				continue
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idle)

		select {
		case <-ctx.Done():
			a.log.Info("scheduler loop stopped")
			return nil
		case w := <-a.mailbox:
			a.sch.Wakeup(w.task, w.reason)
		case <-timer.C:
		}
	}
}

func (a *App) drainMailbox() {
	for {
		select {
		case w := <-a.mailbox:
			a.sch.Wakeup(w.task, w.reason)
		default:
			return
		}
	}
}
