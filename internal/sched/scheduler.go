package sched

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/fkjellberg/haproxy/pkg/logx"
)

// Config sizes a scheduler instance.
type Config struct {
	// PoolSize caps the number of live task records. Zero selects
	// DefaultPoolSize.
	PoolSize int
}

const DefaultPoolSize = 4096

// Scheduler owns the run queue, the wait queue and every counter attached
// to them. All methods must be called from a single scheduling goroutine;
// cross-goroutine wakes go through a handoff owned by the embedding loop.
type Scheduler struct {
	log   logx.Logger
	clock Clock
	pool  *pool

	rq *keyTree // runnable tasks, keyed by admission counter + nice bias
	wq *keyTree // waiting tasks, keyed by expiration tick

	rqTicks uint32 // admission counter, wraps silently

	taskCount    int
	runQueueSize int
	nicedTasks   int

	// reporting copies, refreshed at the top of each cycle
	runQueueCur int
	taskCur     int

	admissions uint64
	cycles     uint64
	processed  uint64

	warn *rate.Limiter // throttles contract-violation warnings
}

// New creates a scheduler with zeroed queues and counters. The only failure
// mode is the task pool; no task operation is valid before New succeeds.
func New(cfg Config, clock Clock, log logx.Logger) (*Scheduler, error) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	if clock == nil {
		clock = NewWallClock()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	p, err := newPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("task pool: %w", err)
	}
	return &Scheduler{
		log:   log,
		clock: clock,
		pool:  p,
		rq:    newKeyTree(),
		wq:    newKeyTree(),
		warn:  rate.NewLimiter(rate.Every(time.Second), 10),
	}, nil
}

// NewTask takes a record from the pool. The returned task is idle; wake or
// schedule it to give it life.
func (s *Scheduler) NewTask(process func(*Task) *Task, nice int) (*Task, error) {
	t, err := s.pool.alloc()
	if err != nil {
		return nil, err
	}
	if nice < MinNice {
		nice = MinNice
	} else if nice > MaxNice {
		nice = MaxNice
	}
	t.Process = process
	t.Nice = nice
	s.taskCount++
	return t, nil
}

// FreeTask returns an idle record to the pool. Freeing a task that is still
// queued or running is a caller bug and is refused.
func (s *Scheduler) FreeTask(t *Task) error {
	if t.Queued() || t.Running() {
		return ErrTaskBusy
	}
	s.taskCount--
	s.pool.release(t)
	return nil
}

// Wakeup records reason and makes t runnable. It is the safe entry point:
// a wake against a running task is deferred through the pending flags, and
// a task already in the run queue only accumulates the reason.
func (s *Scheduler) Wakeup(t *Task, reason Flags) {
	t.pending |= reason & wokenAny
	if t.Running() {
		// Applied right after the execution batch finishes with t.
		return
	}
	if t.inRQ {
		return
	}
	if t.inWQ {
		s.unlinkWQ(t)
	}
	s.admit(t)
}

// admit inserts t into the run queue at a position derived from the
// admission counter and the task's nice value. The task must not be in
// either queue and must not be running; unsure callers use Wakeup.
func (s *Scheduler) admit(t *Task) *Task {
	s.runQueueSize++
	s.rqTicks++
	s.admissions++
	key := s.rqTicks

	if t.Nice != 0 {
		s.nicedTasks++
		// The bias is in 32ths of the run queue size, so priority
		// scales with contention: on a deep queue nice -1024 keys the
		// task a full 32*depth earlier, +1024 the same amount later.
		nice := t.Nice
		if nice < 0 {
			nice = -nice
		}
		offset := uint32(s.runQueueSize) * uint32(nice) / 32
		if t.Nice > 0 {
			key += offset
		} else {
			key -= offset
		}
	}

	// Wake reasons recorded while the task was unrunnable become its
	// visible state for this admission.
	t.state = t.pending
	t.pending = 0
	t.rq = s.rq.insert(key, t)
	t.inRQ = true
	return t
}

// Schedule places t in the wait queue at its expiration tick. Tasks without
// a deadline are left alone. A task already waiting is only moved when its
// new deadline is earlier; later deadlines are fixed up lazily by the sweep,
// which is much cheaper than re-sorting on every timeout refresh.
func (s *Scheduler) Schedule(t *Task) {
	if !tickIsSet(t.Expire) {
		return
	}
	if t.inWQ && !tickIsLT(t.Expire, t.wq.key) {
		return
	}
	s.queueTask(t)
}

// Unschedule removes t from the wait queue. Clearing Expire as well cancels
// any timer-driven wake for good.
func (s *Scheduler) Unschedule(t *Task) {
	if t.inWQ {
		s.unlinkWQ(t)
	}
}

func (s *Scheduler) queueTask(t *Task) {
	if t.inWQ {
		s.unlinkWQ(t)
	}
	if now := s.clock.Now(); tickIsLT(t.Expire, now) && s.warn.Allow() {
		// Accepted anyway: the sweep will find it as already expired.
		s.log.Warn("task queued with expiration in the past",
			logx.Uint32("expire", t.Expire), logx.Uint32("now", now))
	}
	t.wq = s.wq.insert(t.Expire, t)
	t.inWQ = true
}

func (s *Scheduler) unlinkRQ(t *Task) {
	s.rq.remove(t.rq)
	t.inRQ = false
	s.runQueueSize--
	if t.Nice != 0 {
		s.nicedTasks--
	}
}

func (s *Scheduler) unlinkWQ(t *Task) {
	s.wq.remove(t.wq)
	t.inWQ = false
}
