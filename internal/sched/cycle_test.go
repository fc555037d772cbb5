package sched

import (
	"math"
	"testing"

	"github.com/fkjellberg/haproxy/pkg/logx"
)

func TestRunCycleEmptyQueue(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, NewManualClock(0))
	s.RunCycle()
	if got := s.Snapshot().Cycles; got != 0 {
		t.Fatalf("cycles = %d, want 0 for an empty run queue", got)
	}
}

func TestRunCycleBudgetBounded(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, NewManualClock(0))

	for i := 0; i < 300; i++ {
		task, err := s.NewTask(func(t *Task) *Task { return t }, 0)
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		s.Wakeup(task, WokenOther)
	}

	s.RunCycle()
	snap := s.Snapshot()
	if snap.Processed != 200 {
		t.Fatalf("processed = %d, want the 200 budget", snap.Processed)
	}
	if snap.RunQueue != 100 {
		t.Fatalf("run queue = %d, want the 100 leftovers", snap.RunQueue)
	}

	s.RunCycle()
	if got := s.Snapshot().Processed; got != 300 {
		t.Fatalf("processed after second cycle = %d, want 300", got)
	}
}

func TestRunCycleBudgetQuarteredWhenNiced(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, NewManualClock(0))

	for i := 0; i < 300; i++ {
		nice := 0
		if i == 0 {
			nice = 512
		}
		task, err := s.NewTask(func(t *Task) *Task { return t }, nice)
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		s.Wakeup(task, WokenOther)
	}

	s.RunCycle()
	if got := s.Snapshot().Processed; got != 50 {
		t.Fatalf("processed = %d, want a quarter of the 200 budget", got)
	}
}

func TestRunCycleOrderAcrossCounterWrap(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, NewManualClock(0))
	s.rqTicks = math.MaxUint32 - 3 // next admissions straddle the wrap

	var order []int
	for i := 1; i <= 8; i++ {
		task, err := s.NewTask(keep(&order, i), 0)
		if err != nil {
			t.Fatalf("NewTask: %v", err)
		}
		s.Wakeup(task, WokenOther)
	}

	s.RunCycle()
	if len(order) != 8 {
		t.Fatalf("ran %d tasks, want 8", len(order))
	}
	for i, id := range order {
		if id != i+1 {
			t.Fatalf("order = %v, want admission order preserved across the wrap", order)
		}
	}
}

func TestRunCycleWakeOfBatchMateIsDeferred(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, NewManualClock(0))

	var mate *Task
	mateCalls := 0
	mate, err := s.NewTask(func(t *Task) *Task {
		mateCalls++
		return t
	}, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	waker, err := s.NewTask(func(t *Task) *Task {
		// The mate is already detached in the same batch; this wake
		// must land in its pending flags, not in the run queue.
		s.Wakeup(mate, WokenMsg)
		return t
	}, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	s.Wakeup(waker, WokenOther)
	s.Wakeup(mate, WokenOther)

	s.RunCycle()
	if mateCalls != 1 {
		t.Fatalf("mate ran %d times in the first cycle, want 1", mateCalls)
	}
	if !mate.inRQ {
		t.Fatal("deferred wake did not re-admit the mate")
	}
	if !mate.Woken(WokenMsg) {
		t.Fatalf("re-admitted state = %#x, want WokenMsg", mate.State())
	}

	s.RunCycle()
	if mateCalls != 2 {
		t.Fatalf("mate ran %d times total, want 2", mateCalls)
	}
}

func TestRunCycleDeferredWakeOverridesSelfSchedule(t *testing.T) {
	t.Parallel()
	clock := NewManualClock(0)
	s := newTestScheduler(t, clock)

	calls := 0
	task, err := s.NewTask(func(t *Task) *Task {
		calls++
		if calls == 1 {
			// Park on a deadline, then wake: the wake must pull the
			// task straight back into the run queue, never leaving it
			// in both.
			t.Expire = TickAdd(clock.Now(), 500)
			s.Schedule(t)
			s.Wakeup(t, WokenMsg)
		}
		return t
	}, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}

	s.Wakeup(task, WokenInit)
	s.RunCycle()

	if !task.inRQ || task.inWQ {
		t.Fatalf("task must be runnable only: inRQ=%v inWQ=%v", task.inRQ, task.inWQ)
	}
	if got := s.wq.len(); got != 0 {
		t.Fatalf("wait queue len = %d, want 0", got)
	}
	if got := s.Snapshot().RunQueue; got != 1 {
		t.Fatalf("run queue = %d, want 1", got)
	}
	if !task.Woken(WokenMsg) {
		t.Fatalf("re-admitted state = %#x, want WokenMsg", task.State())
	}
}

func TestRunCycleSelfRelease(t *testing.T) {
	t.Parallel()
	s, err := New(Config{PoolSize: 1}, NewManualClock(0), logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	task, err := s.NewTask(func(t *Task) *Task { return nil }, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	s.Wakeup(task, WokenOther)
	s.RunCycle()

	snap := s.Snapshot()
	if snap.Tasks != 0 {
		t.Fatalf("tasks = %d, want 0 after self-release", snap.Tasks)
	}
	if snap.RunQueue != 0 {
		t.Fatalf("run queue = %d, want 0", snap.RunQueue)
	}

	// The released record is reusable.
	if _, err := s.NewTask(func(t *Task) *Task { return t }, 0); err != nil {
		t.Fatalf("NewTask after release: %v", err)
	}
}

func TestRunCycleRequeuesOnDeadline(t *testing.T) {
	t.Parallel()
	clock := NewManualClock(0)
	s := newTestScheduler(t, clock)

	task, err := s.NewTask(func(t *Task) *Task {
		t.Expire = TickAdd(clock.Now(), 100)
		return t
	}, 0)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	s.Wakeup(task, WokenInit)
	s.RunCycle()

	if task.inRQ || !task.inWQ {
		t.Fatalf("task after cycle: inRQ=%v inWQ=%v, want waiting", task.inRQ, task.inWQ)
	}
	if task.wq.key != 100 {
		t.Fatalf("wait key = %d, want 100", task.wq.key)
	}
}
