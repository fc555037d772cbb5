package sched

// Snapshot is a point-in-time view of the scheduler counters, safe to hand
// to reporting code outside the scheduling goroutine once taken.
type Snapshot struct {
	Tasks       int // live task records
	RunQueue    int // tasks currently runnable
	WaitQueue   int // tasks parked on a deadline
	Niced       int // runnable tasks with non-zero nice
	TasksCur    int // task count captured at the last cycle
	RunQueueCur int // run-queue depth captured at the last cycle

	Admissions uint64 // run-queue admissions since startup
	Cycles     uint64 // cycles that found work
	Processed  uint64 // callback invocations
}

func (s *Scheduler) Snapshot() Snapshot {
	return Snapshot{
		Tasks:       s.taskCount,
		RunQueue:    s.runQueueSize,
		WaitQueue:   s.wq.len(),
		Niced:       s.nicedTasks,
		TasksCur:    s.taskCur,
		RunQueueCur: s.runQueueCur,
		Admissions:  s.admissions,
		Cycles:      s.cycles,
		Processed:   s.processed,
	}
}
