package sched

const (
	// runBudgetMax caps the tasks processed in one cycle so the event
	// loop keeps its latency bounded regardless of queue depth.
	runBudgetMax = 200

	// batchSize is how many tasks are detached before any callback runs.
	// Callbacks may wake other tasks or themselves; operating on a
	// private batch keeps those re-entrant tree mutations away from the
	// ordering being consumed.
	batchSize = 16
)

// RunCycle executes one bounded slice of the run queue. Pulled tasks are
// marked running, invoked in queue order, and the survivors are re-admitted
// (deferred wake pending), re-queued on their deadline, or left idle. A
// callback that returns nil releases its task for good.
func (s *Scheduler) RunCycle() {
	s.runQueueCur = s.runQueueSize
	s.taskCur = s.taskCount
	if s.runQueueSize == 0 {
		return
	}
	s.cycles++

	budget := s.runQueueSize
	if budget > runBudgetMax {
		budget = runBudgetMax
	}
	// Priority only means something when the queue ordering is revisited
	// often, so the presence of niced tasks trades throughput for
	// re-sort opportunities.
	if s.nicedTasks > 0 {
		budget = (budget + 3) / 4
	}

	var batch [batchSize]*Task
	for budget > 0 {
		limit := batchSize
		if budget < limit {
			limit = budget
		}
		n := 0
		for n < limit {
			_, t, ok := s.rq.ceiling(s.rqTicks - lookBack)
			if !ok {
				_, t, ok = s.rq.first()
				if !ok {
					break
				}
			}
			s.unlinkRQ(t)
			t.state |= flagRunning
			t.pending = 0
			t.Calls++
			batch[n] = t
			n++
		}
		if n == 0 {
			break
		}

		for i := 0; i < n; i++ {
			t := batch[i]
			if batch[i] = t.Process(t); batch[i] == nil {
				// A nil return ends the task: the record goes
				// straight back to the pool.
				t.state &^= flagRunning
				s.taskCount--
				s.pool.release(t)
			}
		}

		// Partial batches still count fully pulled tasks against the
		// budget, even when some callbacks released their task.
		budget -= n
		s.processed += uint64(n)

		for i := 0; i < n; i++ {
			t := batch[i]
			if t == nil {
				continue
			}
			t.state &^= flagRunning
			if t.pending != 0 {
				// A wake arrived mid-execution. The callback may also
				// have parked its own task on a deadline; the wake
				// wins, and the task must not stay in both queues.
				if t.inWQ {
					s.unlinkWQ(t)
				}
				s.admit(t)
			} else {
				s.Schedule(t)
			}
		}
	}
}
