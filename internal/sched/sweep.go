package sched

// WakeExpired promotes every waiting task whose deadline has passed into
// the run queue and returns the next pending deadline, or Eternity when the
// wait queue holds nothing timed. The return value is the event loop's hint
// for how long it may safely idle.
func (s *Scheduler) WakeExpired() uint32 {
	now := s.clock.Now()
	for {
		key, t, ok := s.wq.ceiling(now - lookBack)
		if !ok {
			// <now> may sit past the wrap boundary relative to every
			// queued deadline; restart from the tree minimum.
			key, t, ok = s.wq.first()
			if !ok {
				break
			}
		}

		if tickIsLT(now, key.key) {
			// Earliest entry is still in the future.
			return key.key
		}

		s.unlinkWQ(t)

		// The entry may be stale: Schedule leaves a task in place when
		// its deadline moved later, and Expire may have been cleared
		// since it was queued.
		if !tickIsExpired(t.Expire, now) {
			if !tickIsSet(t.Expire) {
				continue // cancelled, drop
			}
			s.queueTask(t)
			continue
		}

		s.Wakeup(t, WokenTimer)
	}
	return Eternity
}
