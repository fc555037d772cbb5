package sched

import "time"

// Ticks are unsigned 32-bit millisecond counters that wrap roughly every
// 49.7 days. Ordering is always decided from the signed 32-bit difference,
// so comparisons stay correct across the wrap as long as the two ticks are
// less than 2^31 ms apart.

const (
	// Eternity is the "never expires" sentinel for Task.Expire.
	Eternity uint32 = 0

	// lookBack is how far behind a queue position lookups reach, so that
	// entries keyed slightly in the past are still found in wrap order.
	lookBack uint32 = 1 << 31
)

func tickIsSet(t uint32) bool { return t != Eternity }

// tickIsLT reports whether a is chronologically before b.
func tickIsLT(a, b uint32) bool { return int32(a-b) < 0 }

// tickIsExpired reports whether t is a set deadline at or before now.
func tickIsExpired(t, now uint32) bool { return tickIsSet(t) && !tickIsLT(now, t) }

// TickAdd returns now+delay as a tick, stepping over the Eternity sentinel
// when the sum happens to wrap onto it.
func TickAdd(now, delay uint32) uint32 {
	t := now + delay
	if t == Eternity {
		t++
	}
	return t
}

// UntilTick converts the distance from now to a deadline tick into a
// duration usable as an event-loop idle timeout. Unset or already-passed
// deadlines yield zero.
func UntilTick(now, deadline uint32) time.Duration {
	if !tickIsSet(deadline) || !tickIsLT(now, deadline) {
		return 0
	}
	return time.Duration(deadline-now) * time.Millisecond
}
