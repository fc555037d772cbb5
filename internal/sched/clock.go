package sched

import "time"

// Clock supplies the scheduler's monotonic tick: a wrapping 32-bit
// millisecond counter. The scheduler never reads the wall clock directly so
// tests and simulations can drive virtual time.
type Clock interface {
	Now() uint32
}

// WallClock derives ticks from the process monotonic clock.
type WallClock struct {
	base time.Time
}

func NewWallClock() *WallClock { return &WallClock{base: time.Now()} }

func (c *WallClock) Now() uint32 {
	return uint32(time.Since(c.base) / time.Millisecond)
}

// ManualClock is a hand-advanced Clock for tests and simulations.
type ManualClock struct {
	now uint32
}

func NewManualClock(start uint32) *ManualClock { return &ManualClock{now: start} }

func (c *ManualClock) Now() uint32 { return c.now }

// Advance moves the clock forward by d ticks.
func (c *ManualClock) Advance(d uint32) { c.now += d }

// Set jumps the clock to an absolute tick, wrap included.
func (c *ManualClock) Set(t uint32) { c.now = t }
