package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhausted is returned by NewTask when every record is live.
	ErrPoolExhausted = errors.New("sched: task pool exhausted")

	// ErrTaskBusy is returned by FreeTask for a task that is still queued
	// or running.
	ErrTaskBusy = errors.New("sched: task still queued or running")
)

// pool is a fixed-capacity free-list arena of task records. Records are
// recycled rather than handed back to the GC, so steady-state scheduling
// does not allocate.
type pool struct {
	slots []Task
	free  []*Task
}

func newPool(capacity int) (*pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid task pool capacity %d", capacity)
	}
	p := &pool{
		slots: make([]Task, capacity),
		free:  make([]*Task, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, &p.slots[i])
	}
	return p, nil
}

func (p *pool) alloc() (*Task, error) {
	if len(p.free) == 0 {
		return nil, ErrPoolExhausted
	}
	t := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	*t = Task{}
	return t, nil
}

func (p *pool) release(t *Task) {
	p.free = append(p.free, t)
}
