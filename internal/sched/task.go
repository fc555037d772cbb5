package sched

// Flags carry a task's running bit and the reasons it was woken. Wake
// reasons accumulate in the pending word while a task cannot be admitted
// (typically because its callback is executing) and become the visible
// state at the next admission.
type Flags uint16

const (
	flagRunning Flags = 0x01 // callback currently executing

	WokenInit   Flags = 0x02 // first wake after creation
	WokenTimer  Flags = 0x04 // expiration reached
	WokenMsg    Flags = 0x08 // inter-task message
	WokenSignal Flags = 0x10
	WokenIO     Flags = 0x20 // I/O completion
	WokenRes    Flags = 0x40 // resource became available
	WokenOther  Flags = 0x80

	wokenAny Flags = 0xfe
)

// Nice bounds. Negative values dispatch earlier.
const (
	MinNice = -1024
	MaxNice = 1024
)

// Task is one unit of deferred work. A task belongs to exactly one
// scheduler, lives in at most one queue at a time, and must only be touched
// from the scheduling goroutine. Queue membership and flags are maintained
// by the scheduler; callbacks may freely set Expire and Nice on themselves
// or on tasks that are not running.
type Task struct {
	// Process performs the task's work. It must not block, and returns
	// the task itself while it stays alive, or nil once the task has
	// released itself and must not be touched again.
	Process func(*Task) *Task

	// Nice biases the run-queue position, in [MinNice, MaxNice].
	Nice int

	// Expire is the wake deadline tick, or Eternity for none.
	Expire uint32

	// Calls counts callback invocations (diagnostic).
	Calls uint64

	state   Flags
	pending Flags

	rq   treeKey
	inRQ bool
	wq   treeKey
	inWQ bool
}

// State returns the running bit plus the wake reasons consumed at the
// latest admission.
func (t *Task) State() Flags { return t.state }

// Woken reports whether the latest admission carried the given reason.
func (t *Task) Woken(reason Flags) bool { return t.state&reason != 0 }

// Running reports whether the task's callback is executing right now.
func (t *Task) Running() bool { return t.state&flagRunning != 0 }

// Queued reports whether the task currently sits in the run or wait queue.
func (t *Task) Queued() bool { return t.inRQ || t.inWQ }
