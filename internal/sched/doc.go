// Package sched implements the cooperative task scheduler at the heart of
// the event loop.
//
// # Overview
//
// Every deferred unit of work is a Task with a callback, a nice value and an
// optional expiration tick. Runnable tasks sit in the run queue, ordered by
// a wrapping 32-bit admission counter biased by nice; tasks waiting on a
// deadline sit in the wait queue, ordered by expiration tick. Both queues
// are red-black trees over the same wrapping key space.
//
// The embedding event loop drives the scheduler with two calls per
// iteration: WakeExpired promotes due timers into the run queue and returns
// the next deadline as an idle hint, and RunCycle executes a bounded slice
// of the run queue.
//
// # Execution model
//
// Scheduling is single-goroutine and cooperative. A callback runs to
// completion, then returns either its own task (still alive) or nil (the
// task released itself). There is no suspension: a task that wants to wait
// sets Expire and returns; it is re-invoked from the top once the deadline
// passes or something wakes it.
//
// Callbacks may wake or schedule any task, including themselves. Waking a
// task whose callback is currently executing is recorded in its pending
// flags and applied right after the execution batch, never by inserting a
// running task into a queue.
//
// # Bounded latency
//
// RunCycle processes at most 200 tasks, in detached batches of 16, and
// quarters its budget whenever niced tasks are present so that priority
// ordering is revisited often enough to matter. The hot path does not
// allocate: task records come from a fixed free-list pool and tree nodes
// are the only per-insert cost.
package sched
