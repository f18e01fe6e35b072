package jobs

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// RunState is the coarse-grained state of the latest ingestion run.
type RunState int32

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateError
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// RunCoordinator owns the single-flight guard around ingestion runs and the
// run state visible to status pollers. The guard, not the state value,
// enforces that at most one run is active; the state is just what pollers
// observe. Terminal states reset to idle on first read.
type RunCoordinator struct {
	guard *semaphore.Weighted
	state atomic.Int32
}

func NewRunCoordinator() *RunCoordinator {
	return &RunCoordinator{guard: semaphore.NewWeighted(1)}
}

// TryStart acquires the run guard without blocking. It returns false when a
// run is already active; the caller must report "busy" and not queue.
func (c *RunCoordinator) TryStart() bool {
	if !c.guard.TryAcquire(1) {
		return false
	}
	c.state.Store(int32(StateRunning))
	return true
}

// MarkCompleted records a successful run and releases the guard.
func (c *RunCoordinator) MarkCompleted() {
	c.state.Store(int32(StateCompleted))
	c.guard.Release(1)
}

// MarkError records a failed run and releases the guard.
func (c *RunCoordinator) MarkError() {
	c.state.Store(int32(StateError))
	c.guard.Release(1)
}

// PeekAndReset returns the current state. A terminal state (completed or
// error) is observed once: the first reader resets it back to idle.
func (c *RunCoordinator) PeekAndReset() RunState {
	observed := RunState(c.state.Load())
	if observed == StateCompleted || observed == StateError {
		// A lost race means another poller read the terminal state first or
		// a new run started; either way the observed value was real.
		c.state.CompareAndSwap(int32(observed), int32(StateIdle))
	}
	return observed
}
