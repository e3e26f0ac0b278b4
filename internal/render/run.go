package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// RunID identifies a run. Zero means "no run".
type RunID uint64

// RunOptions select how Run dispatches.
type RunOptions struct {
	// Async returns right after dispatch; results arrive through Tick.
	Async bool
	// Replace cancels every pending run first.
	Replace bool
}

// RunState is the lifecycle state of a run.
type RunState int

const (
	StateQueued RunState = iota
	StateDispatched
	StateCompleted
	StateFailed
	StateCancelled
)

func (s RunState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateDispatched:
		return "dispatched"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s RunState) finished() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

type run struct {
	id        RunID
	jobs      []Job
	instances []uuid.UUID

	mu      sync.Mutex
	state   RunState
	results []Result
	err     error
	cancel  context.CancelFunc
}

func (r *run) emit(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateCancelled {
		return
	}
	r.results = append(r.results, res)
}

func (r *run) getState() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// finish records the backend outcome unless the run was cancelled meanwhile.
func (r *run) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateCancelled {
		return
	}
	if err != nil {
		r.state = StateFailed
		r.err = err
		return
	}
	r.state = StateCompleted
}

// markCancelled moves an unfinished run to Cancelled and reports whether it
// did.
func (r *run) markCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.finished() {
		return false
	}
	r.state = StateCancelled
	r.results = nil
	if r.cancel != nil {
		r.cancel()
	}
	return true
}

func (r *run) dropInstance(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.results[:0]
	for _, res := range r.results {
		if res.InstanceID != id {
			kept = append(kept, res)
		}
	}
	r.results = kept
}

func (r *run) takeResults() ([]Result, RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.results
	r.results = nil
	return res, r.state, r.err
}
