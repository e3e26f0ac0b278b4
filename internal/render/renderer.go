package render

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// Callbacks receive what runs produce. Both methods are called on the
// goroutine that calls Run (synchronous runs) or Tick (asynchronous runs).
type Callbacks interface {
	// OutputComputed writes one computed bitmap into its output.
	OutputComputed(ctx context.Context, out *graph.OutputInstance, res Result) error
	// RunCompleted is called once per run after its results were delivered.
	RunCompleted(ctx context.Context, id RunID, err error)
}

// Renderer queues graph instances and runs them on a Backend.
type Renderer struct {
	backend Backend
	states  *states
	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	callbacks Callbacks
	queue     []*graph.Instance
	held      bool
	nextID    RunID
	runs      []*run
	parked    []*run
}

// New creates a renderer over backend. Asynchronous runs inherit the values
// of ctx (its logger) but not its cancellation; Close stops them.
func New(ctx context.Context, backend Backend) *Renderer {
	base, stop := context.WithCancel(context.WithoutCancel(ctx))
	r := &Renderer{
		backend:   backend,
		baseCtx:   base,
		stop:      stop,
		callbacks: TextureSink{},
	}
	r.states = newStates(r.forget)
	return r
}

// SetRenderCallbacks installs the sink for computed bitmaps.
func (r *Renderer) SetRenderCallbacks(cb Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = cb
}

// Push queues inst. Instances that are detached or whose package has no link
// data are logged and skipped; Push then returns false. Pushing a queued
// instance again is a no-op.
func (r *Renderer) Push(ctx context.Context, inst *graph.Instance) bool {
	logger := ctxlog.FromContext(ctx)
	desc := inst.Desc()
	if desc == nil {
		logger.Error("Cannot render a detached graph instance.", "instance", inst.Label())
		return false
	}
	if pkg := desc.Package(); pkg == nil || !pkg.HasLinkData() {
		logger.Error("Graph instance skipped, its package has no link data.", "instance", inst.Label(), "graph", desc.URL)
		return false
	}

	r.mu.Lock()
	if slices.Contains(r.queue, inst) {
		r.mu.Unlock()
		return true
	}
	r.queue = append(r.queue, inst)
	r.mu.Unlock()

	r.states.track(inst)
	inst.ClearPendingImageRender()
	return true
}

// PushAll queues every instance of insts and returns how many were accepted.
func (r *Renderer) PushAll(ctx context.Context, insts []*graph.Instance) int {
	n := 0
	for _, inst := range insts {
		if r.Push(ctx, inst) {
			n++
		}
	}
	return n
}

// QueueLen returns the number of queued instances.
func (r *Renderer) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Run turns the queue into a run. It returns 0 and no error when there is
// nothing to compute. Synchronous runs deliver their results before
// returning and fail with ErrHeld while on hold. Backend failures come back
// as *RunError and put the run's instances back on the queue.
func (r *Renderer) Run(ctx context.Context, opts RunOptions) (RunID, error) {
	if opts.Replace {
		r.CancelAll(ctx)
	}

	r.mu.Lock()
	if !opts.Async && r.held {
		r.mu.Unlock()
		return 0, ErrHeld
	}
	queued := r.queue
	r.queue = nil
	r.mu.Unlock()

	rn := &run{}
	for _, inst := range queued {
		if inst.Desc() == nil {
			continue
		}
		job := NewJob(inst)
		if len(job.Outputs) == 0 {
			continue
		}
		rn.jobs = append(rn.jobs, job)
		rn.instances = append(rn.instances, inst.ID())
	}
	if len(rn.jobs) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	r.nextID++
	rn.id = r.nextID
	r.runs = append(r.runs, rn)
	held := r.held
	if opts.Async && held {
		r.parked = append(r.parked, rn)
	}
	r.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("run_id", rn.id)
	if opts.Async {
		if held {
			logger.Debug("Render run parked until resume.", "jobs", len(rn.jobs))
			return rn.id, nil
		}
		r.dispatch(rn)
		return rn.id, nil
	}

	logger.Debug("Running render synchronously.", "jobs", len(rn.jobs))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	rn.mu.Lock()
	rn.state = StateDispatched
	rn.cancel = cancel
	rn.mu.Unlock()
	rn.finish(r.backend.Render(runCtx, rn.jobs, rn.emit))
	return rn.id, r.deliver(ctx, rn)
}

func (r *Renderer) dispatch(rn *run) {
	runCtx, cancel := context.WithCancel(r.baseCtx)
	rn.mu.Lock()
	if rn.state != StateQueued {
		rn.mu.Unlock()
		cancel()
		return
	}
	rn.state = StateDispatched
	rn.cancel = cancel
	rn.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		rn.finish(r.backend.Render(runCtx, rn.jobs, rn.emit))
	}()
}

// Tick delivers the results of every finished asynchronous run and returns
// how many runs were delivered. It must be called from the owner goroutine.
func (r *Renderer) Tick(ctx context.Context) int {
	r.mu.Lock()
	var done []*run
	for _, rn := range r.runs {
		if rn.getState().finished() {
			done = append(done, rn)
		}
	}
	r.mu.Unlock()

	for _, rn := range done {
		_ = r.deliver(ctx, rn)
	}
	return len(done)
}

// deliver writes results of a finished run, forgets the run and reports
// its outcome to the callbacks.
func (r *Renderer) deliver(ctx context.Context, rn *run) error {
	results, state, backendErr := rn.takeResults()

	r.mu.Lock()
	r.runs = slices.DeleteFunc(r.runs, func(x *run) bool { return x == rn })
	cb := r.callbacks
	r.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("run_id", rn.id)
	var runErr error
	switch state {
	case StateCompleted:
		for _, res := range results {
			inst := r.states.lookup(res.InstanceID)
			if inst == nil {
				logger.Debug("Dropping result of a destroyed instance.", "instance_id", res.InstanceID)
				continue
			}
			out := inst.GetOutput(res.OutputUID)
			if out == nil || cb == nil {
				continue
			}
			if err := cb.OutputComputed(ctx, out, res); err != nil {
				logger.Error("Failed to write computed output.", "instance", inst.Label(), "output_uid", res.OutputUID, "error", err)
			}
		}
	case StateFailed:
		code := CodeFailed
		if errors.Is(backendErr, context.Canceled) {
			code = CodeCancelled
		}
		runErr = &RunError{RunID: rn.id, Code: code, Err: backendErr}
		logger.Warn("Render run failed, instances are queued again.", "error", backendErr)
		r.requeue(rn)
	case StateCancelled:
		runErr = &RunError{RunID: rn.id, Code: CodeCancelled, Err: context.Canceled}
	}

	if cb != nil {
		cb.RunCompleted(ctx, rn.id, runErr)
	}
	return runErr
}

func (r *Renderer) requeue(rn *run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range rn.instances {
		inst := r.states.lookup(id)
		if inst != nil && !slices.Contains(r.queue, inst) {
			r.queue = append(r.queue, inst)
		}
	}
}

// Cancel cancels a pending run. It returns false when the run is unknown or
// already finished, so cancelling twice is harmless.
func (r *Renderer) Cancel(ctx context.Context, id RunID) bool {
	r.mu.Lock()
	var rn *run
	for _, x := range r.runs {
		if x.id == id {
			rn = x
			break
		}
	}
	if rn == nil {
		r.mu.Unlock()
		return false
	}
	r.parked = slices.DeleteFunc(r.parked, func(x *run) bool { return x == rn })
	r.mu.Unlock()

	if !rn.markCancelled() {
		return false
	}
	ctxlog.FromContext(ctx).Debug("Render run cancelled.", "run_id", id)
	return true
}

// CancelAll cancels every pending run and reports whether any was.
func (r *Renderer) CancelAll(ctx context.Context) bool {
	cancelled := false
	for _, id := range r.PendingRuns() {
		if r.Cancel(ctx, id) {
			cancelled = true
		}
	}
	return cancelled
}

// IsPending reports whether run id was neither delivered nor cancelled.
func (r *Renderer) IsPending(id RunID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rn := range r.runs {
		if rn.id == id {
			return rn.getState() != StateCancelled
		}
	}
	return false
}

// PendingRuns lists the runs that are neither delivered nor cancelled.
func (r *Renderer) PendingRuns() []RunID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RunID
	for _, rn := range r.runs {
		if rn.getState() != StateCancelled {
			out = append(out, rn.id)
		}
	}
	return out
}

// Hold pauses dispatch. The queue is kept.
func (r *Renderer) Hold() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.held = true
}

// IsHeld reports whether dispatch is paused.
func (r *Renderer) IsHeld() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held
}

// Resume lifts a Hold and dispatches the runs accepted meanwhile.
func (r *Renderer) Resume(ctx context.Context) {
	r.mu.Lock()
	r.held = false
	parked := r.parked
	r.parked = nil
	r.mu.Unlock()

	for _, rn := range parked {
		r.dispatch(rn)
	}
	if len(parked) > 0 {
		ctxlog.FromContext(ctx).Debug("Renderer resumed.", "runs", len(parked))
	}
}

// Flush waits for dispatched runs to finish computing, then drains the
// backend. Results stay pending until the next Tick.
func (r *Renderer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return r.backend.Flush(ctx)
}

// ClearCache drops the backend's memoized intermediate results.
func (r *Renderer) ClearCache() {
	r.backend.ClearCache()
}

// Close cancels every run, waits for the backend goroutines and releases the
// backend.
func (r *Renderer) Close(ctx context.Context) error {
	r.CancelAll(ctx)
	r.wg.Wait()
	r.stop()
	r.states.release()
	return r.backend.Close()
}

// forget drops a destroyed instance from the queue and from pending results.
func (r *Renderer) forget(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = slices.DeleteFunc(r.queue, func(inst *graph.Instance) bool { return inst.ID() == id })
	for _, rn := range r.runs {
		rn.dropInstance(id)
	}
}
