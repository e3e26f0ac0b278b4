package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// FakeBackend is a deterministic render.Backend. Every byte of a computed
// output equals the low byte of the output uid.
type FakeBackend struct {
	mu      sync.Mutex
	jobs    []render.Job
	err     error
	cleared int
	flushed int
	closed  bool
}

// SetError makes every following Render call fail with err.
func (b *FakeBackend) SetError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Jobs returns every job rendered so far.
func (b *FakeBackend) Jobs() []render.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]render.Job(nil), b.jobs...)
}

// Cleared returns how many times ClearCache was called.
func (b *FakeBackend) Cleared() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleared
}

// Render implements render.Backend.
func (b *FakeBackend) Render(ctx context.Context, jobs []render.Job, emit func(render.Result)) error {
	b.mu.Lock()
	b.jobs = append(b.jobs, jobs...)
	err := b.err
	b.mu.Unlock()
	if err != nil {
		return err
	}
	for _, job := range jobs {
		for _, out := range job.Outputs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			emit(render.Result{
				InstanceID: job.InstanceID,
				OutputUID:  out.UID,
				Format:     out.Format,
				Width:      out.Width,
				Height:     out.Height,
				Pixels:     Pixels(out),
			})
		}
	}
	return nil
}

// Pixels is what FakeBackend computes for out.
func Pixels(out render.OutputRequest) []byte {
	px := make([]byte, out.Width*out.Height*out.Format.BytesPerPixel())
	for i := range px {
		px[i] = byte(out.UID)
	}
	return px
}

// ClearCache implements render.Backend.
func (b *FakeBackend) ClearCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared++
}

// Flush implements render.Backend.
func (b *FakeBackend) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushed++
	return nil
}

// Close implements render.Backend.
func (b *FakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// BackendModule registers a fixed backend under Name.
type BackendModule struct {
	Name    string
	Backend render.Backend
}

// Register implements the registry.Module interface.
func (m *BackendModule) Register(r *registry.Registry) {
	r.RegisterBackend(m.Name, func(context.Context, registry.BackendOptions) (render.Backend, error) {
		return m.Backend, nil
	})
}
