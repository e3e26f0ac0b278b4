// Package socketio_compute is a remote compute backend: jobs are sent to a
// render farm over socket.io and computed bitmaps come back as
// render_result events.
package socketio_compute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// DefaultTimeout bounds how long one job may take on the farm.
const DefaultTimeout = 60 * time.Second

// transport is the part of a socket.io client the backend needs.
type transport interface {
	emit(event string, payload any)
	close()
}

type pendingJob struct {
	job   render.Job
	reply chan replyPayload
}

// Backend implements render.Backend.
type Backend struct {
	t       transport
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*pendingJob
}

func newBackend(ctx context.Context, t transport, timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{t: t, timeout: timeout, logger: ctxlog.FromContext(ctx), pending: make(map[string]*pendingJob)}
}

// Render implements render.Backend: every job is sent as one request and
// the call returns once all replies arrived.
func (b *Backend) Render(ctx context.Context, jobs []render.Job, emit func(render.Result)) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	ids := make([]string, len(jobs))
	waits := make([]*pendingJob, len(jobs))
	b.mu.Lock()
	for i, job := range jobs {
		ids[i] = uuid.NewString()
		waits[i] = &pendingJob{job: job, reply: make(chan replyPayload, 1)}
		b.pending[ids[i]] = waits[i]
	}
	b.mu.Unlock()
	defer b.forget(ids)

	for i, job := range jobs {
		logger.Debug("Sending render request.", "request_id", ids[i], "graph", job.GraphURL, "outputs", len(job.Outputs))
		b.t.emit(EventRender, encodeJob(ids[i], job))
	}

	var errs []error
	for i, w := range waits {
		select {
		case reply := <-w.reply:
			if reply.Error != "" {
				errs = append(errs, fmt.Errorf("request %s: %s", ids[i], reply.Error))
				continue
			}
			for _, out := range reply.Outputs {
				res, err := decodeOutput(w.job, out)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				emit(res)
			}
		case <-ctx.Done():
			for _, id := range ids[i:] {
				b.t.emit(EventCancel, map[string]string{"request_id": id})
			}
			return ctx.Err()
		}
	}
	return errors.Join(errs...)
}

// HandleResult routes a render_result event to the request waiting for it.
func (b *Backend) HandleResult(data ...any) {
	if len(data) == 0 {
		return
	}
	reply, err := decodeReply(data[0])
	if err != nil {
		b.logger.Error("Failed to decode render result, dropping it.", "error", err)
		return
	}
	b.mu.Lock()
	w, ok := b.pending[reply.RequestID]
	if ok {
		delete(b.pending, reply.RequestID)
	}
	b.mu.Unlock()
	if ok {
		w.reply <- reply
	}
}

func (b *Backend) forget(ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		delete(b.pending, id)
	}
}

// ClearCache implements render.Backend.
func (b *Backend) ClearCache() {
	b.t.emit(EventClearCache, map[string]string{})
}

// Flush implements render.Backend. Requests are synchronous, so there is
// nothing left to drain.
func (b *Backend) Flush(ctx context.Context) error {
	return ctx.Err()
}

// Close implements render.Backend.
func (b *Backend) Close() error {
	b.t.close()
	return nil
}
