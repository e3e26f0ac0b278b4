package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// Status is the body of the /status endpoint.
type Status struct {
	Loaded           bool           `json:"loaded"`
	Held             bool           `json:"held"`
	QueueLength      int            `json:"queue_length"`
	PendingRuns      []render.RunID `json:"pending_runs"`
	Assets           int            `json:"assets"`
	PendingDeletions int            `json:"pending_deletions"`
}

// Status reports the renderer and store state. It is safe to call from any
// goroutine.
func (a *App) Status() Status {
	s := Status{
		Assets:           len(a.store.Paths()),
		PendingDeletions: a.store.PendingDeletions(),
		PendingRuns:      []render.RunID{},
	}
	if r := a.renderer; r != nil {
		s.Loaded = true
		s.Held = r.IsHeld()
		s.QueueLength = r.QueueLen()
		s.PendingRuns = append(s.PendingRuns, r.PendingRuns()...)
	}
	return s
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.Status()); err != nil {
		a.logger.Error("Failed to write status.", "error", err)
	}
}

func (a *App) statusMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// startStatusServer listens on the configured port and serves /health and
// /status until closeStatusServer is called.
func (a *App) startStatusServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.config.StatusPort <= 0 {
		logger.Debug("Status server not started: disabled")
		return nil
	}

	addr := fmt.Sprintf(":%d", a.config.StatusPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start status server: %w", err)
	}
	a.httpServer = &http.Server{Handler: a.statusMux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

func (a *App) closeStatusServer(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	ctxlog.FromContext(ctx).Info("🩺 Shutting down status server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("status server shutdown failed: %w", err)
	}
	a.httpServer = nil
	return nil
}
