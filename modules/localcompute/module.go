package localcompute

import (
	"context"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the backend as "local".
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBackend("local", func(ctx context.Context, opts registry.BackendOptions) (render.Backend, error) {
		ctxlog.FromContext(ctx).Debug("Creating local compute backend.", "workers", opts.Workers)
		return New(opts.Workers), nil
	})
}
