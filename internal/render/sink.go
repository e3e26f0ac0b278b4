package render

import (
	"context"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// TextureSink writes computed bitmaps into output textures.
type TextureSink struct{}

// OutputComputed implements Callbacks.
func (TextureSink) OutputComputed(ctx context.Context, out *graph.OutputInstance, res Result) error {
	return graph.UpdateTexture(ctx, out, res.Format, res.Width, res.Height, res.Pixels)
}

// RunCompleted implements Callbacks.
func (TextureSink) RunCompleted(ctx context.Context, id RunID, err error) {
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Render run did not complete.", "run_id", id, "code", Code(err))
		return
	}
	ctxlog.FromContext(ctx).Debug("Render run completed.", "run_id", id)
}
