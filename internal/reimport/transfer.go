package reimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/imageinput"
)

// TransferOutput moves the state of prev onto next: enabled flag, texture
// slot and dirty flag. next keeps its uid and format; when the format
// differs the texture is rebuilt in place. next is always left dirty since
// the graph behind it changed.
func TransferOutput(prev, next *graph.OutputInstance) error {
	uid, format := next.UID, next.Format
	if err := copier.Copy(next, prev); err != nil {
		return fmt.Errorf("transferring output %d: %w", uid, err)
	}
	next.UID = uid
	// The slot is shared with materials and other holders.
	next.Texture = prev.Texture
	if next.Format != format {
		graph.RecreateTexture(next, format)
	}
	if next.Enabled {
		next.Dirty = true
	}
	return nil
}

// transferOutputs carries every output of b over to inst and deletes the
// enabled previous outputs inst has no slot for. It returns the paths of the
// textures queued for deletion.
func transferOutputs(ctx context.Context, b *backup, inst *graph.Instance) []string {
	logger := ctxlog.FromContext(ctx).With("instance", b.container.Path().String())
	matched := make(map[uint32]bool)
	for _, next := range inst.Outputs {
		prev := b.previousOutput(next.UID)
		if prev == nil {
			continue
		}
		matched[prev.UID] = true
		if err := TransferOutput(prev, next); err != nil {
			logger.Error("Failed to transfer output.", "output_uid", next.UID, "error", err)
		}
	}

	var deleted []string
	for _, prev := range b.prevOutputs {
		if matched[prev.UID] || !prev.Enabled {
			continue
		}
		tex := prev.Texture.Get()
		if err := graph.Disable(ctx, prev); err != nil {
			if errors.Is(err, graph.ErrResourceBusy) {
				logger.Warn("Output removed from the graph but its texture is still referenced, keeping it.", "output_uid", prev.UID, "error", err)
				continue
			}
			logger.Error("Failed to delete output.", "output_uid", prev.UID, "error", err)
			continue
		}
		if tex != nil {
			deleted = append(deleted, tex.Path().String())
			logger.Info("Output no longer exists, texture deleted.", "output_uid", prev.UID, "texture", tex.Path().String())
		}
	}
	return deleted
}

// transferImageInputs hands every previous image input over to the image
// input of inst with the same uid. Numerical inputs were restored by the
// preset.
func transferImageInputs(ctx context.Context, b *backup, inst *graph.Instance) {
	for _, in := range b.prevInputs {
		prev, ok := in.(*graph.ImageInput)
		if !ok || prev.Source == nil {
			continue
		}
		next, ok := inst.GetInput(prev.UID()).(*graph.ImageInput)
		src, tracked := prev.Source.(*imageinput.Source)
		if tracked {
			src.RemoveConsumer(b.inst)
		}
		if !ok {
			if tracked {
				b.container.Store().RemoveReference(b.container.Path(), src.Object().Path())
			}
			ctxlog.FromContext(ctx).Info("Image input no longer exists.", "instance", b.container.Path().String(), "input", prev.Desc().Identifier)
			continue
		}
		next.Source = prev.Source
		next.Prepared = prev.Prepared
		if tracked {
			src.AddConsumer(inst)
		}
	}
}
