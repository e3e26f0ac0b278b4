package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
)

// SuitableName is the texture name of an output: "<instance>_<output>".
func SuitableName(out *OutputInstance) string {
	return assetpath.Sanitize(out.Container.Name() + "_" + out.Identifier())
}

// CreateTextures gives every output of inst a texture and enables it.
func CreateTextures(ctx context.Context, inst *Instance) error {
	for _, out := range inst.Outputs {
		if err := CreateTexture(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

// CreateTexture creates the texture of out next to its container, enables
// the output and flags it dirty. An output that already has a texture keeps
// it.
func CreateTexture(ctx context.Context, out *OutputInstance) error {
	c := out.Container
	if out.Texture == nil {
		out.Texture = assets.NewSlot(nil)
	}
	if out.Texture.Get() == nil {
		path := c.Store().UniquePath(c.Path().WithName(SuitableName(out)))
		flags := assets.Standalone
		if c.Object().HasFlags(assets.Transient) {
			flags |= assets.Transient
		}
		tex, err := c.Store().CreateTexture(path, out.Format, flags)
		if err != nil {
			return fmt.Errorf("creating texture for output %q: %w", out.Identifier(), err)
		}
		out.Texture.Set(tex)
		ctxlog.FromContext(ctx).Debug("Output texture created.", "texture", path.String(), "output_uid", out.UID)
	}
	out.Enabled = true
	out.MarkDirty()
	return nil
}

// RecreateTexture rebuilds the texture of out in place with a new format.
// Everything holding the slot or referencing the texture keeps doing so.
func RecreateTexture(out *OutputInstance, format assets.PixelFormat) {
	out.Format = format
	tex := out.Texture.Get()
	if tex == nil {
		return
	}
	out.Texture.Set(out.Container.Store().ReplaceTexture(tex, format))
	out.Dirty = true
}

// Disable turns an output off and queues its texture for deletion. It is
// refused with ErrResourceBusy while another object references the texture;
// the output then stays enabled.
func Disable(ctx context.Context, out *OutputInstance) error {
	if tex := out.Texture.Get(); tex != nil {
		store := out.Container.Store()
		if store.IsReferenced(tex.Path(), out.Container.Path()) {
			return fmt.Errorf("%w: texture %s used by %v", ErrResourceBusy, tex.Path(), store.Referencers(tex.Path()))
		}
		out.Texture.Clear()
		store.RegisterForDeletion(tex.Object)
		ctxlog.FromContext(ctx).Debug("Output texture released.", "texture", tex.Path().String(), "output_uid", out.UID)
	}
	out.Enabled = false
	out.Dirty = false
	return nil
}

// UpdateTexture writes a computed bitmap into the texture of out and clears
// the dirty flag once the write completed. A missing texture is created.
func UpdateTexture(ctx context.Context, out *OutputInstance, format assets.PixelFormat, width, height int, pixels []byte) error {
	if !out.Enabled {
		return nil
	}
	if out.Texture.Get() == nil {
		if err := CreateTexture(ctx, out); err != nil {
			return err
		}
	}
	if err := out.Texture.Get().Write(format, width, height, pixels); err != nil {
		return err
	}
	out.Dirty = false
	return nil
}
