package graph

import (
	"github.com/specialistvlad/texgraphgo/internal/assets"
)

// OutputInstance is the live state of one graph output. Texture is shared
// with anything else that holds the same slot.
type OutputInstance struct {
	UID       uint32
	Format    assets.PixelFormat
	Enabled   bool
	Dirty     bool
	Texture   *assets.TextureSlot `copier:"-"`
	Desc      *OutputDesc         `copier:"-"`
	Container *Container          `copier:"-"`
}

// Identifier returns the descriptor identifier of the output.
func (o *OutputInstance) Identifier() string {
	if o.Desc == nil {
		return ""
	}
	return o.Desc.Identifier
}

// MarkDirty flags the output for re-rendering and its texture as modified.
func (o *OutputInstance) MarkDirty() {
	o.Dirty = true
	if tex := o.Texture.Get(); tex != nil {
		tex.MarkModified()
	}
}
