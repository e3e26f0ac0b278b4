package graph

import (
	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
)

// Container is the user-visible asset a graph instance is bound to. At most
// one instance is bound to a container at a time.
type Container struct {
	obj      *assets.Object
	store    *assets.Store
	instance *Instance
	pkg      *Package
}

// NewContainer wraps a stored object.
func NewContainer(store *assets.Store, obj *assets.Object) *Container {
	return &Container{obj: obj, store: store}
}

// Object returns the stored object behind the container.
func (c *Container) Object() *assets.Object { return c.obj }

// Store returns the asset store the container lives in.
func (c *Container) Store() *assets.Store { return c.store }

// Path returns the container's asset path.
func (c *Container) Path() assetpath.Path { return c.obj.Path() }

// Name returns the container's asset name.
func (c *Container) Name() string { return c.obj.Name() }

// Instance returns the bound instance, nil when unbound.
func (c *Container) Instance() *Instance { return c.instance }

// Package returns the package the bound instance was created from.
func (c *Container) Package() *Package { return c.pkg }

// Unbind clears the instance binding so the container can be instantiated
// into again.
func (c *Container) Unbind() {
	c.instance = nil
}

// MarkModified flags the container as needing to be saved.
func (c *Container) MarkModified() { c.obj.MarkModified() }

// IsModified reports whether the container needs to be saved.
func (c *Container) IsModified() bool { return c.obj.HasFlags(assets.Modified) }

// SetStandalone toggles whether the container survives garbage collection
// while unreferenced.
func (c *Container) SetStandalone(on bool) {
	if on {
		c.obj.SetFlags(assets.Standalone)
	} else {
		c.obj.ClearFlags(assets.Standalone)
	}
}

// IsStandalone reports the Standalone flag.
func (c *Container) IsStandalone() bool { return c.obj.HasFlags(assets.Standalone) }
