package assets

import (
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
)

// Kind classifies stored objects.
type Kind string

const (
	KindPackage       Kind = "package"
	KindGraphInstance Kind = "graph_instance"
	KindTexture       Kind = "texture"
	KindImageInput    Kind = "image_input"
	KindMaterial      Kind = "material"
)

// Flags are per-object persistence flags.
type Flags uint32

const (
	// Standalone keeps an object alive even when nothing references it.
	Standalone Flags = 1 << iota
	// Modified marks an object whose persisted form is out of date.
	Modified
	// Transient objects are never persisted.
	Transient
)

// Object is a named entry of the store.
type Object struct {
	path  assetpath.Path
	kind  Kind
	flags atomic.Uint32

	destroyed   atomic.Bool
	destroyOnce sync.Once
	onDestroy   []func()
}

// Path returns the object's canonical path.
func (o *Object) Path() assetpath.Path { return o.path }

// Name returns the object name, the last path segment.
func (o *Object) Name() string { return o.path.Name() }

// FullName is "<kind> <path>", the qualified form used in hashes and logs.
func (o *Object) FullName() string { return string(o.kind) + " " + o.path.String() }

// Kind returns the object kind.
func (o *Object) Kind() Kind { return o.kind }

// HasFlags reports whether all of f are set.
func (o *Object) HasFlags(f Flags) bool { return Flags(o.flags.Load())&f == f }

// SetFlags sets f.
func (o *Object) SetFlags(f Flags) {
	for {
		old := o.flags.Load()
		if o.flags.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

// ClearFlags clears f.
func (o *Object) ClearFlags(f Flags) {
	for {
		old := o.flags.Load()
		if o.flags.CompareAndSwap(old, old&^uint32(f)) {
			return
		}
	}
}

// MarkModified flags the object as needing to be saved.
func (o *Object) MarkModified() { o.SetFlags(Modified) }

// IsDestroyed reports whether the store has deleted the object.
func (o *Object) IsDestroyed() bool { return o.destroyed.Load() }

// OnDestroy registers f to run once when the object is deleted. It must be
// called before the object is handed to other goroutines.
func (o *Object) OnDestroy(f func()) {
	o.onDestroy = append(o.onDestroy, f)
}

func (o *Object) destroy() {
	o.destroyOnce.Do(func() {
		o.destroyed.Store(true)
		for _, f := range o.onDestroy {
			f()
		}
	})
}
