package assets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
)

var (
	// ErrExists is returned when creating an object over an existing path.
	ErrExists = errors.New("asset already exists")
	// ErrReferenced is returned when deleting an object another object
	// still references.
	ErrReferenced = errors.New("asset is still referenced")
	// ErrNotFound is returned for paths with no object.
	ErrNotFound = errors.New("asset not found")
)

// Store holds every asset of a session.
//
// objects maps canonical path strings to *Object (or *Texture for textures,
// whose embedded Object is what reference tracking sees).
type Store struct {
	objects sync.Map // Key: path string, Value: *Object or *Texture

	mu      sync.Mutex
	refs    map[string]map[string]struct{} // from -> to
	rrefs   map[string]map[string]struct{} // to -> from
	pending []*Object
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		refs:  make(map[string]map[string]struct{}),
		rrefs: make(map[string]map[string]struct{}),
	}
}

// Create adds a new object at path.
func (s *Store) Create(path assetpath.Path, kind Kind, flags Flags) (*Object, error) {
	o := &Object{path: path, kind: kind}
	o.flags.Store(uint32(flags))
	if _, loaded := s.objects.LoadOrStore(path.String(), o); loaded {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	return o, nil
}

// CreateTexture adds a new, empty texture at path.
func (s *Store) CreateTexture(path assetpath.Path, format PixelFormat, flags Flags) (*Texture, error) {
	t := &Texture{Object: &Object{path: path, kind: KindTexture}, format: format}
	t.flags.Store(uint32(flags))
	if _, loaded := s.objects.LoadOrStore(path.String(), t); loaded {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	return t, nil
}

// Find looks up an object by path.
func (s *Store) Find(path assetpath.Path) (*Object, bool) {
	v, ok := s.objects.Load(path.String())
	if !ok {
		return nil, false
	}
	return asObject(v), true
}

// Texture looks up a texture by path.
func (s *Store) Texture(path assetpath.Path) (*Texture, bool) {
	v, ok := s.objects.Load(path.String())
	if !ok {
		return nil, false
	}
	t, ok := v.(*Texture)
	return t, ok
}

// Exists reports whether path is taken.
func (s *Store) Exists(path assetpath.Path) bool {
	_, ok := s.objects.Load(path.String())
	return ok
}

// UniquePath returns path, or path with a numeric suffix appended to its
// name when path is already taken.
func (s *Store) UniquePath(path assetpath.Path) assetpath.Path {
	if !s.Exists(path) {
		return path
	}
	for i := 1; ; i++ {
		candidate := path.WithName(fmt.Sprintf("%s_%d", path.Name(), i))
		if !s.Exists(candidate) {
			return candidate
		}
	}
}

// Paths lists every stored path, sorted.
func (s *Store) Paths() []string {
	var out []string
	s.objects.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	sort.Strings(out)
	return out
}

// ReplaceTexture rebuilds old in place: a fresh texture object takes the same
// path and inherits every reference to and from old. Old is destroyed.
func (s *Store) ReplaceTexture(old *Texture, format PixelFormat) *Texture {
	t := &Texture{Object: &Object{path: old.path, kind: KindTexture}, format: format}
	t.flags.Store(old.flags.Load())
	s.objects.Store(old.path.String(), t)
	old.destroy()
	return t
}

// AddReference records that from uses to.
func (s *Store) AddReference(from, to assetpath.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link(s.refs, from.String(), to.String())
	link(s.rrefs, to.String(), from.String())
}

// RemoveReference drops a reference recorded by AddReference.
func (s *Store) RemoveReference(from, to assetpath.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlink(s.refs, from.String(), to.String())
	unlink(s.rrefs, to.String(), from.String())
}

// IsReferenced reports whether any object other than those in except holds
// a reference to path.
func (s *Store) IsReferenced(path assetpath.Path, except ...assetpath.Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReferencedLocked(path.String(), pathSet(except))
}

// Referencers lists the paths holding a reference to path, sorted.
func (s *Store) Referencers(path assetpath.Path) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for from := range s.rrefs[path.String()] {
		out = append(out, from)
	}
	sort.Strings(out)
	return out
}

func (s *Store) isReferencedLocked(key string, except map[string]struct{}) bool {
	for from := range s.rrefs[key] {
		if from == key {
			continue
		}
		if _, skip := except[from]; skip {
			continue
		}
		return true
	}
	return false
}

// Delete removes o from the store, refusing when it is still referenced.
// Deleting an already deleted object is a no-op.
func (s *Store) Delete(ctx context.Context, o *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(ctx, o, nil)
}

func (s *Store) deleteLocked(ctx context.Context, o *Object, except map[string]struct{}) error {
	if o.IsDestroyed() {
		return nil
	}
	key := o.path.String()
	if s.isReferencedLocked(key, except) {
		return fmt.Errorf("%w: %s", ErrReferenced, o.path)
	}
	for to := range s.refs[key] {
		unlink(s.rrefs, to, key)
	}
	delete(s.refs, key)
	for from := range s.rrefs[key] {
		unlink(s.refs, from, key)
	}
	delete(s.rrefs, key)
	if v, ok := s.objects.Load(key); ok && asObject(v) == o {
		s.objects.Delete(key)
	}
	ctxlog.FromContext(ctx).Debug("Asset deleted.", "path", key, "kind", o.kind)
	o.destroy()
	return nil
}

// RegisterForDeletion queues o for PerformDelayedDeletion.
func (s *Store) RegisterForDeletion(o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pending {
		if p == o {
			return
		}
	}
	s.pending = append(s.pending, o)
}

// PendingDeletions returns the number of queued deletions.
func (s *Store) PendingDeletions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PerformDelayedDeletion deletes every queued object. References between
// queued objects do not block each other. Objects still referenced from
// outside the queue stay queued and are reported as busy.
func (s *Store) PerformDelayedDeletion(ctx context.Context) (deleted, busy []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued := make(map[string]struct{}, len(s.pending))
	for _, o := range s.pending {
		queued[o.path.String()] = struct{}{}
	}
	var keep []*Object
	for _, o := range s.pending {
		if err := s.deleteLocked(ctx, o, queued); err != nil {
			busy = append(busy, o.path.String())
			keep = append(keep, o)
			continue
		}
		deleted = append(deleted, o.path.String())
	}
	s.pending = keep
	if len(busy) > 0 {
		ctxlog.FromContext(ctx).Warn("Some assets could not be deleted because they are still referenced.", "busy", busy)
	}
	return deleted, busy
}

// CollectGarbage deletes every object that is neither Standalone nor
// referenced, and returns how many were removed.
func (s *Store) CollectGarbage(ctx context.Context) int {
	var candidates []*Object
	s.objects.Range(func(_, v any) bool {
		o := asObject(v)
		if !o.HasFlags(Standalone) {
			candidates = append(candidates, o)
		}
		return true
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range candidates {
		if s.deleteLocked(ctx, o, nil) == nil {
			n++
		}
	}
	return n
}

func asObject(v any) *Object {
	switch o := v.(type) {
	case *Texture:
		return o.Object
	case *Object:
		return o
	}
	panic(fmt.Sprintf("assets: unexpected stored value %T", v))
}

func link(m map[string]map[string]struct{}, a, b string) {
	set, ok := m[a]
	if !ok {
		set = make(map[string]struct{})
		m[a] = set
	}
	set[b] = struct{}{}
}

func unlink(m map[string]map[string]struct{}, a, b string) {
	set, ok := m[a]
	if !ok {
		return
	}
	delete(set, b)
	if len(set) == 0 {
		delete(m, a)
	}
}

func pathSet(paths []assetpath.Path) map[string]struct{} {
	if len(paths) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		out[p.String()] = struct{}{}
	}
	return out
}
