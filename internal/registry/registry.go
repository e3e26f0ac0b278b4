package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/imageinput"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// Module is implemented by every module that contributes to the registry.
type Module interface {
	Register(r *Registry)
}

// BackendOptions configure a compute backend.
type BackendOptions struct {
	Workers            int
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// BackendFactory creates a compute backend.
type BackendFactory func(ctx context.Context, opts BackendOptions) (render.Backend, error)

// Registry holds the registered backends and codecs of one application.
type Registry struct {
	backends map[string]BackendFactory
	decoders map[string]imageinput.Decoder
	codecs   map[string]imageinput.Codec
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		backends: make(map[string]BackendFactory),
		decoders: make(map[string]imageinput.Decoder),
		codecs:   make(map[string]imageinput.Codec),
	}
}

// RegisterBackend registers a backend factory under name.
func (r *Registry) RegisterBackend(name string, f BackendFactory) {
	if _, exists := r.backends[name]; exists {
		panic(fmt.Sprintf("backend with name '%s' already registered", name))
	}
	r.backends[name] = f
}

// NewBackend creates the backend registered under name.
func (r *Registry) NewBackend(ctx context.Context, name string, opts BackendOptions) (render.Backend, error) {
	f, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown render backend %q (registered: %s)", name, strings.Join(r.Backends(), ", "))
	}
	return f(ctx, opts)
}

// Backends lists the registered backend names, sorted.
func (r *Registry) Backends() []string {
	return sortedKeys(r.backends)
}

// RegisterDecoder registers an image decoder for a file extension such as
// ".tga".
func (r *Registry) RegisterDecoder(ext string, d imageinput.Decoder) {
	ext = strings.ToLower(ext)
	if _, exists := r.decoders[ext]; exists {
		panic(fmt.Sprintf("decoder for extension '%s' already registered", ext))
	}
	r.decoders[ext] = d
}

// Decoder returns the decoder registered for ext.
func (r *Registry) Decoder(ext string) (imageinput.Decoder, bool) {
	d, ok := r.decoders[strings.ToLower(ext)]
	return d, ok
}

// Decoders returns every registered decoder keyed by extension.
func (r *Registry) Decoders() map[string]imageinput.Decoder {
	out := make(map[string]imageinput.Decoder, len(r.decoders))
	for k, v := range r.decoders {
		out[k] = v
	}
	return out
}

// RegisterCodec registers a compressing codec under name.
func (r *Registry) RegisterCodec(name string, c imageinput.Codec) {
	if _, exists := r.codecs[name]; exists {
		panic(fmt.Sprintf("codec with name '%s' already registered", name))
	}
	r.codecs[name] = c
}

// Codec returns the codec registered under name.
func (r *Registry) Codec(name string) (imageinput.Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
