package imageinput

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// Importer creates and reimports image-input assets.
type Importer struct {
	store    *assets.Store
	decoders map[string]Decoder
	codec    Codec

	mu      sync.Mutex
	sources map[string]*Source
}

// NewImporter creates an importer. decoders are keyed by lower-case file
// extension including the dot; codec compresses the stored planes.
func NewImporter(store *assets.Store, decoders map[string]Decoder, codec Codec) *Importer {
	return &Importer{
		store:    store,
		decoders: decoders,
		codec:    codec,
		sources:  make(map[string]*Source),
	}
}

// Import reads file and stores it as an image input at path.
func (im *Importer) Import(ctx context.Context, path assetpath.Path, file string) (*Source, error) {
	img, err := im.decodeFile(file)
	if err != nil {
		return nil, err
	}
	obj, err := im.store.Create(path, assets.KindImageInput, assets.Standalone)
	if err != nil {
		return nil, err
	}
	src := &Source{obj: obj, codec: im.codec}
	if err := src.setPlanes(file, img); err != nil {
		_ = im.store.Delete(ctx, obj)
		return nil, err
	}

	im.mu.Lock()
	im.sources[path.String()] = src
	im.mu.Unlock()
	obj.OnDestroy(func() {
		im.mu.Lock()
		delete(im.sources, path.String())
		im.mu.Unlock()
	})

	w, h := src.Size()
	ctxlog.FromContext(ctx).Info("Image input imported.", "path", path.String(), "file", file, "width", w, "height", h, "alpha", src.HasAlpha())
	return src, nil
}

// Find returns the image input stored at path.
func (im *Importer) Find(path assetpath.Path) (*Source, bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	src, ok := im.sources[path.String()]
	return src, ok
}

// FindByFile returns every image input imported from file.
func (im *Importer) FindByFile(file string) []*Source {
	abs, _ := filepath.Abs(file)
	im.mu.Lock()
	defer im.mu.Unlock()
	var out []*Source
	keys := make([]string, 0, len(im.sources))
	for k := range im.sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		src := im.sources[k]
		if other, _ := filepath.Abs(src.SourceFile()); other == abs {
			out = append(out, src)
		}
	}
	return out
}

// CanReimport reports whether the source file still exists and is of a
// decodable type.
func (im *Importer) CanReimport(src *Source) bool {
	file := src.SourceFile()
	if _, ok := im.decoders[strings.ToLower(filepath.Ext(file))]; !ok {
		return false
	}
	_, err := os.Stat(file)
	return err == nil
}

// Reimport reloads src from its source file and applies the new picture to
// every consumer. It returns the consumers that need a render.
func (im *Importer) Reimport(ctx context.Context, src *Source) ([]*graph.Instance, error) {
	file := src.SourceFile()
	img, err := im.decodeFile(file)
	if err != nil {
		return nil, err
	}
	if err := src.setPlanes(file, img); err != nil {
		return nil, err
	}

	var dirty []*graph.Instance
	for _, inst := range src.Consumers() {
		if inst.UpdateInput(ctx, 0, src) > 0 {
			dirty = append(dirty, inst)
		}
	}
	ctxlog.FromContext(ctx).Info("Image input reimported.", "path", src.Object().Path().String(), "consumers_to_render", len(dirty))
	return dirty, nil
}

// Assign sets src on the image input identifier of inst, records inst as a
// consumer and the container's reference to src. It returns how many outputs
// were marked dirty.
func Assign(ctx context.Context, inst *graph.Instance, identifier string, src *Source) int {
	if prev, ok := inst.GetInputByName(identifier).(*graph.ImageInput); ok {
		if old, ok := prev.Source.(*Source); ok && old != src {
			old.RemoveConsumer(inst)
			inst.Container().Store().RemoveReference(inst.Container().Path(), old.Object().Path())
		}
	}
	n := inst.UpdateInputByName(ctx, identifier, src)
	if src != nil {
		src.AddConsumer(inst)
		inst.Container().Store().AddReference(inst.Container().Path(), src.Object().Path())
	}
	return n
}

func (im *Importer) decodeFile(file string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(file))
	dec, ok := im.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if ext == ".tga" {
		if err := checkTGADepth(data); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	img, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	b := img.Bounds()
	switch {
	case b.Dx() < MinSize || b.Dy() < MinSize:
		return nil, fmt.Errorf("%s is %dx%d: %w", file, b.Dx(), b.Dy(), ErrImageTooSmall)
	case b.Dx() > MaxSize || b.Dy() > MaxSize:
		return nil, fmt.Errorf("%s is %dx%d: %w", file, b.Dx(), b.Dy(), ErrImageTooLarge)
	}
	return img, nil
}

// checkTGADepth reads the pixel depth byte of a TGA header.
func checkTGADepth(data []byte) error {
	const headerSize, depthOffset = 18, 16
	if len(data) < headerSize {
		return ErrUnsupportedFormat
	}
	if d := data[depthOffset]; d != 24 && d != 32 {
		return fmt.Errorf("%w (got %d)", ErrUnsupportedDepth, d)
	}
	return nil
}
