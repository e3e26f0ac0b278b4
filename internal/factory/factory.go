package factory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/builder"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

// ImportMode tells an import whether a user is driving it.
type ImportMode int

const (
	// ImportModeInteractive creates and renders a default instance per graph.
	ImportModeInteractive ImportMode = iota
	// ImportModeReimport only builds the package; existing instances are
	// reconciled by the caller.
	ImportModeReimport
)

func (m ImportMode) String() string {
	if m == ImportModeReimport {
		return "reimport"
	}
	return "interactive"
}

// InstanceSuffix is appended to the graph label to name default instances.
const InstanceSuffix = "_INST"

// ErrImportCancelled is returned when every graph of an interactive import
// was declined.
var ErrImportCancelled = errors.New("import cancelled")

// RootDir is the asset directory packages are imported under.
var RootDir = assetpath.New("Game")

// Prompter is asked once per graph during an interactive import.
type Prompter interface {
	ConfirmGraph(ctx context.Context, d *graph.Desc) bool
}

// AcceptAll is a Prompter that confirms every graph.
type AcceptAll struct{}

// ConfirmGraph implements Prompter.
func (AcceptAll) ConfirmGraph(context.Context, *graph.Desc) bool { return true }

// Factory imports packages into a store.
type Factory struct {
	store    *assets.Store
	loader   config.Loader
	renderer *render.Renderer
	prompter Prompter

	packages map[string]*graph.Package
}

// New creates a factory. A nil prompter accepts every graph.
func New(store *assets.Store, loader config.Loader, renderer *render.Renderer, prompter Prompter) *Factory {
	if prompter == nil {
		prompter = AcceptAll{}
	}
	return &Factory{
		store:    store,
		loader:   loader,
		renderer: renderer,
		prompter: prompter,
		packages: make(map[string]*graph.Package),
	}
}

// Store returns the asset store the factory imports into.
func (f *Factory) Store() *assets.Store { return f.store }

// Loader returns the configuration loader.
func (f *Factory) Loader() config.Loader { return f.loader }

// PackageDir is the asset directory of the package named name.
func PackageDir(name string) assetpath.Path {
	return RootDir.Join(assetpath.Sanitize(name))
}

// Package returns the imported package named name.
func (f *Factory) Package(name string) (*graph.Package, bool) {
	pkg, ok := f.packages[name]
	return pkg, ok
}

// PackageByFile returns the imported package whose manifest is file.
func (f *Factory) PackageByFile(file string) (*graph.Package, bool) {
	abs, _ := filepath.Abs(file)
	for _, pkg := range f.packages {
		if p, _ := filepath.Abs(pkg.SourcePath); p == abs {
			return pkg, true
		}
	}
	return nil, false
}

// ImportPackage loads the manifest at file and builds the package named
// name. The returned package replaces any earlier one of that name in the
// factory; the caller owns the earlier one. In interactive mode a default
// instance is created and rendered for every confirmed graph.
func (f *Factory) ImportPackage(ctx context.Context, name, file string, mode ImportMode) (*graph.Package, []*graph.Instance, error) {
	ctx = ctxlog.With(ctx, "package", name, "mode", mode.String())
	logger := ctxlog.FromContext(ctx)

	manifest, err := f.loader.LoadPackage(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	pkg, err := builder.BuildPackage(ctx, name, manifest)
	if err != nil {
		return nil, nil, err
	}
	if !pkg.IsValid() {
		return nil, nil, fmt.Errorf("package %s has no graphs", file)
	}
	if err := f.ensurePackageObject(name); err != nil {
		return nil, nil, err
	}

	if mode == ImportModeReimport {
		f.packages[name] = pkg
		logger.Info("Package rebuilt for reimport.", "graphs", len(pkg.Graphs))
		return pkg, nil, nil
	}

	var created []*graph.Instance
	for _, d := range pkg.Graphs {
		if !f.prompter.ConfirmGraph(ctx, d) {
			logger.Info("Graph declined, no default instance created.", "graph", d.URL)
			continue
		}
		inst, err := f.createDefaultInstance(ctx, d)
		if err != nil {
			for _, done := range created {
				f.discard(ctx, done)
			}
			return nil, nil, err
		}
		created = append(created, inst)
	}
	if len(created) == 0 {
		pkg.Destroy()
		return nil, nil, ErrImportCancelled
	}
	f.packages[name] = pkg

	if f.renderer != nil && pkg.HasLinkData() {
		f.renderer.PushAll(ctx, created)
		if _, err := f.renderer.Run(ctx, render.RunOptions{}); err != nil {
			logger.Error("Initial render of imported package failed.", "error", err, "code", render.Code(err))
		}
	}
	logger.Info("Package imported.", "graphs", len(pkg.Graphs), "instances", len(created))
	return pkg, created, nil
}

// Forget drops the package named name from the factory without destroying
// it.
func (f *Factory) Forget(name string) {
	delete(f.packages, name)
}

// PackageObjectPath is where the package object of name lives. Sanitized
// instance names never contain '.', so it cannot collide with a container.
func PackageObjectPath(name string) assetpath.Path {
	return PackageDir(name).Join(assetpath.Sanitize(name) + ".pkg")
}

func (f *Factory) ensurePackageObject(name string) error {
	path := PackageObjectPath(name)
	if f.store.Exists(path) {
		return nil
	}
	_, err := f.store.Create(path, assets.KindPackage, assets.Standalone)
	return err
}

// DefaultInstanceName is the container name of the default instance of d.
func DefaultInstanceName(d *graph.Desc) string {
	return assetpath.Sanitize(d.Label) + InstanceSuffix
}

// StripInstanceSuffix is the inverse of DefaultInstanceName's suffixing.
func StripInstanceSuffix(name string) string {
	return strings.TrimSuffix(name, InstanceSuffix)
}

func (f *Factory) createDefaultInstance(ctx context.Context, d *graph.Desc) (*graph.Instance, error) {
	c, err := f.NewContainer(PackageDir(d.Package().Name).Join(DefaultInstanceName(d)))
	if err != nil {
		return nil, err
	}
	inst, err := d.Instantiate(ctx, c, true, true, true)
	if err != nil {
		f.discardContainer(ctx, c)
		return nil, err
	}
	c.MarkModified()
	ctxlog.FromContext(ctx).Debug("Default instance created.", "instance", c.Path().String(), "graph", d.URL)
	return inst, nil
}

// discard destroys an instance that never made it out of the factory and
// removes its container and textures from the store.
func (f *Factory) discard(ctx context.Context, inst *graph.Instance) {
	c := inst.Container()
	var textures []*assets.Object
	for _, out := range inst.Outputs {
		if out.Texture == nil {
			continue
		}
		if tex := out.Texture.Get(); tex != nil {
			textures = append(textures, tex.Object)
			out.Texture.Clear()
		}
	}
	inst.Destroy(ctx)
	for _, o := range textures {
		f.release(ctx, o)
	}
	if c != nil {
		f.discardContainer(ctx, c)
	}
}

func (f *Factory) discardContainer(ctx context.Context, c *graph.Container) {
	c.Unbind()
	f.release(ctx, c.Object())
}

// release deletes o, or leaves it to the garbage collector while something
// still references it.
func (f *Factory) release(ctx context.Context, o *assets.Object) {
	o.ClearFlags(assets.Standalone)
	if err := f.store.Delete(ctx, o); err != nil {
		ctxlog.FromContext(ctx).Warn("Asset left for garbage collection.", "path", o.Path().String(), "error", err)
	}
}

// NewContainer stores a new graph-instance object at a unique path derived
// from path.
func (f *Factory) NewContainer(path assetpath.Path) (*graph.Container, error) {
	obj, err := f.store.Create(f.store.UniquePath(path), assets.KindGraphInstance, assets.Standalone)
	if err != nil {
		return nil, err
	}
	return graph.NewContainer(f.store, obj), nil
}
