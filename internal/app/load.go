package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/factory"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/imageinput"
	"github.com/specialistvlad/texgraphgo/internal/reimport"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

var (
	imagesDir    = factory.RootDir.Join("Images")
	materialsDir = factory.RootDir.Join("Materials")
)

// Load creates the backend and renderer, imports every image and package of
// the project, creates the declared instances and renders them once.
func (a *App) Load(ctx context.Context) error {
	if a.loaded {
		return nil
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	name, opts := a.backendOptions()
	backend, err := a.registry.NewBackend(ctx, name, opts)
	if err != nil {
		return fmt.Errorf("failed to create %q backend: %w", name, err)
	}
	a.backend = backend
	a.renderer = render.New(ctx, backend)
	if a.config.OutDir != "" {
		a.renderer.SetRenderCallbacks(newExporter(a.config.OutDir))
	}
	codec, _ := a.registry.Codec(imageCodec)
	a.importer = imageinput.NewImporter(a.store, a.registry.Decoders(), codec)
	a.factory = factory.New(a.store, a.loader, a.renderer, nil)
	a.reconciler = reimport.New(a.factory, a.renderer, reimport.Options{Strict: a.config.Strict})
	a.loaded = true
	logger.Info("Renderer ready.", "backend", name, "workers", opts.Workers)

	for _, img := range a.project.Images {
		if err := a.importImage(ctx, img); err != nil {
			return err
		}
	}
	var declared []*graph.Instance
	for _, ref := range a.project.Packages {
		insts, err := a.importPackage(ctx, ref)
		if err != nil {
			return err
		}
		declared = append(declared, insts...)
	}
	for _, m := range a.project.Materials {
		if err := a.createMaterial(m); err != nil {
			return err
		}
	}

	if n := a.renderer.PushAll(ctx, declared); n > 0 {
		id, err := a.renderer.Run(ctx, render.RunOptions{})
		if err != nil {
			logger.Error("Initial render failed.", "run_id", id, "error", err, "code", render.Code(err))
			if !a.config.Watch {
				return fmt.Errorf("initial render failed: %w", err)
			}
		}
	}
	logger.Info("Project loaded.", "instances", len(a.instances), "assets", len(a.store.Paths()))
	return nil
}

func (a *App) importImage(ctx context.Context, img *config.ImageInput) error {
	src, err := a.importer.Import(ctx, imagesDir.Join(assetpath.Sanitize(img.Name)), img.Source)
	if err != nil {
		return fmt.Errorf("image_input '%s': %w", img.Name, err)
	}
	a.images[img.Name] = src
	return nil
}

// importPackage imports ref and returns the instances it declares, which
// still need a render. Packages without declared instances are imported
// interactively, which creates and renders a default instance per graph.
func (a *App) importPackage(ctx context.Context, ref *config.PackageRef) ([]*graph.Instance, error) {
	mode := factory.ImportModeReimport
	if len(ref.Instances) == 0 {
		mode = factory.ImportModeInteractive
	}
	pkg, defaults, err := a.factory.ImportPackage(ctx, ref.Name, ref.Source, mode)
	if errors.Is(err, factory.ErrImportCancelled) {
		a.logger.Warn("Package import cancelled.", "package", ref.Name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("package '%s': %w", ref.Name, err)
	}
	a.instances = append(a.instances, defaults...)

	var declared []*graph.Instance
	for _, def := range ref.Instances {
		inst, err := a.factory.CreateInstance(ctx, pkg, def, a.Image)
		if err != nil {
			return nil, fmt.Errorf("package '%s': %w", ref.Name, err)
		}
		declared = append(declared, inst)
	}
	a.instances = append(a.instances, declared...)
	return declared, nil
}

// createMaterial stores m and records its references to the textures it
// names, which keeps them from being deleted.
func (a *App) createMaterial(m *config.Material) error {
	obj, err := a.store.Create(a.store.UniquePath(materialsDir.Join(assetpath.Sanitize(m.Name))), assets.KindMaterial, assets.Standalone)
	if err != nil {
		return fmt.Errorf("material '%s': %w", m.Name, err)
	}
	for _, name := range m.Textures {
		tex, ok := a.findTexture(name)
		if !ok {
			return fmt.Errorf("material '%s': unknown texture %q", m.Name, name)
		}
		a.store.AddReference(obj.Path(), tex.Path())
	}
	return nil
}

func (a *App) findTexture(name string) (*assets.Texture, bool) {
	for _, raw := range a.store.Paths() {
		p, err := assetpath.Parse(raw)
		if err != nil || p.Name() != name {
			continue
		}
		if tex, ok := a.store.Texture(p); ok {
			return tex, true
		}
	}
	return nil, false
}
