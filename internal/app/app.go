package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/factory"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/imageinput"
	"github.com/specialistvlad/texgraphgo/internal/registry"
	"github.com/specialistvlad/texgraphgo/internal/reimport"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/watch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   config.Loader
	project  *config.Project

	store      *assets.Store
	backend    render.Backend
	renderer   *render.Renderer
	importer   *imageinput.Importer
	factory    *factory.Factory
	reconciler *reimport.Reconciler
	watcher    *watch.Watcher
	httpServer *http.Server

	images    map[string]*imageinput.Source
	instances []*graph.Instance
	loaded    bool
	watching  chan struct{}
}

// NewApp is the constructor for the main application. It loads the project
// and registers modules; a failure there is a startup error and panics.
// Backends and assets are created by Load.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	project, err := loader.LoadProject(ctx, cfg.ProjectPath)
	if err != nil {
		panic(fmt.Errorf("failed to load project: %w", err))
	}
	logger.Debug("Project loaded.", "images", len(project.Images), "packages", len(project.Packages), "materials", len(project.Materials))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "backends", reg.Backends())

	if _, ok := reg.Codec(imageCodec); !ok {
		panic(fmt.Errorf("no %q codec registered", imageCodec))
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   loader,
		project:  project,
		store:    assets.NewStore(),
		images:   make(map[string]*imageinput.Source),
		watching: make(chan struct{}),
	}
}

// imageCodec compresses the planes of imported image inputs.
const imageCodec = "jpeg"

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Store returns the asset store.
func (a *App) Store() *assets.Store { return a.store }

// Renderer returns the renderer; nil before Load.
func (a *App) Renderer() *render.Renderer { return a.renderer }

// Factory returns the package factory; nil before Load.
func (a *App) Factory() *factory.Factory { return a.factory }

// Instances returns the graph instances the project declared.
func (a *App) Instances() []*graph.Instance { return a.instances }

// watcherReady reports whether watch mode registered every source file.
func (a *App) watcherReady() bool {
	select {
	case <-a.watching:
		return true
	default:
		return false
	}
}

// Image returns an imported image input by its project name.
func (a *App) Image(name string) (*imageinput.Source, bool) {
	src, ok := a.images[name]
	return src, ok
}

// backendOptions merges the project's renderer block with CLI overrides.
func (a *App) backendOptions() (string, registry.BackendOptions) {
	r := a.project.Renderer
	if r == nil {
		r = &config.Renderer{}
	}
	name := r.Backend
	if a.config.Backend != "" {
		name = a.config.Backend
	}
	if name == "" {
		name = "local"
	}
	opts := registry.BackendOptions{
		Workers:            r.Workers,
		URL:                r.URL,
		Namespace:          r.Namespace,
		InsecureSkipVerify: r.InsecureSkipVerify,
		Timeout:            r.Timeout,
	}
	if a.config.Workers > 0 {
		opts.Workers = a.config.Workers
	}
	return name, opts
}
