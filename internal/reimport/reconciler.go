package reimport

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/factory"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/render"
)

var (
	// ErrInstancesMissing is returned when some instance of the package
	// exists without being loaded; rebuilding would lose it.
	ErrInstancesMissing = errors.New("not every instance of the package is loaded")
	// ErrUnmatchedInstances is returned in strict mode when an instance
	// could not be matched to a graph of the new package.
	ErrUnmatchedInstances = errors.New("instances could not be matched to the new package")
	// ErrCannotReimport is returned when the package source is gone or is
	// not a package manifest.
	ErrCannotReimport = errors.New("package cannot be reimported")
)

// Options tune a Reconciler.
type Options struct {
	// Strict turns any detached instance into ErrUnmatchedInstances. The
	// reimport itself still completes.
	Strict bool
}

// Report describes the outcome of one reimport.
type Report struct {
	Package *graph.Package
	Rebuilt []*graph.Instance
	// Detached lists the containers whose instance matched no graph.
	Detached []string
	// DeletedTextures lists textures of outputs the new graphs dropped.
	DeletedTextures []string
	RunID           render.RunID
	RenderErr       error
}

// Partial reports whether some instance was left detached.
func (r *Report) Partial() bool { return len(r.Detached) > 0 }

// Reconciler reimports packages.
type Reconciler struct {
	factory  *factory.Factory
	renderer *render.Renderer
	opts     Options
}

// New creates a reconciler. renderer may be nil, in which case rebuilt
// instances are left dirty.
func New(f *factory.Factory, renderer *render.Renderer, opts Options) *Reconciler {
	return &Reconciler{factory: f, renderer: renderer, opts: opts}
}

// CanReimport reports whether the source of pkg still exists and is a
// package manifest.
func (rc *Reconciler) CanReimport(pkg *graph.Package) bool {
	if pkg.SourcePath == "" || !rc.factory.Loader().IsPackageFile(pkg.SourcePath) {
		return false
	}
	info, err := os.Stat(pkg.SourcePath)
	return err == nil && !info.IsDir()
}

// Reimport rebuilds the package named name from its source file and
// reconciles every loaded instance with it.
func (rc *Reconciler) Reimport(ctx context.Context, name string) (*Report, error) {
	logger := ctxlog.FromContext(ctx).With("package", name)
	ctx = ctxlog.WithLogger(ctx, logger)

	old, ok := rc.factory.Package(name)
	if !ok {
		return nil, fmt.Errorf("package %q is not loaded", name)
	}
	if !rc.CanReimport(old) {
		return nil, fmt.Errorf("%w: %s", ErrCannotReimport, old.SourcePath)
	}
	if loaded, known := old.LoadedInstances(), old.KnownInstanceCount(); loaded != known {
		return nil, fmt.Errorf("%w: %d of %d loaded", ErrInstancesMissing, loaded, known)
	}

	backups := make([]*backup, 0, old.LoadedInstances())
	for _, inst := range old.Instances() {
		backups = append(backups, backupInstance(inst))
	}
	logger.Info("Reimporting package.", "instances", len(backups))

	pkg, _, err := rc.factory.ImportPackage(ctx, name, old.SourcePath, factory.ImportModeReimport)
	if err != nil {
		return nil, fmt.Errorf("reimport of %s failed: %w", name, err)
	}

	report := &Report{Package: pkg}
	for _, b := range backups {
		inst, deleted, err := rc.rebuild(ctx, pkg, b)
		if err != nil {
			return report, err
		}
		if inst == nil {
			report.Detached = append(report.Detached, b.container.Path().String())
			continue
		}
		report.Rebuilt = append(report.Rebuilt, inst)
		report.DeletedTextures = append(report.DeletedTextures, deleted...)
	}
	old.Destroy()

	if rc.renderer != nil && len(report.Rebuilt) > 0 {
		rc.renderer.PushAll(ctx, report.Rebuilt)
		report.RunID, report.RenderErr = rc.renderer.Run(ctx, render.RunOptions{})
		if report.RenderErr != nil {
			logger.Error("Render after reimport failed.", "error", report.RenderErr, "code", render.Code(report.RenderErr))
		}
	}

	logger.Info("Package reimported.", "rebuilt", len(report.Rebuilt), "detached", len(report.Detached), "deleted_textures", len(report.DeletedTextures))
	if report.Partial() && rc.opts.Strict {
		return report, fmt.Errorf("%w: %v", ErrUnmatchedInstances, report.Detached)
	}
	return report, nil
}

// rebuild reconciles one backed-up instance with pkg. It returns a nil
// instance when no graph matched and the container was left detached.
func (rc *Reconciler) rebuild(ctx context.Context, pkg *graph.Package, b *backup) (*graph.Instance, []string, error) {
	logger := ctxlog.FromContext(ctx).With("instance", b.container.Path().String())

	d := FindMatch(pkg, b.preset.PackageURL, b.preset.Label, b.outputs)
	if d == nil {
		if desc := b.inst.Desc(); desc != nil {
			desc.UnSubscribe(b.inst)
		}
		b.container.SetStandalone(true)
		b.container.MarkModified()
		logger.Warn("No graph of the new package matches the instance, it is left detached.", "graph", b.preset.PackageURL)
		return nil, nil, nil
	}

	b.inst.Destroy(ctx)
	inst, err := d.Instantiate(ctx, b.container, false, true, !b.frozen)
	if err != nil {
		return nil, nil, fmt.Errorf("rebuilding %s: %w", b.container.Path(), err)
	}
	inst.ApplyPreset(b.preset)

	deleted := transferOutputs(ctx, b, inst)
	transferImageInputs(ctx, b, inst)
	b.container.MarkModified()

	logger.Debug("Instance rebuilt.", "graph", d.URL, "id", inst.ID())
	return inst, deleted, nil
}
