package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/render"
	"github.com/specialistvlad/texgraphgo/internal/watch"
)

// Run loads the project and renders it. Without watch mode it returns once
// the initial render is stored; in watch mode it keeps reimporting changed
// packages and images until ctx is done.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.Load(ctx); err != nil {
		if a.renderer != nil {
			err = errors.Join(err, a.shutdown(ctx))
		}
		return err
	}
	defer func() {
		err = errors.Join(err, a.shutdown(ctx))
	}()

	if err := a.startStatusServer(ctx); err != nil {
		return err
	}

	if !a.config.Watch {
		a.housekeeping(ctx)
		a.logger.Info("🏁 Render finished.", "instances", len(a.instances))
		return nil
	}

	w, err := watch.New(ctx)
	if err != nil {
		return err
	}
	a.watcher = w
	if err := a.watchSources(); err != nil {
		return err
	}
	a.logger.Info("👀 Watching sources for changes.", "files", w.Files())
	close(a.watching)
	return a.loop(ctx)
}

func (a *App) watchSources() error {
	for _, src := range a.images {
		if err := a.watcher.Add(src.SourceFile(), watch.KindImage); err != nil {
			return err
		}
	}
	for _, ref := range a.project.Packages {
		pkg, ok := a.factory.Package(ref.Name)
		if !ok {
			continue
		}
		if err := a.watcher.Add(pkg.SourcePath, watch.KindPackage); err != nil {
			return err
		}
	}
	return nil
}

// loop is the owner loop. Every mutation of packages and instances happens
// on its goroutine.
func (a *App) loop(ctx context.Context) error {
	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()
	events := a.watcher.Events()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stopping owner loop.")
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			a.handleChange(ctx, ev)
		case <-ticker.C:
			a.housekeeping(ctx)
		}
	}
}

// housekeeping delivers finished asynchronous runs and retries delayed
// deletions.
func (a *App) housekeeping(ctx context.Context) {
	if n := a.renderer.Tick(ctx); n > 0 {
		a.logger.Debug("Render results delivered.", "runs", n)
	}
	if a.store.PendingDeletions() > 0 {
		deleted, _ := a.store.PerformDelayedDeletion(ctx)
		if len(deleted) > 0 {
			a.logger.Info("Delayed deletion performed.", "deleted", deleted)
		}
	}
	if n := a.store.CollectGarbage(ctx); n > 0 {
		a.logger.Debug("Garbage collected.", "objects", n)
	}
}

// handleChange reimports whatever ev points at. Failures are logged; the
// previous state stays in place.
func (a *App) handleChange(ctx context.Context, ev watch.Event) {
	logger := a.logger.With("path", ev.Path, "kind", ev.Kind)
	switch ev.Kind {
	case watch.KindPackage:
		pkg, ok := a.factory.PackageByFile(ev.Path)
		if !ok {
			logger.Warn("Changed package is not loaded.")
			return
		}
		report, err := a.reconciler.Reimport(ctx, pkg.Name)
		if err != nil {
			logger.Error("Package reimport failed.", "package", pkg.Name, "error", err)
			return
		}
		a.replaceInstances(report.Rebuilt)
	case watch.KindImage:
		var dirty []*graph.Instance
		for _, src := range a.importer.FindByFile(ev.Path) {
			if !a.importer.CanReimport(src) {
				logger.Warn("Image input cannot be reimported.", "image", src.FullName())
				continue
			}
			insts, err := a.importer.Reimport(ctx, src)
			if err != nil {
				logger.Error("Image reimport failed.", "image", src.FullName(), "error", err)
				continue
			}
			dirty = append(dirty, insts...)
		}
		if a.renderer.PushAll(ctx, dirty) == 0 {
			return
		}
		if _, err := a.renderer.Run(ctx, render.RunOptions{Async: true}); err != nil {
			logger.Error("Render after image reimport failed.", "error", err)
		}
	default:
		logger.Warn("Unknown change kind.")
	}
}

// replaceInstances swaps rebuilt instances in for the ones sharing their
// container.
func (a *App) replaceInstances(rebuilt []*graph.Instance) {
	for _, inst := range rebuilt {
		for i, old := range a.instances {
			if old.Container() == inst.Container() {
				a.instances[i] = inst
			}
		}
	}
}

// shutdown waits for outstanding runs, delivers them and releases the
// backend, the watcher and the status server.
func (a *App) shutdown(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	if err := a.closeStatusServer(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close watcher: %w", err))
		}
		a.watcher = nil
	}
	flushCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.renderer.Flush(flushCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush renderer: %w", err))
	}
	a.renderer.Tick(ctx)
	if err := a.renderer.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close renderer: %w", err))
	}
	a.logger.Debug("App shut down.")
	return errors.Join(errs...)
}
