// This file translates decoded project blocks into the format-agnostic
// config.Project.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
)

func (l *Loader) mergeProject(ctx context.Context, p *config.Project, file string, root *projectRoot) error {
	for _, r := range root.Renderers {
		if p.Renderer != nil {
			return fmt.Errorf("%s: duplicate \"renderer\" block, only one is allowed", file)
		}
		renderer, err := translateRenderer(r)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		p.Renderer = renderer
	}

	for _, img := range root.Images {
		p.Images = append(p.Images, &config.ImageInput{Name: img.Name, Source: resolvePath(file, img.Source)})
	}

	for _, pkg := range root.Packages {
		ref := &config.PackageRef{Name: pkg.Name, Source: resolvePath(file, pkg.Source)}
		for _, inst := range pkg.Instances {
			translated, err := l.translateInstance(ctx, inst)
			if err != nil {
				return fmt.Errorf("%s: package '%s': %w", file, pkg.Name, err)
			}
			ref.Instances = append(ref.Instances, translated)
		}
		p.Packages = append(p.Packages, ref)
	}

	for _, m := range root.Materials {
		p.Materials = append(p.Materials, &config.Material{Name: m.Name, Textures: m.Textures})
	}
	return nil
}

func translateRenderer(r *rendererBlock) (*config.Renderer, error) {
	out := &config.Renderer{
		Backend:            r.Backend,
		Workers:            r.Workers,
		URL:                r.URL,
		Namespace:          r.Namespace,
		InsecureSkipVerify: r.InsecureSkipVerify,
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("renderer timeout: %w", err)
		}
		out.Timeout = d
	}
	return out, nil
}

func (l *Loader) translateInstance(ctx context.Context, b *instanceBlock) (*config.Instance, error) {
	logger := ctxlog.FromContext(ctx).With("instance", b.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	values, err := literalMap(ctx, b.Values, "values")
	if err != nil {
		return nil, fmt.Errorf("instance '%s': %w", b.Name, err)
	}
	dynamic := true
	if b.Dynamic != nil {
		dynamic = *b.Dynamic
	}
	logger.Debug("Translated instance.", "graph", b.Graph, "values", len(values), "images", len(b.Images))
	return &config.Instance{
		Name:    b.Name,
		Graph:   b.Graph,
		Dynamic: dynamic,
		Values:  values,
		Images:  b.Images,
		Outputs: b.Outputs,
	}, nil
}
