package factory

import (
	"context"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/imageinput"
	"github.com/specialistvlad/texgraphgo/internal/preset"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// ImageResolver finds an imported image input by its project name.
type ImageResolver func(name string) (*imageinput.Source, bool)

// CreateInstance creates the instance def describes from pkg. Values
// overrides bypass the frozen flag; the listed outputs (all when empty) get
// textures.
func (f *Factory) CreateInstance(ctx context.Context, pkg *graph.Package, def *config.Instance, images ImageResolver) (*graph.Instance, error) {
	d := pkg.Graphs[0]
	if def.Graph != "" {
		if d = pkg.FindGraph(def.Graph); d == nil {
			return nil, fmt.Errorf("instance '%s': package %s has no graph %q", def.Name, pkg.Name, def.Graph)
		}
	}

	overrides, err := overridesPreset(d, def)
	if err != nil {
		return nil, err
	}

	c, err := f.NewContainer(PackageDir(pkg.Name).Join(assetpath.Sanitize(def.Name)))
	if err != nil {
		return nil, err
	}
	inst, err := d.Instantiate(ctx, c, false, true, def.Dynamic)
	if err != nil {
		f.discardContainer(ctx, c)
		return nil, err
	}
	fail := func(err error) (*graph.Instance, error) {
		f.discard(ctx, inst)
		return nil, fmt.Errorf("instance '%s': %w", def.Name, err)
	}

	if len(def.Outputs) == 0 {
		if err := graph.CreateTextures(ctx, inst); err != nil {
			return fail(err)
		}
	}
	for _, name := range def.Outputs {
		out := inst.GetOutputByName(name)
		if out == nil {
			return fail(fmt.Errorf("graph %s has no output %q", d.URL, name))
		}
		if err := graph.CreateTexture(ctx, out); err != nil {
			return fail(err)
		}
	}

	inst.ApplyPreset(overrides)

	for identifier, imageName := range def.Images {
		in := inst.GetInputByName(identifier)
		if in == nil || in.IsNumerical() {
			return fail(fmt.Errorf("graph %s has no image input %q", d.URL, identifier))
		}
		src, ok := images(imageName)
		if !ok {
			return fail(fmt.Errorf("unknown image input %q", imageName))
		}
		imageinput.Assign(ctx, inst, identifier, src)
	}

	ctxlog.FromContext(ctx).Info("Graph instance created.", "instance", c.Path().String(), "graph", d.URL, "frozen", inst.IsFrozen())
	return inst, nil
}

func overridesPreset(d *graph.Desc, def *config.Instance) (*preset.Preset, error) {
	p := &preset.Preset{PackageURL: d.URL, Label: def.Name}
	for identifier, raw := range def.Values {
		in := d.GetInputDescByName(identifier)
		if in == nil {
			return nil, fmt.Errorf("instance '%s': graph %s has no input %q", def.Name, d.URL, identifier)
		}
		v, err := value.FromCty(raw, in.Kind)
		if err != nil {
			return nil, fmt.Errorf("instance '%s', input '%s': %w", def.Name, identifier, err)
		}
		p.Values = append(p.Values, preset.Value{Identifier: identifier, UID: in.UID, Kind: in.Kind, Value: v})
	}
	return p, nil
}

// DuplicateInstance creates a copy of src named name next to its container.
// Input values and image inputs are copied; with withOutputs every enabled
// output of src gets a fresh texture on the copy.
func (f *Factory) DuplicateInstance(ctx context.Context, src *graph.Instance, name string, withOutputs bool) (*graph.Instance, error) {
	d := src.Desc()
	if d == nil {
		return nil, fmt.Errorf("cannot duplicate detached instance %s", src.Label())
	}
	c, err := f.NewContainer(src.Container().Path().WithName(assetpath.Sanitize(name)))
	if err != nil {
		return nil, err
	}
	dup, err := d.Instantiate(ctx, c, false, true, !src.IsFrozen())
	if err != nil {
		return nil, err
	}
	dup.ApplyPreset(src.ReadPreset())

	for _, in := range src.Inputs {
		img, ok := in.(*graph.ImageInput)
		if !ok || img.Source == nil {
			continue
		}
		if s, ok := img.Source.(*imageinput.Source); ok {
			imageinput.Assign(ctx, dup, in.Desc().Identifier, s)
		} else {
			dup.UpdateInputByName(ctx, in.Desc().Identifier, img.Source)
		}
	}

	if withOutputs {
		for _, out := range src.Outputs {
			if !out.Enabled {
				continue
			}
			if err := graph.CreateTexture(ctx, dup.GetOutput(out.UID)); err != nil {
				dup.Destroy(ctx)
				return nil, err
			}
		}
	}
	c.MarkModified()
	ctxlog.FromContext(ctx).Info("Graph instance duplicated.", "from", src.Container().Path().String(), "to", c.Path().String())
	return dup, nil
}
