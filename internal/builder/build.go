package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
)

// BuildPackage constructs a package named name from m.
func BuildPackage(ctx context.Context, name string, m *config.PackageManifest) (*graph.Package, error) {
	logger := ctxlog.FromContext(ctx).With("package", name)
	logger.Debug("Build: Starting package construction.", "graphs", len(m.Graphs))

	pkg := graph.NewPackage(name, m.SourcePath, m.LinkData)
	for _, def := range m.Graphs {
		d, err := buildDesc(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("graph %q: %w", def.URL, err)
		}
		pkg.AddGraph(d)
	}
	logger.Debug("Build: Descriptor creation complete.")

	for _, d := range pkg.Graphs {
		if err := validateAlters(d); err != nil {
			return nil, fmt.Errorf("graph %q: %w", d.URL, err)
		}
		d.CommitInputs()
		d.CommitOutputs()
	}

	if !pkg.HasLinkData() {
		logger.Warn("Package has no link data, its graphs cannot be rendered.")
	}
	logger.Info("Build: Package construction successful.", "id", pkg.ID, "graphs", len(pkg.Graphs))
	return pkg, nil
}

func buildDesc(ctx context.Context, def *config.GraphDefinition) (*graph.Desc, error) {
	d := &graph.Desc{
		URL:         def.URL,
		Label:       def.Label,
		Description: def.Description,
	}
	for _, in := range def.Inputs {
		input, err := buildInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", in.Identifier, err)
		}
		d.Inputs = append(d.Inputs, input)
	}
	for _, out := range def.Outputs {
		output, err := buildOutput(out)
		if err != nil {
			return nil, fmt.Errorf("output '%s': %w", out.Identifier, err)
		}
		d.Outputs = append(d.Outputs, output)
	}
	return d, nil
}

func validateAlters(d *graph.Desc) error {
	outputs := make(map[uint32]struct{}, len(d.Outputs))
	for _, o := range d.Outputs {
		outputs[o.UID] = struct{}{}
	}
	for _, in := range d.Inputs {
		for _, uid := range in.AlteredOutputs {
			if _, ok := outputs[uid]; !ok {
				return fmt.Errorf("input '%s' alters unknown output %d", in.Identifier, uid)
			}
		}
	}
	return nil
}
