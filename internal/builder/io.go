package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/zclconf/go-cty/cty"
)

func buildInput(ctx context.Context, def *config.InputDefinition) (*graph.InputDesc, error) {
	kind, err := value.ParseKind(def.Type)
	if err != nil {
		return nil, err
	}
	widget, err := graph.ParseWidget(def.Widget)
	if err != nil {
		return nil, err
	}
	in := &graph.InputDesc{
		UID:            def.UID,
		Identifier:     def.Identifier,
		Label:          def.Label,
		Group:          def.Group,
		Kind:           kind,
		Widget:         widget,
		Clamped:        def.Clamped,
		Heavy:          def.Heavy,
		AlteredOutputs: def.Alters,
		Items:          def.Items,
	}
	if in.Label == "" {
		in.Label = def.Identifier
	}

	if !kind.IsNumerical() {
		if def.Default != nil || def.Min != nil || def.Max != nil {
			ctxlog.FromContext(ctx).Warn("Ignoring numerical attributes of image input.", "input", def.Identifier)
		}
		return in, nil
	}

	if in.Default, err = typed(def.Default, kind, value.Zero(kind)); err != nil {
		return nil, fmt.Errorf("default: %w", err)
	}
	if def.Identifier == graph.OutputSizeIdentifier {
		if kind != value.Int2 {
			return nil, fmt.Errorf("%s must be int2, got %s", graph.OutputSizeIdentifier, kind)
		}
		if def.Default == nil {
			in.Default = value.Ints(graph.DefaultOutputSizeLog2, graph.DefaultOutputSizeLog2)
		}
	}
	if in.Min, err = typed(def.Min, kind, value.Zero(kind)); err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	if in.Max, err = typed(def.Max, kind, value.Zero(kind)); err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	if in.Clamped {
		if def.Min == nil || def.Max == nil {
			return nil, fmt.Errorf("clamped input needs min and max")
		}
		in.Default = in.Default.Clamp(in.Min, in.Max)
	}
	return in, nil
}

// typed converts v to kind, falling back to def when v is nil. A scalar
// given for a vector kind is broadcast to every component.
func typed(v *cty.Value, kind value.Kind, def value.Value) (value.Value, error) {
	if v == nil {
		return def, nil
	}
	if kind.Components() > 1 && v.Type() == cty.Number {
		scalar, err := value.FromCty(*v, kind.WithComponents(1))
		if err != nil {
			return value.Value{}, err
		}
		out := value.Zero(kind)
		for c := 0; c < kind.Components(); c++ {
			out = out.Set(c, scalar.Float(0))
		}
		return out, nil
	}
	return value.FromCty(*v, kind)
}

func buildOutput(def *config.OutputDefinition) (*graph.OutputDesc, error) {
	format := assets.FormatRGBA8
	if def.Format != "" {
		f, err := assets.ParseFormat(def.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	label := def.Label
	if label == "" {
		label = def.Identifier
	}
	return &graph.OutputDesc{
		UID:        def.UID,
		Identifier: def.Identifier,
		Label:      label,
		Format:     format,
		Channel:    graph.ParseChannel(def.Channel),
	}, nil
}
