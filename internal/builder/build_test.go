package builder

import (
	"context"
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/config"
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func ptr(v cty.Value) *cty.Value { return &v }

func manifest() *config.PackageManifest {
	return &config.PackageManifest{
		FormatVersion: "1.0.0",
		SourcePath:    "/pkgs/wood.pkg.hcl",
		LinkData:      []byte("bin"),
		Graphs: []*config.GraphDefinition{{
			URL:   "pkg://wood/main",
			Label: "Wood",
			Inputs: []*config.InputDefinition{
				{Identifier: "tint", UID: 20, Type: "float3", Widget: "color", Default: ptr(cty.NumberFloatVal(0.5))},
				{Identifier: "roughness", UID: 11, Type: "float", Min: ptr(cty.Zero), Max: ptr(cty.NumberIntVal(1)), Clamped: true, Default: ptr(cty.NumberIntVal(3)), Alters: []uint32{101}},
				{Identifier: graph.OutputSizeIdentifier, UID: 1, Type: "int2", Widget: "outputsize"},
				{Identifier: "mask", UID: 13, Type: "image", Widget: "image", Heavy: true},
			},
			Outputs: []*config.OutputDefinition{
				{Identifier: "basecolor", UID: 101, Channel: "basecolor"},
				{Identifier: "height", UID: 102, Format: "l16", Label: "Height"},
			},
		}},
	}
}

func TestBuildPackage(t *testing.T) {
	pkg, err := BuildPackage(context.Background(), "wood", manifest())
	require.NoError(t, err)

	assert.Equal(t, "wood", pkg.Name)
	assert.True(t, pkg.HasLinkData())
	require.Len(t, pkg.Graphs, 1)

	d := pkg.FindGraph("pkg://wood/main")
	require.NotNil(t, d)
	assert.Same(t, pkg, d.Package())

	tint := d.GetInputDesc(20)
	require.NotNil(t, tint)
	assert.Equal(t, value.Float3, tint.Kind)
	assert.True(t, value.Floats(0.5, 0.5, 0.5).Equal(tint.Default))

	rough := d.GetInputDescByName("roughness")
	assert.True(t, value.Floats(1).Equal(rough.Default), "default clamped into range")
	assert.Equal(t, "roughness", rough.Label)

	size := d.GetInputDesc(1)
	assert.True(t, value.Ints(8, 8).Equal(size.Default))
	assert.Equal(t, graph.WidgetOutputSize, size.Widget)

	assert.False(t, d.GetInputDesc(13).IsNumerical())

	base := d.GetOutputDesc(101)
	assert.Equal(t, assets.FormatRGBA8, base.Format)
	assert.Equal(t, graph.ChannelBaseColor, base.Channel)
	assert.Equal(t, "basecolor", base.Label)
	height := d.GetOutputDesc(102)
	assert.Equal(t, assets.FormatL16, height.Format)
	assert.Equal(t, graph.ChannelUnknown, height.Channel)
}

func TestBuildPackage_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(m *config.PackageManifest)
		expected string
	}{
		{
			name:     "unknown type",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[0].Type = "float5" },
			expected: `unknown input type "float5"`,
		},
		{
			name:     "unknown widget",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[0].Widget = "knob" },
			expected: `unknown widget "knob"`,
		},
		{
			name:     "unknown format",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Outputs[0].Format = "bc7" },
			expected: `unknown pixel format "bc7"`,
		},
		{
			name:     "altered output missing",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[1].Alters = []uint32{999} },
			expected: "alters unknown output 999",
		},
		{
			name:     "clamped without range",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[1].Max = nil },
			expected: "clamped input needs min and max",
		},
		{
			name:     "output size kind",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[2].Type = "float2" },
			expected: "$outputsize must be int2",
		},
		{
			name:     "vector default size",
			mutate:   func(m *config.PackageManifest) { m.Graphs[0].Inputs[0].Default = ptr(cty.TupleVal([]cty.Value{cty.Zero})) },
			expected: "expected 3 components",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := manifest()
			tc.mutate(m)
			_, err := BuildPackage(context.Background(), "wood", m)
			assert.ErrorContains(t, err, tc.expected)
		})
	}
}

func TestBuildPackage_NoLinkData(t *testing.T) {
	m := manifest()
	m.LinkData = nil
	pkg, err := BuildPackage(context.Background(), "wood", m)
	require.NoError(t, err)
	assert.False(t, pkg.HasLinkData())
}
