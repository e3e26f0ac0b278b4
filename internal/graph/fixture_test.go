package graph

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/google/uuid"
	"github.com/specialistvlad/texgraphgo/internal/assetpath"
	"github.com/specialistvlad/texgraphgo/internal/assets"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/require"
)

const (
	uidOutputSize = 1
	uidSeed       = 2
	uidRoughness  = 11
	uidTiles      = 12
	uidMask       = 13
	uidBaseColor  = 101
	uidNormal     = 102
)

type fakeImage struct {
	name string
	err  error
}

func (f *fakeImage) FullName() string { return "image_input " + f.name }

func (f *fakeImage) Prepare() (*image.RGBA, error) {
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

var errDecode = errors.New("decode failed")

func newWoodDesc() *Desc {
	return &Desc{
		URL:   "pkg://wood/main",
		Label: "Wood",
		Inputs: []*InputDesc{
			{UID: uidOutputSize, Identifier: OutputSizeIdentifier, Kind: value.Int2, Widget: WidgetOutputSize,
				Default: value.Ints(8, 8), Heavy: true, AlteredOutputs: []uint32{uidBaseColor, uidNormal}},
			{UID: uidSeed, Identifier: RandomSeedIdentifier, Kind: value.Int, Default: value.Ints(0),
				AlteredOutputs: []uint32{uidBaseColor, uidNormal}},
			{UID: uidRoughness, Identifier: "roughness", Label: "Roughness", Kind: value.Float, Widget: WidgetSlider,
				Min: value.Floats(0), Max: value.Floats(1), Clamped: true, Default: value.Floats(0.5),
				AlteredOutputs: []uint32{uidBaseColor, uidNormal}},
			{UID: uidTiles, Identifier: "tiles", Kind: value.Int, Widget: WidgetCombobox, Default: value.Ints(4),
				Heavy: true, AlteredOutputs: []uint32{uidBaseColor}, Items: map[int32]string{4: "Four"}},
			{UID: uidMask, Identifier: "mask", Kind: value.Image, Widget: WidgetImage,
				AlteredOutputs: []uint32{uidBaseColor, uidNormal}},
		},
		Outputs: []*OutputDesc{
			{UID: uidNormal, Identifier: "normal", Format: assets.FormatRGBA8, Channel: ChannelNormal},
			{UID: uidBaseColor, Identifier: "basecolor", Format: assets.FormatRGBA8, Channel: ChannelBaseColor},
		},
	}
}

type fixture struct {
	ctx   context.Context
	store *assets.Store
	pkg   *Package
	desc  *Desc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pkg := NewPackage("wood", "wood.pkg.hcl", []byte("link"))
	d := newWoodDesc()
	pkg.AddGraph(d)
	d.CommitInputs()
	d.CommitOutputs()
	return &fixture{ctx: context.Background(), store: assets.NewStore(), pkg: pkg, desc: d}
}

func (f *fixture) container(t *testing.T, name string) *Container {
	t.Helper()
	obj, err := f.store.Create(assetpath.New("Game", name), assets.KindGraphInstance, assets.Standalone)
	require.NoError(t, err)
	return NewContainer(f.store, obj)
}

func (f *fixture) instance(t *testing.T, name string, createOutputs bool) *Instance {
	t.Helper()
	inst, err := f.desc.Instantiate(f.ctx, f.container(t, name), createOutputs, true, true)
	require.NoError(t, err)
	return inst
}

type recordingObserver struct {
	deleted []uuid.UUID
}

func (r *recordingObserver) NotifyDeleted(id uuid.UUID) { r.deleted = append(r.deleted, id) }
