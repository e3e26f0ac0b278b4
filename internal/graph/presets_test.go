package graph

import (
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/preset"
	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadApplyPreset(t *testing.T) {
	f := newFixture(t)
	src := f.instance(t, "src", true)
	_, err := src.SetInputValueByName("roughness", value.Floats(0.25))
	require.NoError(t, err)
	_, err = src.SetInputValueByName(OutputSizeIdentifier, value.Ints(10, 10))
	require.NoError(t, err)
	src.UpdateInput(f.ctx, uidMask, &fakeImage{name: "/Game/mask"})

	p := src.ReadPreset()
	assert.Equal(t, "pkg://wood/main", p.PackageURL)
	assert.Equal(t, "src", p.Label)
	require.Len(t, p.Values, 5)
	mask, ok := p.Find("mask")
	require.True(t, ok)
	assert.Equal(t, "image_input /Game/mask", mask.Image)

	dst := f.instance(t, "dst", true)
	dst.SetFrozen(true)
	n := dst.ApplyPreset(p)
	assert.Equal(t, 2, n)
	assert.Equal(t, "0.25", dst.GetValueString("roughness"))
	assert.Equal(t, "10, 10", dst.GetValueString(OutputSizeIdentifier))
	assert.Nil(t, dst.GetInput(uidMask).(*ImageInput).Source, "image inputs are not replayed")

	assert.Zero(t, dst.ApplyPreset(p))
}

func TestApplyPreset_MatchesBySemantics(t *testing.T) {
	f := newFixture(t)
	inst := f.instance(t, "wood_INST", true)

	p := &preset.Preset{Values: []preset.Value{
		// Renamed input still found through its uid.
		{Identifier: "old_roughness", UID: uidRoughness, Kind: value.Float, Value: value.Floats(2)},
		// Width mismatch is skipped.
		{Identifier: "tiles", UID: uidTiles, Kind: value.Int2, Value: value.Ints(1, 2)},
		// Float stored for an int input converts.
		{Identifier: RandomSeedIdentifier, UID: 99, Kind: value.Float, Value: value.Floats(41.6)},
	}}

	inst.ApplyPreset(p)
	assert.Equal(t, "1", inst.GetValueString("roughness"), "clamped on replay")
	assert.Equal(t, "Four", inst.GetValueString("tiles"))
	assert.Equal(t, "42", inst.GetValueString(RandomSeedIdentifier))
}
