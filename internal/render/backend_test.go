package render

import (
	"testing"

	"github.com/specialistvlad/texgraphgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	f := newFixture(t)
	inst := f.instance(t, "wood_INST")
	_, err := inst.SetInputValueByName("roughness", value.Floats(0.3))
	require.NoError(t, err)

	j := NewJob(inst)
	assert.Equal(t, inst.ID(), j.InstanceID)
	assert.Equal(t, "pkg://wood/main", j.GraphURL)
	assert.Equal(t, []byte("link"), j.LinkData)
	require.Len(t, j.Inputs, 2)
	assert.Equal(t, "roughness", j.Inputs[1].Identifier)
	assert.True(t, j.Inputs[1].Value.Equal(value.Floats(0.3)))
	require.Len(t, j.Outputs, 2)
	assert.Equal(t, 4, j.Outputs[0].Width)

	for _, out := range inst.Outputs {
		out.Dirty = false
	}
	inst.GetOutput(102).Enabled = false
	j = NewJob(inst)
	require.Len(t, j.Outputs, 1, "clean instances request every enabled output")
	assert.Equal(t, uint32(101), j.Outputs[0].UID)
}
