package reimport

import (
	"github.com/specialistvlad/texgraphgo/internal/graph"
	"github.com/specialistvlad/texgraphgo/internal/preset"
)

// backup is what survives of an instance while it is rebuilt.
type backup struct {
	inst      *graph.Instance
	container *graph.Container
	frozen    bool
	preset    *preset.Preset
	// outputs maps enabled output uids to their texture names. It only
	// serves as a matching hint.
	outputs map[uint32]string

	prevOutputs []*graph.OutputInstance
	prevInputs  []graph.InputInstance
}

func backupInstance(inst *graph.Instance) *backup {
	b := &backup{
		inst:        inst,
		container:   inst.Container(),
		frozen:      inst.IsFrozen(),
		preset:      inst.ReadPreset(),
		outputs:     make(map[uint32]string),
		prevOutputs: inst.Outputs,
		prevInputs:  inst.Inputs,
	}
	for _, out := range inst.Outputs {
		if !out.Enabled {
			continue
		}
		name := ""
		if tex := out.Texture.Get(); tex != nil {
			name = tex.Name()
		}
		b.outputs[out.UID] = name
	}
	return b
}

func (b *backup) previousOutput(uid uint32) *graph.OutputInstance {
	for _, out := range b.prevOutputs {
		if out.UID == uid {
			return out
		}
	}
	return nil
}
