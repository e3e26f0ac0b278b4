package graph

import (
	"github.com/specialistvlad/texgraphgo/internal/preset"
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// ReadPreset snapshots every input value of the instance.
func (i *Instance) ReadPreset() *preset.Preset {
	p := &preset.Preset{PackageURL: i.packageURL, Label: i.Label()}
	for _, in := range i.Inputs {
		d := in.Desc()
		v := preset.Value{Identifier: d.Identifier, UID: d.UID, Kind: d.Kind}
		switch typed := in.(type) {
		case *NumericalInput:
			v.Value = typed.Value
		case *ImageInput:
			if typed.Source != nil {
				v.Image = typed.Source.FullName()
			}
		}
		p.Values = append(p.Values, v)
	}
	return p
}

// ApplyPreset replays numerical values from p onto the instance. Inputs are
// matched by identifier, then by uid; values are converted to the target
// kind and clamped. Image entries are skipped. It bypasses the frozen flag
// and returns how many outputs were marked dirty.
func (i *Instance) ApplyPreset(p *preset.Preset) int {
	dirty := map[uint32]struct{}{}
	for _, in := range i.Inputs {
		num, ok := in.(*NumericalInput)
		if !ok {
			continue
		}
		pv, found := p.Find(num.desc.Identifier)
		if !found {
			pv, found = p.FindUID(num.desc.UID)
		}
		if !found || !pv.Kind.IsNumerical() || !compatible(pv.Kind, num.desc.Kind) {
			continue
		}
		if !i.assign(num, pv.Value) {
			continue
		}
		i.markAltered(num.desc)
		for _, uid := range num.desc.AlteredOutputs {
			if out := i.GetOutput(uid); out != nil && out.Enabled {
				dirty[uid] = struct{}{}
			}
		}
	}
	return len(dirty)
}

// compatible allows a stored value to land on an input of the same width.
// Float and integer families convert into each other.
func compatible(from, to value.Kind) bool {
	return from.Components() == to.Components()
}
