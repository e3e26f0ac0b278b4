// Package preset holds descriptor-agnostic snapshots of graph instance input
// values. A preset is replayed onto an instance by matching input identifiers
// and converting values, never by copying raw storage, so it survives a
// descriptor being replaced by a different one.
package preset

import (
	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Value is one input of a preset.
type Value struct {
	Identifier string
	UID        uint32
	Kind       value.Kind
	// Value is set for numerical kinds.
	Value value.Value
	// Image is the qualified name of the image source for image kinds; empty
	// when the input had no image.
	Image string
}

// Preset is a named set of input values for a graph.
type Preset struct {
	PackageURL  string
	Label       string
	Description string
	Values      []Value
}

// Find returns the value stored for identifier.
func (p *Preset) Find(identifier string) (Value, bool) {
	for _, v := range p.Values {
		if v.Identifier == identifier {
			return v, true
		}
	}
	return Value{}, false
}

// FindUID returns the value stored for uid.
func (p *Preset) FindUID(uid uint32) (Value, bool) {
	for _, v := range p.Values {
		if v.UID == uid {
			return v, true
		}
	}
	return Value{}, false
}
