package graph

import (
	"math/rand/v2"

	"github.com/specialistvlad/texgraphgo/internal/value"
)

// Default output size, as log2 of the pixel size.
const (
	DefaultOutputSizeLog2 = 8
	MaxOutputSizeLog2     = 12
)

// GetValueString returns the display form of the input addressed by
// identifier, empty when there is no such input.
func (i *Instance) GetValueString(identifier string) string {
	in := i.GetInputByName(identifier)
	if in == nil {
		return ""
	}
	return in.ValueString()
}

// AreInputValuesEqual reports whether two inputs hold the same value.
// Inputs of different kinds are never equal; image inputs compare sources.
func AreInputValuesEqual(a, b InputInstance) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Desc().Kind != b.Desc().Kind {
		return false
	}
	switch av := a.(type) {
	case *NumericalInput:
		return av.Value.Equal(b.(*NumericalInput).Value)
	case *ImageInput:
		return av.Source == b.(*ImageInput).Source
	}
	return false
}

// OutputSize returns the render size in pixels taken from the $outputsize
// input, 256x256 when the graph has none.
func (i *Instance) OutputSize() (int, int) {
	w, h := DefaultOutputSizeLog2, DefaultOutputSizeLog2
	if in, ok := i.GetInputByName(OutputSizeIdentifier).(*NumericalInput); ok {
		w = int(in.Value.Int(0))
		if in.Value.Len() > 1 {
			h = int(in.Value.Int(1))
		} else {
			h = w
		}
	}
	return 1 << clampLog2(w), 1 << clampLog2(h)
}

func clampLog2(n int) int {
	return max(0, min(MaxOutputSizeLog2, n))
}

// RandomizeSeed draws a new $randomseed value and returns how many outputs
// were marked dirty. Graphs without a seed input are left untouched.
func (i *Instance) RandomizeSeed() (int, error) {
	in := i.GetInputByName(RandomSeedIdentifier)
	if in == nil {
		return 0, nil
	}
	seed := value.Ints(rand.Int32N(10000))
	if num, ok := in.(*NumericalInput); ok && num.Value.Equal(seed) {
		seed = value.Ints(seed.Int(0) + 1)
	}
	return i.setValue(in, seed)
}
