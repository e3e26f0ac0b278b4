package value

import (
	"fmt"
	"strings"
)

// Kind is the type tag of an input.
type Kind int

const (
	Float Kind = iota
	Float2
	Float3
	Float4
	Int
	Int2
	Int3
	Int4
	Image
)

var kindNames = [...]string{
	Float:  "float",
	Float2: "float2",
	Float3: "float3",
	Float4: "float4",
	Int:    "int",
	Int2:   "int2",
	Int3:   "int3",
	Int4:   "int4",
	Image:  "image",
}

// String returns the manifest spelling of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of String. It is case-insensitive and accepts
// "integer" as an alias of "int".
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Replace(s, "integer", "int", 1)
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown input type %q", s)
}

// Components returns the vector width of the kind, 0 for Image.
func (k Kind) Components() int {
	switch k {
	case Float, Int:
		return 1
	case Float2, Int2:
		return 2
	case Float3, Int3:
		return 3
	case Float4, Int4:
		return 4
	case Image:
		return 0
	}
	return 0
}

// IsNumerical reports whether the kind carries a numerical value.
func (k Kind) IsNumerical() bool {
	return k != Image && k.Components() > 0
}

// IsInteger reports whether the kind stores integer components.
func (k Kind) IsInteger() bool {
	switch k {
	case Int, Int2, Int3, Int4:
		return true
	}
	return false
}

// WithComponents returns the kind of the same family (float or integer) with
// n components. n is clamped to [1, 4].
func (k Kind) WithComponents(n int) Kind {
	n = max(1, min(4, n))
	if k.IsInteger() {
		return Int + Kind(n-1)
	}
	return Float + Kind(n-1)
}
