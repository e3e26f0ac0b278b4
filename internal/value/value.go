package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a numerical input value. The zero Value is a float scalar 0.
type Value struct {
	kind Kind
	f    [4]float32
	i    [4]int32
}

// Floats builds a float value whose width is the number of components given.
func Floats(c ...float32) Value {
	if len(c) < 1 || len(c) > 4 {
		panic(fmt.Sprintf("value: float vector of width %d", len(c)))
	}
	v := Value{kind: Float + Kind(len(c)-1)}
	copy(v.f[:], c)
	return v
}

// Ints builds an integer value whose width is the number of components given.
func Ints(c ...int32) Value {
	if len(c) < 1 || len(c) > 4 {
		panic(fmt.Sprintf("value: int vector of width %d", len(c)))
	}
	v := Value{kind: Int + Kind(len(c)-1)}
	copy(v.i[:], c)
	return v
}

// Zero returns the zero value of a numerical kind.
func Zero(k Kind) Value {
	if !k.IsNumerical() {
		panic(fmt.Sprintf("value: no zero value for %s", k))
	}
	return Value{kind: k}
}

// Kind returns the type tag of v.
func (v Value) Kind() Kind { return v.kind }

// Len returns the number of components.
func (v Value) Len() int { return v.kind.Components() }

// Float returns component n as a float64 regardless of the family.
func (v Value) Float(n int) float64 {
	if v.kind.IsInteger() {
		return float64(v.i[n])
	}
	return float64(v.f[n])
}

// Int returns component n as an int32, rounding float components.
func (v Value) Int(n int) int32 {
	if v.kind.IsInteger() {
		return v.i[n]
	}
	return int32(math.Round(float64(v.f[n])))
}

// Floats returns the components as float32.
func (v Value) Floats() []float32 {
	out := make([]float32, v.Len())
	for n := range out {
		out[n] = float32(v.Float(n))
	}
	return out
}

// Ints returns the components as int32.
func (v Value) Ints() []int32 {
	out := make([]int32, v.Len())
	for n := range out {
		out[n] = v.Int(n)
	}
	return out
}

// Set returns a copy of v with component n replaced.
func (v Value) Set(n int, x float64) Value {
	if v.kind.IsInteger() {
		v.i[n] = int32(math.Round(x))
	} else {
		v.f[n] = float32(x)
	}
	return v
}

// Equal reports whether both values have the same kind and components.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind.IsInteger() {
		return v.i == o.i
	}
	return v.f == o.f
}

// Convert returns v expressed as kind k. Shared components are kept, missing
// ones are zero, and float/integer families are converted by rounding.
func (v Value) Convert(k Kind) Value {
	out := Zero(k)
	n := min(v.Len(), k.Components())
	for c := 0; c < n; c++ {
		out = out.Set(c, v.Float(c))
	}
	return out
}

// Clamp bounds every component of v between the matching components of lo
// and hi. Components where lo > hi are left untouched.
func (v Value) Clamp(lo, hi Value) Value {
	lo, hi = lo.Convert(v.kind), hi.Convert(v.kind)
	for c := 0; c < v.Len(); c++ {
		l, h := lo.Float(c), hi.Float(c)
		if l > h {
			continue
		}
		v = v.Set(c, math.Max(l, math.Min(h, v.Float(c))))
	}
	return v
}

// String is the display form: components separated by ", ".
func (v Value) String() string {
	parts := make([]string, v.Len())
	for c := range parts {
		if v.kind.IsInteger() {
			parts[c] = strconv.FormatInt(int64(v.i[c]), 10)
		} else {
			parts[c] = strconv.FormatFloat(float64(v.f[c]), 'g', -1, 32)
		}
	}
	return strings.Join(parts, ", ")
}

// HashString is the form folded into a descriptor's heavy-input hash: the
// components separated by ',', then a ';' terminator.
func (v Value) HashString() string {
	var sb strings.Builder
	for c := 0; c < v.Len(); c++ {
		if c > 0 {
			sb.WriteByte(',')
		}
		if v.kind.IsInteger() {
			fmt.Fprintf(&sb, "%d", v.i[c])
		} else {
			fmt.Fprintf(&sb, "%f", v.f[c])
		}
	}
	sb.WriteByte(';')
	return sb.String()
}
