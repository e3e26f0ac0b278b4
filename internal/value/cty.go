package value

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FromCty converts a configuration value into a Value of kind k. Scalars
// accept a number (or a bool for toggles); vectors accept a list or tuple of
// exactly k.Components() numbers.
func FromCty(val cty.Value, k Kind) (Value, error) {
	if !k.IsNumerical() {
		return Value{}, fmt.Errorf("%s inputs have no numerical value", k)
	}
	if val.IsNull() || !val.IsKnown() {
		return Value{}, fmt.Errorf("value for %s input is null or unknown", k)
	}

	if val.Type() == cty.Bool {
		if k.Components() != 1 {
			return Value{}, fmt.Errorf("bool given for %s input", k)
		}
		var b bool
		if err := gocty.FromCtyValue(val, &b); err != nil {
			return Value{}, err
		}
		if b {
			return Zero(k).Set(0, 1), nil
		}
		return Zero(k), nil
	}

	if k.Components() == 1 {
		num, err := convert.Convert(val, cty.Number)
		if err != nil {
			return Value{}, fmt.Errorf("expected a number for %s input: %w", k, err)
		}
		f, _ := num.AsBigFloat().Float64()
		return Zero(k).Set(0, f), nil
	}

	list, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return Value{}, fmt.Errorf("expected a list of numbers for %s input: %w", k, err)
	}
	if n := list.LengthInt(); n != k.Components() {
		return Value{}, fmt.Errorf("expected %d components for %s input, got %d", k.Components(), k, n)
	}
	out := Zero(k)
	c := 0
	for it := list.ElementIterator(); it.Next(); c++ {
		_, elem := it.Element()
		f, _ := elem.AsBigFloat().Float64()
		out = out.Set(c, f)
	}
	return out, nil
}

// ToCty is the inverse of FromCty: a number for scalars, a tuple otherwise.
func ToCty(v Value) cty.Value {
	num := func(c int) cty.Value {
		if v.kind.IsInteger() {
			return cty.NumberIntVal(int64(v.Int(c)))
		}
		return cty.NumberVal(new(big.Float).SetFloat64(v.Float(c)))
	}
	if v.Len() == 1 {
		return num(0)
	}
	elems := make([]cty.Value, v.Len())
	for c := range elems {
		elems[c] = num(c)
	}
	return cty.TupleVal(elems)
}
