package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseKind(t *testing.T) {
	testCases := []struct {
		in       string
		expected Kind
		wantErr  bool
	}{
		{in: "float", expected: Float},
		{in: "Float3", expected: Float3},
		{in: "integer2", expected: Int2},
		{in: "int4", expected: Int4},
		{in: "image", expected: Image},
		{in: "matrix", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			k, err := ParseKind(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, k)
			assert.Equal(t, k, mustParse(t, k.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Kind {
	t.Helper()
	k, err := ParseKind(s)
	require.NoError(t, err)
	return k
}

func TestKind_Components(t *testing.T) {
	assert.Equal(t, 1, Float.Components())
	assert.Equal(t, 3, Int3.Components())
	assert.Equal(t, 0, Image.Components())
	assert.False(t, Image.IsNumerical())
	assert.True(t, Int2.IsInteger())
	assert.Equal(t, Int4, Int.WithComponents(9))
	assert.Equal(t, Float2, Float4.WithComponents(2))
}

func TestHashString(t *testing.T) {
	assert.Equal(t, "0.500000;", Floats(0.5).HashString())
	assert.Equal(t, "1.000000,2.000000;", Floats(1, 2).HashString())
	assert.Equal(t, "9,8;", Ints(9, 8).HashString())
	assert.NotEqual(t, Ints(1, 23).HashString(), Ints(12, 3).HashString())
}

func TestEqualAndConvert(t *testing.T) {
	assert.True(t, Floats(1, 2).Equal(Floats(1, 2)))
	assert.False(t, Floats(1, 2).Equal(Ints(1, 2)))

	converted := Floats(1.6, 2.2, 3).Convert(Int2)
	assert.Equal(t, Int2, converted.Kind())
	assert.Equal(t, []int32{2, 2}, converted.Ints())

	widened := Ints(4).Convert(Float3)
	assert.Equal(t, []float32{4, 0, 0}, widened.Floats())
}

func TestClamp(t *testing.T) {
	v := Floats(-1, 0.5, 2).Clamp(Floats(0, 0, 0), Floats(1, 1, 1))
	assert.Equal(t, []float32{0, 0.5, 1}, v.Floats())

	// Inverted ranges mean "unbounded".
	v = Ints(42).Clamp(Ints(10), Ints(0))
	assert.Equal(t, int32(42), v.Int(0))
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.25, 1", Floats(0.25, 1).String())
	assert.Equal(t, "9, 9", Ints(9, 9).String())
}

func TestFromCty(t *testing.T) {
	v, err := FromCty(cty.NumberFloatVal(0.25), Float)
	require.NoError(t, err)
	assert.True(t, v.Equal(Floats(0.25)))

	v, err = FromCty(cty.TupleVal([]cty.Value{cty.NumberIntVal(9), cty.NumberIntVal(10)}), Int2)
	require.NoError(t, err)
	assert.True(t, v.Equal(Ints(9, 10)))

	v, err = FromCty(cty.True, Int)
	require.NoError(t, err)
	assert.True(t, v.Equal(Ints(1)))

	_, err = FromCty(cty.TupleVal([]cty.Value{cty.NumberIntVal(9)}), Int2)
	assert.Error(t, err)

	_, err = FromCty(cty.StringVal("x"), Float)
	assert.Error(t, err)

	_, err = FromCty(cty.NumberIntVal(1), Image)
	assert.Error(t, err)
}

func TestToCty_RoundTrip(t *testing.T) {
	for _, v := range []Value{Floats(0.5), Floats(0.25, 0.5, 1, 0), Ints(3, 4)} {
		back, err := FromCty(ToCty(v), v.Kind())
		require.NoError(t, err)
		assert.True(t, v.Equal(back), "round trip of %s", v)
	}
}
