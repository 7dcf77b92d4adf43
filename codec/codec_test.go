package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"status": "running",
	"count": 12,
	"ratio": 0.25,
	"ok": true,
	"none": null,
	"rows": [[1, 2.5], []],
	"byName": {"k1": -3, "k2": 1e-7}
}`

// numbersAsFloat folds every numeric kind to float64 so trees from different
// codecs compare equal.
func numbersAsFloat(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case int64:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = numbersAsFloat(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = numbersAsFloat(el)
		}
		return out
	default:
		return v
	}
}

func mustSample(t *testing.T) any {
	t.Helper()
	tree, err := JSON[any]{}.Decode([]byte(sampleDoc))
	require.NoError(t, err)
	return tree
}

func TestJSON_KeepsNumberText(t *testing.T) {
	tree := mustSample(t)
	m := tree.(map[string]any)

	assert.Equal(t, json.Number("12"), m["count"])
	assert.Equal(t, json.Number("1e-7"), m["byName"].(map[string]any)["k2"])
	assert.Nil(t, m["none"])

	out, err := JSON[any]{}.Encode(map[string]any{"n": json.Number("1e-7")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1e-7}`, string(out))
	assert.Contains(t, string(out), "1e-7")
}

func TestJSON_EncodeIsCompactAndUnescaped(t *testing.T) {
	out, err := JSON[any]{}.Encode(map[string]any{"sbml": `<sbml level="3"/>`, "n": json.Number("0.0")})
	require.NoError(t, err)
	assert.Equal(t, `{"n":0.0,"sbml":"<sbml level=\"3\"/>"}`, string(out))
}

func TestJSON_RejectsTrailingData(t *testing.T) {
	_, err := JSON[any]{}.Decode([]byte(`{"a":1} {"b":2}`))
	require.ErrorIs(t, err, ErrTrailingData)

	_, err = JSON[any]{}.Decode([]byte(`{"a":1}  ` + "\n"))
	require.NoError(t, err)

	_, err = JSON[any]{}.Decode([]byte(`{"a":`))
	require.Error(t, err)
}

func TestPlain(t *testing.T) {
	got := Plain(map[string]any{
		"i": json.Number("7"),
		"f": json.Number("7.5"),
		"l": []any{json.Number("-1"), "x"},
	})
	assert.Equal(t, map[string]any{
		"i": int64(7),
		"f": 7.5,
		"l": []any{int64(-1), "x"},
	}, got)
}

func TestTreeCodecs_RoundTrip(t *testing.T) {
	tree := mustSample(t)
	want := numbersAsFloat(tree)

	codecs := map[string]Codec[any]{
		"json":       JSON[any]{},
		"cbor":       MustCBOR[any](false),
		"cbor-det":   MustCBOR[any](true),
		"msgpack":    Msgpack[any]{},
		"protobuf":   StructValue{},
		"limit+json": Limit[any]{Inner: JSON[any]{}, MaxDecode: 1 << 10},
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(tree)
			require.NoError(t, err)
			back, err := c.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, want, numbersAsFloat(back))

			m, ok := back.(map[string]any)
			require.True(t, ok, "maps must decode as map[string]any, got %T", back)
			_, ok = m["rows"].([]any)
			assert.True(t, ok, "arrays must decode as []any")
		})
	}
}

func TestCBOR_DeterministicIsStable(t *testing.T) {
	c := MustCBOR[any](true)
	a, err := c.Encode(map[string]any{"b": 1, "a": 2, "c": []any{"x"}})
	require.NoError(t, err)
	b, err := c.Encode(map[string]any{"c": []any{"x"}, "a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLimit(t *testing.T) {
	c := Limit[any]{Inner: JSON[any]{}, MaxDecode: 8}
	_, err := c.Decode([]byte(`{"key":"much too long"}`))
	require.ErrorIs(t, err, ErrTooLarge)

	v, err := c.Decode([]byte(`[1]`))
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1")}, v)

	unlimited := Limit[any]{Inner: JSON[any]{}}
	_, err = unlimited.Decode([]byte(sampleDoc))
	require.NoError(t, err)
}
