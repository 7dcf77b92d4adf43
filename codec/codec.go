// Package codec turns values into bytes and back. The tree codecs here
// (JSON, CBOR, Msgpack, StructValue) carry the JSON value trees that the
// optwire engine consumes and produces:
//
//	nil | bool | number | string | []any | map[string]any
//
// JSON keeps numbers as json.Number so numeric text survives a decode. The
// binary codecs normalize json.Number to int64/float64 before encoding and may
// hand back any Go integer or float kind on decode; the engine accepts all of
// them.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
