package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use. Decoded integers come back as the smallest
// Go integer kind that holds them.
type Msgpack[V any] struct{}

var _ Codec[any] = Msgpack[any]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(Plain(v))
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
