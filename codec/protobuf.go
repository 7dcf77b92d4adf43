package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf encodes a concrete proto message type.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *structpb.Value { return &structpb.Value{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// StructValue carries a JSON tree as a google.protobuf.Value. Every number
// comes back as float64 since that is all the wire type has.
type StructValue struct{}

var _ Codec[any] = StructValue{}

var valueCodec = NewProtobuf(func() *structpb.Value { return &structpb.Value{} })

func (StructValue) Encode(v any) ([]byte, error) {
	pv, err := structpb.NewValue(Plain(v))
	if err != nil {
		return nil, err
	}
	return valueCodec.Encode(pv)
}

func (StructValue) Decode(b []byte) (any, error) {
	pv, err := valueCodec.Decode(b)
	if err != nil {
		return nil, err
	}
	return pv.AsInterface(), nil
}
