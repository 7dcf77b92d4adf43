package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// Limit wraps another codec and refuses to decode payloads larger than
// MaxDecode bytes, before Inner sees them. Encode is forwarded unchanged.
// MaxDecode <= 0 disables the check.
//
// Job documents come from other processes (a run store, a solver service);
// this keeps a runaway payload from being parsed into a huge tree.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

var _ Codec[any] = Limit[any]{}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
