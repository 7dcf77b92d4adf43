package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

var ErrTrailingData = errors.New("codec: trailing data after JSON value")

// JSON is the text codec. Decoding uses json.Number for numbers and rejects
// anything after the first value. The zero value is ready to use.
type JSON[V any] struct{}

var _ Codec[any] = JSON[any]{}

// Encode writes compact JSON without HTML escaping, so strings such as SBML
// model text keep their '<' and '>'.
func (JSON[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		var zero V
		return zero, err
	}
	if _, err := dec.Token(); err != io.EOF {
		var zero V
		return zero, ErrTrailingData
	}
	return v, nil
}
