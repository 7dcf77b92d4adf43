// Package optwire implements a shape-driven converter between JSON value trees
// and native value trees. It is the interchange layer for optimization jobs:
// the concrete job schema lives in optschema, the engine itself knows no
// schema names.
//
// Components:
//   - shape: closed description of every representable type (primitive,
//     timestamp, enum, record, sequence, mapping, optional, named reference).
//   - Engine: recursive Decode/Encode driven by a shape.
//   - codec: byte <-> JSON tree codecs (JSON text, CBOR, MessagePack, Protobuf).
//   - DocumentCodec: bytes <-> native values for one root shape.
//
// Native values:
//
//	bool, string                   primitives (any: passed through)
//	json.Number                    int and float, when the tree came from JSON
//	                               text; the number text is kept (AsInt, AsFloat)
//	int64, float64                 int and float from other tree codecs
//	shape.Symbol                   enum members
//	time.Time                      timestamps, fixed offset zone
//	*Record                        records, fields in declaration order
//	[]any, map[string]any          sequences, mappings
//	Missing                        absent or null
//
// Round trip:
//
//	v, err := optwire.Decode(s, tree) // tree from codec.JSON[any]{}.Decode
//	back := optwire.Encode(s, v)      // Missing fields are omitted, not null
package optwire
