// Package shape describes the structural types the optwire engine converts.
//
// A Shape is a closed tagged variant:
//
//	Primitive   bool | int | float | string | any
//	Timestamp   RFC3339 instant with a fixed offset
//	Enum        named, ordered (wire string, symbol) pairs
//	Record      named, ordered fields (wire key, name, shape, required)
//	SequenceOf  []S
//	MappingOf   map[string]S
//	OptionalOf  ?S
//	Ref         late-bound reference to a named Enum or Record
//
// Shapes are immutable once built. Self-referential or mutually recursive
// records are expressed with Ref and bound once by Registry.Resolve; after
// that a shape graph is safe for unsynchronized concurrent reads.
package shape

import "fmt"

// Kind identifies a Shape variant.
type Kind int

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindTimestamp
	KindEnum
	KindRecord
	KindSequence
	KindMapping
	KindOptional
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindTimestamp:
		return "timestamp"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindOptional:
		return "optional"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}

// Shape is implemented by every variant in this package only.
type Shape interface {
	Kind() Kind
	shape()
}

// Named shapes can be registered and referenced by name.
type Named interface {
	Shape
	Name() string
}

// Scalar is the type of a primitive shape.
type Scalar int

const (
	ScalarBool Scalar = iota + 1
	ScalarInt
	ScalarFloat
	ScalarString
	ScalarAny // opaque JSON value, passed through untouched
)

func (s Scalar) String() string {
	switch s {
	case ScalarBool:
		return "bool"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarString:
		return "string"
	case ScalarAny:
		return "any"
	default:
		return fmt.Sprintf("scalar(%d)", int(s))
	}
}

// Primitive is a scalar shape.
type Primitive struct {
	Scalar Scalar
}

func (Primitive) Kind() Kind { return KindPrimitive }
func (Primitive) shape()     {}

var (
	boolShape   = Primitive{Scalar: ScalarBool}
	intShape    = Primitive{Scalar: ScalarInt}
	floatShape  = Primitive{Scalar: ScalarFloat}
	stringShape = Primitive{Scalar: ScalarString}
	anyShape    = Primitive{Scalar: ScalarAny}
)

func Bool() Shape   { return boolShape }
func Int() Shape    { return intShape }
func Float() Shape  { return floatShape }
func String() Shape { return stringShape }
func Any() Shape    { return anyShape }

// TimestampShape is an RFC3339 date-time carried as a JSON string.
type TimestampShape struct{}

func (TimestampShape) Kind() Kind { return KindTimestamp }
func (TimestampShape) shape()     {}

func Timestamp() Shape { return TimestampShape{} }

// Sequence is an ordered list of Elem.
type Sequence struct {
	Elem Shape
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) shape()     {}

// Mapping is a string-keyed map of Elem.
type Mapping struct {
	Elem Shape
}

func (*Mapping) Kind() Kind { return KindMapping }
func (*Mapping) shape()     {}

// Optional admits null (or absence) in place of Elem.
type Optional struct {
	Elem Shape
}

func (*Optional) Kind() Kind { return KindOptional }
func (*Optional) shape()     {}

func SequenceOf(elem Shape) *Sequence { return &Sequence{Elem: mustElem(elem, "sequence")} }
func MappingOf(elem Shape) *Mapping   { return &Mapping{Elem: mustElem(elem, "mapping")} }
func OptionalOf(elem Shape) *Optional { return &Optional{Elem: mustElem(elem, "optional")} }

func mustElem(s Shape, of string) Shape {
	if s == nil {
		panic("shape: nil element shape for " + of)
	}
	return s
}

// RefShape names an Enum or Record that is bound later by Registry.Resolve.
type RefShape struct {
	name   string
	target Named
}

func (*RefShape) Kind() Kind { return KindRef }
func (*RefShape) shape()     {}

// Ref returns an unbound reference to the named shape.
func Ref(name string) *RefShape { return &RefShape{name: name} }

func (r *RefShape) Name() string { return r.name }

// Target returns the bound shape, or nil if the reference is still dangling.
func (r *RefShape) Target() Named { return r.target }

// Deref follows references until it reaches a non-reference shape.
// ok is false if a dangling reference was hit.
func Deref(s Shape) (Shape, bool) {
	for {
		r, isRef := s.(*RefShape)
		if !isRef {
			return s, s != nil
		}
		if r.target == nil {
			return r, false
		}
		s = r.target
	}
}
