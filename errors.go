package optwire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota + 1
	UnknownEnumValue
	InvalidTimestamp
	MissingRequiredField
	// InvalidShape means the shape graph itself is unusable, e.g. a
	// reference that was never resolved.
	InvalidShape
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case UnknownEnumValue:
		return "unknown enum value"
	case InvalidTimestamp:
		return "invalid timestamp"
	case MissingRequiredField:
		return "missing required field"
	case InvalidShape:
		return "invalid shape"
	default:
		return "unknown error kind " + strconv.Itoa(int(k))
	}
}

// Sentinels for errors.Is. Every *Error unwraps to the one matching its Kind.
var (
	ErrTypeMismatch         = errors.New("optwire: type mismatch")
	ErrUnknownEnumValue     = errors.New("optwire: unknown enum value")
	ErrInvalidTimestamp     = errors.New("optwire: invalid timestamp")
	ErrMissingRequiredField = errors.New("optwire: missing required field")
	ErrInvalidShape         = errors.New("optwire: invalid shape")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case TypeMismatch:
		return ErrTypeMismatch
	case UnknownEnumValue:
		return ErrUnknownEnumValue
	case InvalidTimestamp:
		return ErrInvalidTimestamp
	case MissingRequiredField:
		return ErrMissingRequiredField
	case InvalidShape:
		return ErrInvalidShape
	default:
		return nil
	}
}

// PathElem is one step into a value tree: an object key or an array index.
type PathElem struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a value inside a tree. The empty path is the root.
type Path []PathElem

// String renders the path as optProblem.dataSet[3][1]; the root is "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, e := range p {
		switch {
		case e.IsIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(e.Index))
			b.WriteByte(']')
		case i == 0:
			b.WriteString(e.Key)
		default:
			b.WriteByte('.')
			b.WriteString(e.Key)
		}
	}
	return b.String()
}

// Error is a structured decode failure.
type Error struct {
	Kind  ErrorKind
	Path  Path
	Shape string // type expression of the expected shape
	Got   string // JSON kind (or offending text) actually found
	Err   error  // underlying cause, e.g. rfc3339.ErrRange
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("optwire: ")
	b.WriteString(e.Kind.String())
	b.WriteString(" at ")
	b.WriteString(e.Path.String())
	if e.Shape != "" {
		b.WriteString(": want ")
		b.WriteString(e.Shape)
	}
	if e.Got != "" {
		b.WriteString(", got ")
		b.WriteString(e.Got)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ContractError is the panic value raised by Encode when a native value does
// not match its declared shape. TryEncode returns it as an error instead.
type ContractError struct {
	Path   Path
	Shape  string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("optwire: encode contract violation at %s (%s): %s", e.Path, e.Shape, e.Reason)
}
