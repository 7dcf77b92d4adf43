package shape

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName     = errors.New("shape: empty name")
	ErrDuplicateWire = errors.New("shape: duplicate wire value")
	ErrDuplicateKey  = errors.New("shape: duplicate field key")
)

// Symbol is the native, symbolic value of an enumeration member.
type Symbol string

// Member pairs a wire string with its symbol.
type Member struct {
	Wire   string
	Symbol Symbol
}

// Enum is a string-backed enumeration. Wire lookups are exact: no case
// folding and no default member.
type Enum struct {
	name    string
	members []Member
	bySym   map[Symbol]string
	byWire  map[string]Symbol
}

func (*Enum) Kind() Kind { return KindEnum }
func (*Enum) shape()     {}

// NewEnum builds an enumeration. Wire strings and symbols must be unique.
func NewEnum(name string, members ...Member) (*Enum, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	e := &Enum{
		name:    name,
		members: append([]Member(nil), members...),
		bySym:   make(map[Symbol]string, len(members)),
		byWire:  make(map[string]Symbol, len(members)),
	}
	for _, m := range members {
		if _, dup := e.byWire[m.Wire]; dup {
			return nil, fmt.Errorf("%w %q in enum %s", ErrDuplicateWire, m.Wire, name)
		}
		if _, dup := e.bySym[m.Symbol]; dup {
			return nil, fmt.Errorf("shape: duplicate symbol %q in enum %s", m.Symbol, name)
		}
		e.byWire[m.Wire] = m.Symbol
		e.bySym[m.Symbol] = m.Wire
	}
	return e, nil
}

// MustEnum is like NewEnum but panics on error.
// Handy for package-level schema variables.
func MustEnum(name string, members ...Member) *Enum {
	e, err := NewEnum(name, members...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum) Name() string { return e.name }

// Members returns the members in declaration order.
func (e *Enum) Members() []Member { return append([]Member(nil), e.members...) }

// Lookup maps a wire string to its symbol.
func (e *Enum) Lookup(wire string) (Symbol, bool) {
	s, ok := e.byWire[wire]
	return s, ok
}

// Wire maps a symbol back to its wire string.
func (e *Enum) Wire(sym Symbol) (string, bool) {
	w, ok := e.bySym[sym]
	return w, ok
}
