package shape

import (
	"fmt"
	"strings"
)

// Describe renders s as a type expression, e.g. "[]map[string]?float".
// Named shapes render as their name, so recursive graphs terminate.
func Describe(s Shape) string {
	switch v := s.(type) {
	case nil:
		return "<nil>"
	case Primitive:
		return v.Scalar.String()
	case TimestampShape:
		return "timestamp"
	case *Enum:
		return v.name
	case *Record:
		return v.name
	case *RefShape:
		return v.name
	case *Sequence:
		return "[]" + Describe(v.Elem)
	case *Mapping:
		return "map[string]" + Describe(v.Elem)
	case *Optional:
		return "?" + Describe(v.Elem)
	default:
		return fmt.Sprintf("%T", s)
	}
}

// ParseType parses a type expression as produced by Describe. Names that are
// not built-in become unbound references.
//
//	bool | int | float | string | any | timestamp | Name | []T | map[string]T | ?T
func ParseType(expr string) (Shape, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "":
		return nil, fmt.Errorf("shape: empty type expression")
	case strings.HasPrefix(s, "[]"):
		elem, err := ParseType(s[2:])
		if err != nil {
			return nil, err
		}
		return SequenceOf(elem), nil
	case strings.HasPrefix(s, "map["):
		rest, ok := strings.CutPrefix(s, "map[string]")
		if !ok {
			return nil, fmt.Errorf("shape: %q: mapping keys must be string", expr)
		}
		elem, err := ParseType(rest)
		if err != nil {
			return nil, err
		}
		return MappingOf(elem), nil
	case strings.HasPrefix(s, "?"):
		elem, err := ParseType(s[1:])
		if err != nil {
			return nil, err
		}
		return OptionalOf(elem), nil
	}

	switch s {
	case "bool":
		return Bool(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "string":
		return String(), nil
	case "any":
		return Any(), nil
	case "timestamp":
		return Timestamp(), nil
	}
	if !isIdent(s) {
		return nil, fmt.Errorf("shape: invalid type name %q", s)
	}
	return Ref(s), nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
