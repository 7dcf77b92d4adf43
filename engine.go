package optwire

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/unkn0wn-root/optwire/internal/rfc3339"
	"github.com/unkn0wn-root/optwire/shape"
)

type engine struct {
	log           Logger
	hooks         Hooks
	requireFields bool
}

// walker carries the current path through one Decode or Encode call.
type walker struct {
	e    *engine
	path Path
}

func (w *walker) push(el PathElem) { w.path = append(w.path, el) }
func (w *walker) pop()             { w.path = w.path[:len(w.path)-1] }

func (w *walker) fail(kind ErrorKind, s shape.Shape, got string, cause error) *Error {
	return &Error{
		Kind:  kind,
		Path:  append(Path(nil), w.path...),
		Shape: shape.Describe(s),
		Got:   got,
		Err:   cause,
	}
}

func (e *engine) Decode(s shape.Shape, v any) (any, error) {
	w := walker{e: e}
	out, err := w.decode(s, v)
	if err != nil {
		root := shape.Describe(s)
		e.hooks.DecodeFailed(root, err.Kind, err.Path.String())
		e.log.Debug("decode failed", Fields{
			"shape": root,
			"kind":  err.Kind.String(),
			"path":  err.Path.String(),
			"err":   err.Error(),
		})
		return nil, err
	}
	return out, nil
}

func (w *walker) decode(s shape.Shape, v any) (any, *Error) {
	resolved, ok := shape.Deref(s)
	if !ok {
		return nil, w.fail(InvalidShape, s, "", fmt.Errorf("unresolved shape %s", shape.Describe(s)))
	}

	switch sh := resolved.(type) {
	case shape.Primitive:
		return w.decodePrimitive(sh, v)
	case shape.TimestampShape:
		return w.decodeTimestamp(sh, v)
	case *shape.Enum:
		str, ok := v.(string)
		if !ok {
			return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
		}
		sym, ok := sh.Lookup(str)
		if !ok {
			return nil, w.fail(UnknownEnumValue, sh, strconv.Quote(str), nil)
		}
		return sym, nil
	case *shape.Record:
		return w.decodeRecord(sh, v)
	case *shape.Sequence:
		arr, ok := v.([]any)
		if !ok {
			return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
		}
		out := make([]any, len(arr))
		for i, el := range arr {
			w.push(PathElem{Index: i, IsIndex: true})
			dv, err := w.decode(sh.Elem, el)
			w.pop()
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	case *shape.Mapping:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
		}
		out := make(map[string]any, len(obj))
		for k, el := range obj {
			w.push(PathElem{Key: k})
			dv, err := w.decode(sh.Elem, el)
			w.pop()
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	case *shape.Optional:
		if v == nil {
			return Missing, nil
		}
		return w.decode(sh.Elem, v)
	default:
		return nil, w.fail(InvalidShape, s, "", fmt.Errorf("unsupported shape %T", resolved))
	}
}

func (w *walker) decodePrimitive(sh shape.Primitive, v any) (any, *Error) {
	if v == nil {
		return Missing, nil
	}
	switch sh.Scalar {
	case shape.ScalarAny:
		return v, nil
	case shape.ScalarBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case shape.ScalarString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case shape.ScalarInt:
		// json.Number is validated but kept, so the number text survives a
		// round trip; other numeric kinds normalize to int64.
		if n, ok := v.(json.Number); ok {
			if _, ok := toInt(n); ok {
				return n, nil
			}
			break
		}
		if n, ok := toInt(v); ok {
			return n, nil
		}
	case shape.ScalarFloat:
		if n, ok := v.(json.Number); ok {
			if _, ok := toFloat(n); ok {
				return n, nil
			}
			break
		}
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	default:
		return nil, w.fail(InvalidShape, sh, "", fmt.Errorf("unknown scalar %s", sh.Scalar))
	}
	return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
}

func (w *walker) decodeTimestamp(sh shape.TimestampShape, v any) (any, *Error) {
	str, ok := v.(string)
	if !ok {
		return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
	}
	t, clamped, err := rfc3339.Parse(str)
	if err != nil {
		return nil, w.fail(InvalidTimestamp, sh, strconv.Quote(str), err)
	}
	if clamped {
		p := w.path.String()
		w.e.hooks.LeapSecondClamped(p)
		w.e.log.Warn("leap second clamped to :59", Fields{"path": p, "value": str})
	}
	return t, nil
}

func (w *walker) decodeRecord(sh *shape.Record, v any) (any, *Error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, w.fail(TypeMismatch, sh, jsonKind(v), nil)
	}
	out := &Record{Name: sh.Name(), Fields: make([]FieldValue, 0, sh.NumField())}
	for i := 0; i < sh.NumField(); i++ {
		f := sh.Field(i)
		raw, present := obj[f.Key]
		if !present || raw == nil {
			if f.Required {
				if !present && w.e.requireFields {
					w.push(PathElem{Key: f.Key})
					err := w.fail(MissingRequiredField, f.Shape, "", nil)
					w.pop()
					return nil, err
				}
				w.e.hooks.RequiredFieldMissing(sh.Name(), f.Key)
			}
			out.Fields = append(out.Fields, FieldValue{Name: f.Name, Value: Missing})
			continue
		}
		w.push(PathElem{Key: f.Key})
		dv, err := w.decode(f.Shape, raw)
		w.pop()
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, FieldValue{Name: f.Name, Value: dv})
	}
	return out, nil
}

func (e *engine) Encode(s shape.Shape, v any) any {
	w := walker{e: e}
	return w.encode(s, v)
}

func (e *engine) TryEncode(s shape.Shape, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			out, err = nil, ce
		}
	}()
	return e.Encode(s, v), nil
}

func (w *walker) violate(s shape.Shape, format string, args ...any) {
	panic(&ContractError{
		Path:   append(Path(nil), w.path...),
		Shape:  shape.Describe(s),
		Reason: fmt.Sprintf(format, args...),
	})
}

func (w *walker) encode(s shape.Shape, v any) any {
	resolved, ok := shape.Deref(s)
	if !ok {
		w.violate(s, "unresolved shape")
	}

	switch sh := resolved.(type) {
	case shape.Primitive:
		if IsMissing(v) {
			return nil
		}
		return v
	case shape.TimestampShape:
		switch t := v.(type) {
		case time.Time:
			return rfc3339.Format(t)
		case *time.Time:
			if t != nil {
				return rfc3339.Format(*t)
			}
		}
		w.violate(sh, "want time.Time, got %T", v)
	case *shape.Enum:
		sym, ok := v.(shape.Symbol)
		if !ok {
			w.violate(sh, "want shape.Symbol, got %T", v)
		}
		wire, ok := sh.Wire(sym)
		if !ok {
			w.violate(sh, "symbol %q is not a member", sym)
		}
		return wire
	case *shape.Record:
		return w.encodeRecord(sh, v)
	case *shape.Sequence:
		arr, ok := v.([]any)
		if !ok {
			w.violate(sh, "want []any, got %T", v)
		}
		out := make([]any, len(arr))
		for i, el := range arr {
			w.push(PathElem{Index: i, IsIndex: true})
			out[i] = w.encode(sh.Elem, el)
			w.pop()
		}
		return out
	case *shape.Mapping:
		m, ok := v.(map[string]any)
		if !ok {
			w.violate(sh, "want map[string]any, got %T", v)
		}
		out := make(map[string]any, len(m))
		for k, el := range m {
			w.push(PathElem{Key: k})
			out[k] = w.encode(sh.Elem, el)
			w.pop()
		}
		return out
	case *shape.Optional:
		if v == nil || IsMissing(v) {
			return nil
		}
		return w.encode(sh.Elem, v)
	default:
		w.violate(s, "unsupported shape %T", resolved)
	}
	return nil
}

func (w *walker) encodeRecord(sh *shape.Record, v any) any {
	var rec *Record
	switch r := v.(type) {
	case *Record:
		rec = r
	case Record:
		rec = &r
	}
	if rec == nil {
		w.violate(sh, "want *optwire.Record, got %T", v)
	}
	if rec.Name != "" && rec.Name != sh.Name() {
		w.violate(sh, "record value is a %s", rec.Name)
	}
	for _, fv := range rec.Fields {
		if _, ok := sh.FieldByName(fv.Name); !ok {
			w.violate(sh, "undeclared field %q", fv.Name)
		}
	}

	out := make(map[string]any, sh.NumField())
	for i := 0; i < sh.NumField(); i++ {
		f := sh.Field(i)
		val, present := rec.Lookup(f.Name)
		if !present {
			continue
		}
		w.push(PathElem{Key: f.Key})
		out[f.Key] = w.encode(f.Shape, val)
		w.pop()
	}
	return out
}

// jsonKind names the JSON kind of a decoded tree node for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

const (
	minInt64Float = -9.223372036854775808e18
	maxInt64Float = 9.223372036854775808e18 // exclusive
)

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < minInt64Float || f >= maxInt64Float {
		return 0, false
	}
	return int64(f), true
}

// toInt accepts any numeric node with an integral value.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt(n)
	}
	return 0, false
}

func uintToInt(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// toFloat accepts any numeric node.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
