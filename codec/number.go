package codec

import "encoding/json"

// Plain returns a copy of a JSON tree with every json.Number replaced by an
// int64 (integral text) or float64. Binary formats would otherwise carry the
// number as a string. Non-tree values are returned as is.
func Plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Plain(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = Plain(el)
		}
		return out
	default:
		return v
	}
}
