package optwire

import (
	"fmt"
	"strings"
)

type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing is the sentinel stored for absent or null values. Absence of a key
// and an explicit null are deliberately indistinguishable after decoding.
var Missing any = missing{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}

// FieldValue is one decoded record field, keyed by the field's native name.
type FieldValue struct {
	Name  string
	Value any
}

// Record is the native value of a record shape. Decoding fills Fields in
// declaration order with every declared field; fields with no value hold
// Missing.
type Record struct {
	Name   string
	Fields []FieldValue
}

// NewRecord returns an empty record value for the named record shape.
func NewRecord(name string) *Record {
	return &Record{Name: name}
}

// Lookup returns the field value and whether it is present and not Missing.
func (r *Record) Lookup(name string) (any, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, f.Value != nil && !IsMissing(f.Value)
		}
	}
	return Missing, false
}

// Get returns the field value, or Missing.
func (r *Record) Get(name string) any {
	v, _ := r.Lookup(name)
	if v == nil {
		return Missing
	}
	return v
}

// Set stores v under name, replacing an existing value. It returns r so calls
// can be chained when building values by hand.
func (r *Record) Set(name string, v any) *Record {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = v
			return r
		}
	}
	r.Fields = append(r.Fields, FieldValue{Name: name, Value: v})
	return r
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", f.Name, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// AsInt reads a decoded int value. Decoding keeps json.Number as is, so
// callers that need an int64 go through here.
func AsInt(v any) (int64, bool) { return toInt(v) }

// AsFloat reads a decoded float (or int) value, including json.Number.
func AsFloat(v any) (float64, bool) { return toFloat(v) }
