package shape

import "fmt"

// Field is one declared member of a Record.
//
// Key is the literal JSON object key. Name is the native field name used by
// record values. Required only matters when the engine runs with strict
// presence checks; otherwise an absent key decodes to the missing sentinel.
type Field struct {
	Key      string
	Name     string
	Shape    Shape
	Required bool
}

// Record is a named, ordered set of fields.
type Record struct {
	name   string
	fields []Field
	byKey  map[string]int
	byName map[string]int
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) shape()     {}

// NewRecord builds a record shape. Keys and names must be unique within the
// record; an empty Name defaults to the Key.
func NewRecord(name string, fields ...Field) (*Record, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	r := &Record{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		byKey:  make(map[string]int, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Key == "" {
			return nil, fmt.Errorf("shape: record %s: field with empty key", name)
		}
		if f.Shape == nil {
			return nil, fmt.Errorf("shape: record %s: field %q has no shape", name, f.Key)
		}
		if f.Name == "" {
			f.Name = f.Key
		}
		if _, dup := r.byKey[f.Key]; dup {
			return nil, fmt.Errorf("%w %q in record %s", ErrDuplicateKey, f.Key, name)
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, fmt.Errorf("shape: record %s: duplicate field name %q", name, f.Name)
		}
		r.byKey[f.Key] = len(r.fields)
		r.byName[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// MustRecord is like NewRecord but panics on error.
func MustRecord(name string, fields ...Field) *Record {
	r, err := NewRecord(name, fields...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Record) Name() string { return r.name }

// NumField returns the number of declared fields.
func (r *Record) NumField() int { return len(r.fields) }

// Field returns the i'th field in declaration order.
func (r *Record) Field(i int) Field { return r.fields[i] }

// Fields returns a copy of the declared fields.
func (r *Record) Fields() []Field { return append([]Field(nil), r.fields...) }

// FieldByKey finds a field by its wire key.
func (r *Record) FieldByKey(key string) (Field, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// FieldByName finds a field by its native name.
func (r *Record) FieldByName(name string) (Field, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}
