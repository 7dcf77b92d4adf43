package shape

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the declarative form of a schema. JSON documents are accepted
// too since YAML is a superset.
type Document struct {
	Enums   []EnumDoc   `yaml:"enums"`
	Records []RecordDoc `yaml:"records"`
}

type EnumDoc struct {
	Name   string      `yaml:"name"`
	Values []MemberDoc `yaml:"values"`
}

type MemberDoc struct {
	Wire   string `yaml:"wire"`
	Symbol string `yaml:"symbol,omitempty"` // defaults to Wire
}

type RecordDoc struct {
	Name   string     `yaml:"name"`
	Fields []FieldDoc `yaml:"fields"`
}

type FieldDoc struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name,omitempty"` // defaults to Key
	Type string `yaml:"type"`
	// Required defaults to true unless Type is optional ("?T").
	Required *bool `yaml:"required,omitempty"`
}

// LoadFile reads and builds a schema file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return LoadYAML(data)
}

// LoadYAML parses a schema document and returns a resolved registry.
func LoadYAML(data []byte) (*Registry, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return doc.Build()
}

// Build turns the document into a resolved registry.
func (d *Document) Build() (*Registry, error) {
	reg := NewRegistry()

	for _, ed := range d.Enums {
		members := make([]Member, 0, len(ed.Values))
		for _, v := range ed.Values {
			sym := v.Symbol
			if sym == "" {
				sym = v.Wire
			}
			members = append(members, Member{Wire: v.Wire, Symbol: Symbol(sym)})
		}
		e, err := NewEnum(ed.Name, members...)
		if err != nil {
			return nil, err
		}
		if err := reg.Define(e); err != nil {
			return nil, err
		}
	}

	for _, rd := range d.Records {
		fields := make([]Field, 0, len(rd.Fields))
		for _, fd := range rd.Fields {
			s, err := ParseType(fd.Type)
			if err != nil {
				return nil, fmt.Errorf("record %s, field %q: %w", rd.Name, fd.Key, err)
			}
			required := !strings.HasPrefix(strings.TrimSpace(fd.Type), "?")
			if fd.Required != nil {
				required = *fd.Required
			}
			fields = append(fields, Field{
				Key:      fd.Key,
				Name:     fd.Name,
				Shape:    s,
				Required: required,
			})
		}
		r, err := NewRecord(rd.Name, fields...)
		if err != nil {
			return nil, err
		}
		if err := reg.Define(r); err != nil {
			return nil, err
		}
	}

	if err := reg.Resolve(); err != nil {
		return nil, err
	}
	return reg, nil
}
