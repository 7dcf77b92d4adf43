// Package optschema is the shape registry for optimization job documents
// (problem definition, result set and run status) plus a typed view of them.
package optschema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/optwire/shape"
)

//go:embed vcellopt.yaml
var schemaYAML []byte

// Record names.
const (
	RecordVcellopt                    = "Vcellopt"
	RecordOptProblem                  = "OptProblem"
	RecordCopasiOptimizationMethod    = "CopasiOptimizationMethod"
	RecordCopasiOptimizationParameter = "CopasiOptimizationParameter"
	RecordOptResultSet                = "OptResultSet"
	RecordParameterDescription        = "ParameterDescription"
	RecordReferenceVariable           = "ReferenceVariable"
)

// Enum names.
const (
	EnumStatus                = "VcelloptStatus"
	EnumOptimizationMethod    = "OptimizationMethodType"
	EnumParameterDataType     = "ParameterDataType"
	EnumParameterName         = "ParameterName"
	EnumReferenceVariableType = "ReferenceVariableType"
)

var (
	loadOnce sync.Once
	registry *shape.Registry
	loadErr  error
)

func load() (*shape.Registry, error) {
	loadOnce.Do(func() {
		registry, loadErr = shape.LoadYAML(schemaYAML)
		if loadErr != nil {
			loadErr = fmt.Errorf("optschema: embedded schema: %w", loadErr)
		}
	})
	return registry, loadErr
}

// Registry returns the resolved registry of every job shape. The embedded
// schema is built into the binary, so a load failure panics.
func Registry() *shape.Registry {
	reg, err := load()
	if err != nil {
		panic(err)
	}
	return reg
}

// Run returns the top-level job document shape.
func Run() *shape.Record {
	return MustRecord(RecordVcellopt)
}

// MustRecord returns the named record shape and panics if there is none.
func MustRecord(name string) *shape.Record {
	n, ok := Registry().Lookup(name)
	if !ok {
		panic(fmt.Sprintf("optschema: no shape named %q", name))
	}
	r, ok := n.(*shape.Record)
	if !ok {
		panic(fmt.Sprintf("optschema: %q is a %s, not a record", name, n.Kind()))
	}
	return r
}

// MustEnum returns the named enum shape and panics if there is none.
func MustEnum(name string) *shape.Enum {
	n, ok := Registry().Lookup(name)
	if !ok {
		panic(fmt.Sprintf("optschema: no shape named %q", name))
	}
	e, ok := n.(*shape.Enum)
	if !ok {
		panic(fmt.Sprintf("optschema: %q is a %s, not an enum", name, n.Kind()))
	}
	return e
}
