package optschema

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/optwire"
	"github.com/unkn0wn-root/optwire/shape"
)

// ErrNotJobValue is returned by the FromNative functions when a native value
// was not produced by decoding under the matching job shape.
var ErrNotJobValue = errors.New("optschema: value does not match job shape")

// Job is the typed view of a decoded Vcellopt document.
//
// Absent or null values map to nil: nil pointers for records and scalars,
// nil slices and maps, and "" for enums. Native turns them back into
// Missing, so an absent field stays absent after a round trip. Use Ptr to
// fill scalar fields by hand.
type Job struct {
	OptProblem    *OptProblem
	OptResultSet  *OptResultSet
	Status        Status
	StatusMessage *string
}

type OptProblem struct {
	CopasiOptimizationMethod *CopasiOptimizationMethod
	// DataSet rows are time points; the column order follows ReferenceVariable.
	DataSet                  [][]float64
	MathModelSbmlContents    *string
	NumberOfOptimizationRuns *int64
	ParameterDescriptionList []ParameterDescription
	ReferenceVariable        []ReferenceVariable
}

type CopasiOptimizationMethod struct {
	OptimizationMethodType OptimizationMethod
	OptimizationParameter  []CopasiOptimizationParameter
}

type CopasiOptimizationParameter struct {
	DataType  ParameterDataType
	ParamType ParameterName
	Value     *float64
}

type OptResultSet struct {
	NumFunctionEvaluations *int64
	ObjectiveFunction      *float64
	OptParameterValues     map[string]float64
}

type ParameterDescription struct {
	InitialValue *float64
	MaxValue     *float64
	MinValue     *float64
	Name         *string
	Scale        *float64
}

type ReferenceVariable struct {
	ReferenceVariableType ReferenceVariableType
	VarName               *string
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// reader pulls typed fields out of a native record and keeps the first error.
type reader struct {
	rec *optwire.Record
	err error
}

func open(v any, name string) (*reader, bool, error) {
	if v == nil || optwire.IsMissing(v) {
		return nil, false, nil
	}
	rec, ok := v.(*optwire.Record)
	if !ok {
		return nil, false, fmt.Errorf("%w: want %s record, got %T", ErrNotJobValue, name, v)
	}
	if rec.Name != name {
		return nil, false, fmt.Errorf("%w: want %s record, got %s", ErrNotJobValue, name, rec.Name)
	}
	return &reader{rec: rec}, true, nil
}

// element opens a record held in a sequence. Sequence elements cannot be
// absent in a typed job.
func element(v any, name string) (*reader, error) {
	r, ok, err := open(v, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: null %s element", ErrNotJobValue, name)
	}
	return r, nil
}

func (r *reader) fail(field string, v any, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s.%s is %T, want %s", ErrNotJobValue, r.rec.Name, field, v, want)
	}
}

func field[T any](r *reader, name string) T {
	var zero T
	v, ok := r.rec.Lookup(name)
	if !ok {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		r.fail(name, v, fmt.Sprintf("%T", zero))
		return zero
	}
	return t
}

func symbol[S ~string](r *reader, name string) S {
	return S(field[shape.Symbol](r, name))
}

func list(r *reader, name string) []any {
	return field[[]any](r, name)
}

func str(r *reader, name string) *string {
	v, ok := r.rec.Lookup(name)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(name, v, "string")
		return nil
	}
	return &s
}

func intField(r *reader, name string) *int64 {
	v, ok := r.rec.Lookup(name)
	if !ok {
		return nil
	}
	n, ok := optwire.AsInt(v)
	if !ok {
		r.fail(name, v, "int")
		return nil
	}
	return &n
}

func floatField(r *reader, name string) *float64 {
	v, ok := r.rec.Lookup(name)
	if !ok {
		return nil
	}
	f, ok := optwire.AsFloat(v)
	if !ok {
		r.fail(name, v, "float")
		return nil
	}
	return &f
}

// num reads a decoded sequence or mapping element. Elements have no slot for
// an absent value, so Missing is an error.
func num(r *reader, name string, v any) float64 {
	f, ok := optwire.AsFloat(v)
	if !ok {
		if optwire.IsMissing(v) {
			v = nil
		}
		r.fail(name, v, "float")
	}
	return f
}

// JobFromNative converts a value decoded under Run() into a Job.
func JobFromNative(v any) (Job, error) {
	r, ok, err := open(v, RecordVcellopt)
	if err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("%w: job is missing", ErrNotJobValue)
		}
		return Job{}, err
	}
	j := Job{
		Status:        symbol[Status](r, "Status"),
		StatusMessage: str(r, "StatusMessage"),
	}
	if r.err != nil {
		return Job{}, r.err
	}
	if j.OptProblem, err = optProblemFromNative(r.rec.Get("OptProblem")); err != nil {
		return Job{}, err
	}
	if j.OptResultSet, err = optResultSetFromNative(r.rec.Get("OptResultSet")); err != nil {
		return Job{}, err
	}
	return j, nil
}

func optProblemFromNative(v any) (*OptProblem, error) {
	r, ok, err := open(v, RecordOptProblem)
	if err != nil || !ok {
		return nil, err
	}
	p := &OptProblem{
		MathModelSbmlContents:    str(r, "MathModelSbmlContents"),
		NumberOfOptimizationRuns: intField(r, "NumberOfOptimizationRuns"),
	}
	if rows := list(r, "DataSet"); rows != nil {
		p.DataSet = make([][]float64, len(rows))
		for i, row := range rows {
			cols, ok := row.([]any)
			if !ok {
				r.fail("DataSet", row, "[]any")
				break
			}
			p.DataSet[i] = make([]float64, len(cols))
			for j, c := range cols {
				p.DataSet[i][j] = num(r, "DataSet", c)
			}
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	if p.CopasiOptimizationMethod, err = methodFromNative(r.rec.Get("CopasiOptimizationMethod")); err != nil {
		return nil, err
	}
	if descs := list(r, "ParameterDescriptionList"); descs != nil {
		p.ParameterDescriptionList = make([]ParameterDescription, 0, len(descs))
		for _, d := range descs {
			pd, err := parameterDescriptionFromNative(d)
			if err != nil {
				return nil, err
			}
			p.ParameterDescriptionList = append(p.ParameterDescriptionList, pd)
		}
	}
	if refs := list(r, "ReferenceVariable"); refs != nil {
		p.ReferenceVariable = make([]ReferenceVariable, 0, len(refs))
		for _, rv := range refs {
			ref, err := referenceVariableFromNative(rv)
			if err != nil {
				return nil, err
			}
			p.ReferenceVariable = append(p.ReferenceVariable, ref)
		}
	}
	return p, r.err
}

func methodFromNative(v any) (*CopasiOptimizationMethod, error) {
	r, ok, err := open(v, RecordCopasiOptimizationMethod)
	if err != nil || !ok {
		return nil, err
	}
	m := &CopasiOptimizationMethod{
		OptimizationMethodType: symbol[OptimizationMethod](r, "OptimizationMethodType"),
	}
	if params := list(r, "OptimizationParameter"); params != nil {
		m.OptimizationParameter = make([]CopasiOptimizationParameter, 0, len(params))
		for _, pv := range params {
			pr, err := element(pv, RecordCopasiOptimizationParameter)
			if err != nil {
				return nil, err
			}
			m.OptimizationParameter = append(m.OptimizationParameter, CopasiOptimizationParameter{
				DataType:  symbol[ParameterDataType](pr, "DataType"),
				ParamType: symbol[ParameterName](pr, "ParamType"),
				Value:     floatField(pr, "Value"),
			})
			if pr.err != nil {
				return nil, pr.err
			}
		}
	}
	return m, r.err
}

func optResultSetFromNative(v any) (*OptResultSet, error) {
	r, ok, err := open(v, RecordOptResultSet)
	if err != nil || !ok {
		return nil, err
	}
	rs := &OptResultSet{
		NumFunctionEvaluations: intField(r, "NumFunctionEvaluations"),
		ObjectiveFunction:      floatField(r, "ObjectiveFunction"),
	}
	if vals := field[map[string]any](r, "OptParameterValues"); vals != nil {
		rs.OptParameterValues = make(map[string]float64, len(vals))
		for k, val := range vals {
			rs.OptParameterValues[k] = num(r, "OptParameterValues", val)
		}
	}
	return rs, r.err
}

func parameterDescriptionFromNative(v any) (ParameterDescription, error) {
	r, err := element(v, RecordParameterDescription)
	if err != nil {
		return ParameterDescription{}, err
	}
	pd := ParameterDescription{
		InitialValue: floatField(r, "InitialValue"),
		MaxValue:     floatField(r, "MaxValue"),
		MinValue:     floatField(r, "MinValue"),
		Name:         str(r, "Name"),
		Scale:        floatField(r, "Scale"),
	}
	return pd, r.err
}

func referenceVariableFromNative(v any) (ReferenceVariable, error) {
	r, err := element(v, RecordReferenceVariable)
	if err != nil {
		return ReferenceVariable{}, err
	}
	rv := ReferenceVariable{
		ReferenceVariableType: symbol[ReferenceVariableType](r, "ReferenceVariableType"),
		VarName:               str(r, "VarName"),
	}
	return rv, r.err
}

func enumOrMissing[S ~string](s S) any {
	if s == "" {
		return optwire.Missing
	}
	return shape.Symbol(s)
}

func orMissing[T any](p *T) any {
	if p == nil {
		return optwire.Missing
	}
	return *p
}

// Native returns the native record value of j, ready for optwire.Encode
// under Run().
func (j Job) Native() *optwire.Record {
	rec := optwire.NewRecord(RecordVcellopt)
	if j.OptProblem != nil {
		rec.Set("OptProblem", j.OptProblem.Native())
	} else {
		rec.Set("OptProblem", optwire.Missing)
	}
	if j.OptResultSet != nil {
		rec.Set("OptResultSet", j.OptResultSet.Native())
	} else {
		rec.Set("OptResultSet", optwire.Missing)
	}
	return rec.
		Set("Status", enumOrMissing(j.Status)).
		Set("StatusMessage", orMissing(j.StatusMessage))
}

func (p *OptProblem) Native() *optwire.Record {
	rec := optwire.NewRecord(RecordOptProblem)
	if p.CopasiOptimizationMethod != nil {
		rec.Set("CopasiOptimizationMethod", p.CopasiOptimizationMethod.Native())
	} else {
		rec.Set("CopasiOptimizationMethod", optwire.Missing)
	}

	var rows any = optwire.Missing
	if p.DataSet != nil {
		seq := make([]any, len(p.DataSet))
		for i, row := range p.DataSet {
			cols := make([]any, len(row))
			for j, c := range row {
				cols[j] = c
			}
			seq[i] = cols
		}
		rows = seq
	}
	rec.Set("DataSet", rows).
		Set("MathModelSbmlContents", orMissing(p.MathModelSbmlContents)).
		Set("NumberOfOptimizationRuns", orMissing(p.NumberOfOptimizationRuns))

	var descs any = optwire.Missing
	if p.ParameterDescriptionList != nil {
		seq := make([]any, len(p.ParameterDescriptionList))
		for i, d := range p.ParameterDescriptionList {
			seq[i] = d.Native()
		}
		descs = seq
	}
	rec.Set("ParameterDescriptionList", descs)

	var refs any = optwire.Missing
	if p.ReferenceVariable != nil {
		seq := make([]any, len(p.ReferenceVariable))
		for i, rv := range p.ReferenceVariable {
			seq[i] = rv.Native()
		}
		refs = seq
	}
	return rec.Set("ReferenceVariable", refs)
}

func (m *CopasiOptimizationMethod) Native() *optwire.Record {
	var params any = optwire.Missing
	if m.OptimizationParameter != nil {
		seq := make([]any, len(m.OptimizationParameter))
		for i, p := range m.OptimizationParameter {
			seq[i] = p.Native()
		}
		params = seq
	}
	return optwire.NewRecord(RecordCopasiOptimizationMethod).
		Set("OptimizationMethodType", enumOrMissing(m.OptimizationMethodType)).
		Set("OptimizationParameter", params)
}

func (p CopasiOptimizationParameter) Native() *optwire.Record {
	return optwire.NewRecord(RecordCopasiOptimizationParameter).
		Set("DataType", enumOrMissing(p.DataType)).
		Set("ParamType", enumOrMissing(p.ParamType)).
		Set("Value", orMissing(p.Value))
}

func (rs *OptResultSet) Native() *optwire.Record {
	var vals any = optwire.Missing
	if rs.OptParameterValues != nil {
		m := make(map[string]any, len(rs.OptParameterValues))
		for k, v := range rs.OptParameterValues {
			m[k] = v
		}
		vals = m
	}
	return optwire.NewRecord(RecordOptResultSet).
		Set("NumFunctionEvaluations", orMissing(rs.NumFunctionEvaluations)).
		Set("ObjectiveFunction", orMissing(rs.ObjectiveFunction)).
		Set("OptParameterValues", vals)
}

func (d ParameterDescription) Native() *optwire.Record {
	return optwire.NewRecord(RecordParameterDescription).
		Set("InitialValue", orMissing(d.InitialValue)).
		Set("MaxValue", orMissing(d.MaxValue)).
		Set("MinValue", orMissing(d.MinValue)).
		Set("Name", orMissing(d.Name)).
		Set("Scale", orMissing(d.Scale))
}

func (rv ReferenceVariable) Native() *optwire.Record {
	return optwire.NewRecord(RecordReferenceVariable).
		Set("ReferenceVariableType", enumOrMissing(rv.ReferenceVariableType)).
		Set("VarName", orMissing(rv.VarName))
}
