package settings

import "github.com/specialistvlad/beamgridgo/internal/ulc"

// Section and field names recognised in a settings document.
const (
	SectionInput  = "input"
	SectionOutput = "output"

	FieldValue       = "value"
	FieldMin         = "min"
	FieldMax         = "max"
	FieldNumberSteps = "number_steps"
	FieldStepSize    = "step_size"
	FieldFunction    = "function"
)

// Settings is the validated, immutable form of a settings document.
type Settings struct {
	vars  []*Variable
	index map[string]*Variable
}

// Variable is one declared name together with how its value is produced.
type Variable struct {
	Name string
	// HasInput is true when the declaration carries an input section, even
	// an empty one. Such variables are independent and take part in the
	// combination expansion.
	HasInput bool
	Input    InputSpec
	Output   OutputSpec
}

// Independent reports whether the variable takes its value from an input.
func (v *Variable) Independent() bool { return v.HasInput }

// InputSpec is a closed set of ways to produce candidate values. The
// implementations are NoInput, FixedInput, LinspaceInput and ArangeInput.
type InputSpec interface {
	inputSpec()
}

// NoInput produces no value.
type NoInput struct{}

// FixedInput produces Value as given.
type FixedInput struct {
	Value ulc.Value
}

// LinspaceInput produces Steps evenly spaced points from Min to Max,
// both endpoints included.
type LinspaceInput struct {
	Min, Max float64
	Steps    int
}

// ArangeInput produces Min, Min+Step, ... up to Max, where Max is included
// if it is reached within half a step.
type ArangeInput struct {
	Min, Max, Step float64
}

func (NoInput) inputSpec()       {}
func (FixedInput) inputSpec()    {}
func (LinspaceInput) inputSpec() {}
func (ArangeInput) inputSpec()   {}

// OutputSpec is a closed set of ways to turn a variable's input into its
// final value: PassThrough or FormulaOutput.
type OutputSpec interface {
	outputSpec()
}

// PassThrough keeps the input value unchanged.
type PassThrough struct{}

// FormulaOutput computes the value from a formula over other variables.
type FormulaOutput struct {
	Function string
}

func (PassThrough) outputSpec()   {}
func (FormulaOutput) outputSpec() {}

func newSettings(vars []*Variable) *Settings {
	s := &Settings{vars: vars, index: make(map[string]*Variable, len(vars))}
	for _, v := range vars {
		s.index[v.Name] = v
	}
	return s
}

// Variables returns the declarations in order.
func (s *Settings) Variables() []*Variable {
	out := make([]*Variable, len(s.vars))
	copy(out, s.vars)
	return out
}

// Names returns the declared names in order.
func (s *Settings) Names() []string {
	out := make([]string, len(s.vars))
	for i, v := range s.vars {
		out[i] = v.Name
	}
	return out
}

// Lookup returns a declaration by name.
func (s *Settings) Lookup(name string) (*Variable, bool) {
	v, ok := s.index[name]
	return v, ok
}

// Has reports whether name is declared.
func (s *Settings) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Independent returns the names of variables with an input section, in
// declaration order.
func (s *Settings) Independent() []string {
	var out []string
	for _, v := range s.vars {
		if v.HasInput {
			out = append(out, v.Name)
		}
	}
	return out
}
