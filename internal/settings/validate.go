package settings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

var (
	entryKeys  = keySet(SectionInput, SectionOutput)
	inputKeys  = keySet(FieldValue, FieldMin, FieldMax, FieldNumberSteps, FieldStepSize)
	outputKeys = keySet(FieldFunction)
)

// Validate checks the structure of a raw document and converts it into
// typed Settings.
//
// All entries are checked for unexpected keys first, returning a
// *StructuralError for the first offender. Only then is each input section
// matched against the recognised shapes (*UnsupportedShapeError) and each
// field type-checked (*FieldError).
func Validate(raw *Raw) (*Settings, error) {
	if raw == nil {
		return newSettings(nil), nil
	}

	seen := make(map[string]struct{}, len(raw.Entries))
	for _, e := range raw.Entries {
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("variable %q is declared more than once", e.Name)
		}
		seen[e.Name] = struct{}{}
		if err := checkNestedKeys(e); err != nil {
			return nil, err
		}
	}

	vars := make([]*Variable, 0, len(raw.Entries))
	for _, e := range raw.Entries {
		v, err := parseVariable(e)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return newSettings(vars), nil
}

func checkNestedKeys(e RawEntry) error {
	var top []string
	for _, s := range e.Sections {
		top = append(top, s.Key)
	}
	if bad := unexpected(top, entryKeys); len(bad) > 0 {
		// Report the full key set, as the operator sees it in the file.
		return &StructuralError{Variable: e.Name, Keys: top}
	}
	if in, ok := e.Section(SectionInput); ok {
		if bad := unexpected(in.FieldKeys(), inputKeys); len(bad) > 0 {
			return &StructuralError{Variable: e.Name, Keys: bad}
		}
	}
	if out, ok := e.Section(SectionOutput); ok {
		if bad := unexpected(out.FieldKeys(), outputKeys); len(bad) > 0 {
			return &StructuralError{Variable: e.Name, Keys: bad}
		}
	}
	return nil
}

func parseVariable(e RawEntry) (*Variable, error) {
	v := &Variable{Name: e.Name, Input: NoInput{}, Output: PassThrough{}}

	if in, ok := e.Section(SectionInput); ok {
		v.HasInput = true
		spec, err := parseInput(e.Name, in)
		if err != nil {
			return nil, err
		}
		v.Input = spec
	}

	if out, ok := e.Section(SectionOutput); ok {
		if raw, has := out.Field(FieldFunction); has {
			fn, isString := raw.(string)
			if !isString {
				return nil, &FieldError{Variable: e.Name, Field: FieldFunction, Err: fmt.Errorf("expected a formula string, got %T", raw)}
			}
			if strings.TrimSpace(fn) == "" {
				return nil, &FieldError{Variable: e.Name, Field: FieldFunction, Err: errors.New("formula is empty")}
			}
			v.Output = FormulaOutput{Function: fn}
		}
	}
	return v, nil
}

func parseInput(name string, in RawSection) (InputSpec, error) {
	keys := in.FieldKeys()
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	switch strings.Join(sorted, ",") {
	case "":
		return NoInput{}, nil

	case FieldValue:
		raw, _ := in.Field(FieldValue)
		val, err := ulc.ValueOf(raw)
		if err != nil {
			return nil, &FieldError{Variable: name, Field: FieldValue, Err: err}
		}
		return FixedInput{Value: val}, nil

	case "max,min,number_steps":
		lo, hi, err := bounds(name, in)
		if err != nil {
			return nil, err
		}
		steps, err := intField(name, in, FieldNumberSteps)
		if err != nil {
			return nil, err
		}
		if steps < 0 {
			return nil, &FieldError{Variable: name, Field: FieldNumberSteps, Err: fmt.Errorf("must not be negative, got %d", steps)}
		}
		return LinspaceInput{Min: lo, Max: hi, Steps: steps}, nil

	case "max,min,step_size":
		lo, hi, err := bounds(name, in)
		if err != nil {
			return nil, err
		}
		step, err := floatField(name, in, FieldStepSize)
		if err != nil {
			return nil, err
		}
		if step == 0 {
			return nil, &FieldError{Variable: name, Field: FieldStepSize, Err: errors.New("must not be zero")}
		}
		return ArangeInput{Min: lo, Max: hi, Step: step}, nil

	default:
		return nil, &UnsupportedShapeError{Variable: name, Keys: keys}
	}
}

func bounds(name string, in RawSection) (float64, float64, error) {
	lo, err := floatField(name, in, FieldMin)
	if err != nil {
		return 0, 0, err
	}
	hi, err := floatField(name, in, FieldMax)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func floatField(name string, in RawSection, field string) (float64, error) {
	raw, _ := in.Field(field)
	val, err := ulc.ValueOf(raw)
	if err != nil || !val.IsScalar() {
		return 0, &FieldError{Variable: name, Field: field, Err: fmt.Errorf("expected a number, got %T", raw)}
	}
	f := val.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Variable: name, Field: field, Err: fmt.Errorf("expected a finite number, got %v", f)}
	}
	return f, nil
}

func intField(name string, in RawSection, field string) (int, error) {
	f, err := floatField(name, in, field)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &FieldError{Variable: name, Field: field, Err: fmt.Errorf("expected an integer, got %v", f)}
	}
	return int(f), nil
}

func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func unexpected(keys []string, allowed map[string]struct{}) []string {
	var bad []string
	for _, k := range keys {
		if _, ok := allowed[k]; !ok {
			bad = append(bad, k)
		}
	}
	return bad
}
