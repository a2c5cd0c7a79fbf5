package settings

import (
	"fmt"
	"strings"
)

// StructuralError reports keys that do not belong at their level of the
// settings document: a variable with something other than input/output, or
// an input/output section with an unknown field.
type StructuralError struct {
	Variable string
	Keys     []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("the key %s has unexpected nested keys %s", e.Variable, strings.Join(e.Keys, ", "))
}

// UnsupportedShapeError reports an input section whose field combination is
// none of {}, {value}, {min,max,number_steps} or {min,max,step_size}.
type UnsupportedShapeError struct {
	Variable string
	Keys     []string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("variable %q: unsupported input combination {%s}; expected one of {}, {value}, {min, max, number_steps}, {min, max, step_size}",
		e.Variable, strings.Join(e.Keys, ", "))
}

// FieldError reports a known field holding a value of the wrong type or
// range.
type FieldError struct {
	Variable string
	Field    string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("variable %q, field %q: %v", e.Variable, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
