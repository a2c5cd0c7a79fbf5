package formula

import (
	"fmt"
	"strings"
)

// Error reports a formula that cannot be parsed or evaluated.
type Error struct {
	Variable string
	Formula  string
	Err      error
}

func (e *Error) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("formula %q: %v", e.Formula, e.Err)
	}
	return fmt.Sprintf("variable %q, formula %q: %v", e.Variable, e.Formula, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CycleError reports derived variables whose formulas depend on each other.
// Chain starts and ends with the same name.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular reference between derived variables: %s", strings.Join(e.Chain, " -> "))
}
