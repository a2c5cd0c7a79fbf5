package ulc

import "fmt"

// LengthMismatchError is returned when assigning a list whose length differs
// from the lists already held by a container.
type LengthMismatchError struct {
	Key      string
	Length   int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("all lists must have the same length: %q has length %d, container lists have length %d", e.Key, e.Length, e.Expected)
}

// TypeError is returned when a value is neither None, a number, nor a list
// of numbers.
type TypeError struct {
	Value  any
	Reason string
}

func (e *TypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("value must be None, a scalar or a list: %s", e.Reason)
	}
	return fmt.Sprintf("value must be None, a scalar or a list, got %T", e.Value)
}
