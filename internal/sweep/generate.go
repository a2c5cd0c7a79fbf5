// Package sweep produces candidate values for independent variables and
// combines them into a full parameter sweep.
package sweep

import (
	"fmt"
	"math"

	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// Generate materialises the candidate values described by an input spec.
func Generate(spec settings.InputSpec) (ulc.Value, error) {
	switch s := spec.(type) {
	case nil, settings.NoInput:
		return ulc.None(), nil
	case settings.FixedInput:
		return s.Value, nil
	case settings.LinspaceInput:
		return ulc.List(Linspace(s.Min, s.Max, s.Steps)), nil
	case settings.ArangeInput:
		if s.Step == 0 {
			return ulc.None(), fmt.Errorf("step size must not be zero")
		}
		return ulc.List(Arange(s.Min, s.Max+s.Step/2, s.Step)), nil
	default:
		return ulc.None(), fmt.Errorf("unsupported input spec %T", spec)
	}
}

// Linspace returns n evenly spaced points over [start, stop]. The last point
// is exactly stop. n == 1 yields [start] and n <= 0 an empty slice.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Arange returns start, start+step, ... for values strictly before stop (or
// strictly after it for a negative step).
func Arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
