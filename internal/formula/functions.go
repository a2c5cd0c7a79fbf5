package formula

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions is the whitelist of callables a formula may use.
//
// Parameters typed cty.Number are applied element by element when the
// argument is a list, with numpy-style broadcasting against scalars.
// Parameters typed cty.List(cty.Number) receive the whole list.
type Functions map[string]function.Function

// Constants are named numbers a formula may use as bare identifiers.
type Constants map[string]float64

// DefaultConstants returns pi, e and inf.
func DefaultConstants() Constants {
	return Constants{
		"pi":  math.Pi,
		"e":   math.E,
		"inf": math.Inf(1),
	}
}

// Merge combines tables. Later tables win on name clashes.
func Merge(tables ...Functions) Functions {
	out := make(Functions)
	for _, t := range tables {
		for name, fn := range t {
			out[name] = fn
		}
	}
	return out
}

// MergeConstants combines constant tables. Later tables win on name clashes.
func MergeConstants(tables ...Constants) Constants {
	out := make(Constants)
	for _, t := range tables {
		for name, v := range t {
			out[name] = v
		}
	}
	return out
}

// DefaultFunctions returns the numeric function namespace available to
// every formula.
func DefaultFunctions() Functions {
	return Functions{
		// cty stdlib
		"abs":    stdlib.AbsoluteFunc,
		"ceil":   stdlib.CeilFunc,
		"floor":  stdlib.FloorFunc,
		"log":    stdlib.LogFunc,
		"pow":    stdlib.PowFunc,
		"signum": stdlib.SignumFunc,
		"max":    stdlib.MaxFunc,
		"min":    stdlib.MinFunc,

		"sqrt":  Unary("sqrt", math.Sqrt),
		"exp":   Unary("exp", math.Exp),
		"ln":    Unary("ln", math.Log),
		"log10": Unary("log10", math.Log10),
		"sin":   Unary("sin", math.Sin),
		"cos":   Unary("cos", math.Cos),
		"tan":   Unary("tan", math.Tan),
		"asin":  Unary("asin", math.Asin),
		"acos":  Unary("acos", math.Acos),
		"atan":  Unary("atan", math.Atan),
		"sinh":  Unary("sinh", math.Sinh),
		"cosh":  Unary("cosh", math.Cosh),
		"tanh":  Unary("tanh", math.Tanh),
		"deg":   Unary("deg", func(x float64) float64 { return x * 180 / math.Pi }),
		"rad":   Unary("rad", func(x float64) float64 { return x * math.Pi / 180 }),
		"atan2": Binary("atan2", "y", "x", math.Atan2),
		"hypot": Binary("hypot", "x", "y", math.Hypot),

		"sum":  Reduce("sum", sum),
		"mean": Reduce("mean", mean),
		"len":  Reduce("len", func(xs []float64) (float64, error) { return float64(len(xs)), nil }),
	}
}

// Unary wraps a float64 function of one argument.
func Unary(name string, fn func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, err := FloatOf(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			return NumberOf(name, fn(x))
		},
	})
}

// Binary wraps a float64 function of two arguments.
func Binary(name, a, b string, fn func(float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: a, Type: cty.Number},
			{Name: b, Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, err := FloatOf(args[0])
			if err != nil {
				return cty.NilVal, err
			}
			y, err := FloatOf(args[1])
			if err != nil {
				return cty.NilVal, err
			}
			return NumberOf(name, fn(x, y))
		},
	})
}

// Reduce wraps a function collapsing a whole list into one number.
func Reduce(name string, fn func([]float64) (float64, error)) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "values", Type: cty.List(cty.Number)}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			xs := make([]float64, 0, args[0].LengthInt())
			for it := args[0].ElementIterator(); it.Next(); {
				_, el := it.Element()
				x, err := FloatOf(el)
				if err != nil {
					return cty.NilVal, err
				}
				xs = append(xs, x)
			}
			r, err := fn(xs)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", name, err)
			}
			return NumberOf(name, r)
		},
	})
}

// FloatOf converts a known, non-null cty number to float64.
func FloatOf(v cty.Value) (float64, error) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return 0, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

// NumberOf converts a float64 result into a cty number. NaN has no cty
// representation and is reported as an error.
func NumberOf(name string, f float64) (cty.Value, error) {
	if math.IsNaN(f) {
		return cty.NilVal, fmt.Errorf("%s: result is not a number", name)
	}
	return cty.NumberFloatVal(f), nil
}

func sum(xs []float64) (float64, error) {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total, nil
}

func mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("mean of an empty list")
	}
	total, _ := sum(xs)
	return total / float64(len(xs)), nil
}
