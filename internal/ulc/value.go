package ulc

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a container entry: nothing, a single number, or an ordered list
// of numbers. The zero Value is None.
type Value struct {
	kind   Kind
	scalar float64
	list   []float64
}

// None returns the empty value.
func None() Value { return Value{} }

// Scalar wraps a single number.
func Scalar(f float64) Value { return Value{kind: KindScalar, scalar: f} }

// List wraps an ordered list of numbers. The slice is copied.
func List(fs []float64) Value {
	cp := make([]float64, len(fs))
	copy(cp, fs)
	return Value{kind: KindList, list: cp}
}

// ValueOf converts a decoded configuration value into a Value. Accepted
// inputs are nil, Go integer and float kinds, and slices whose elements are
// all numbers.
func ValueOf(v any) (Value, error) {
	if v == nil {
		return None(), nil
	}
	if val, ok := v.(Value); ok {
		return val, nil
	}
	if f, ok := toFloat(v); ok {
		return Scalar(f), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]float64, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			f, ok := toFloat(rv.Index(i).Interface())
			if !ok {
				return None(), &TypeError{Value: v, Reason: fmt.Sprintf("element %d is %T, not a number", i, rv.Index(i).Interface())}
			}
			out[i] = f
		}
		return Value{kind: KindList, list: out}, nil
	}

	return None(), &TypeError{Value: v}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }
func (v Value) IsScalar() bool { return v.kind == KindScalar }
func (v Value) IsList() bool { return v.kind == KindList }
func (v Value) Float() float64 { return v.scalar }

// Len returns the list length, or -1 for scalars and None.
func (v Value) Len() int {
	if v.kind != KindList {
		return -1
	}
	return len(v.list)
}

// Floats returns a copy of the list elements. A scalar is returned as a
// one-element slice and None as nil.
func (v Value) Floats() []float64 {
	switch v.kind {
	case KindList:
		cp := make([]float64, len(v.list))
		copy(cp, v.list)
		return cp
	case KindScalar:
		return []float64{v.scalar}
	default:
		return nil
	}
}

// At returns the value seen at index i of a snapshot: the i-th element for
// lists, the value itself otherwise.
func (v Value) At(i int) Value {
	if v.kind == KindList {
		return Scalar(v.list[i])
	}
	return v
}

// Equal reports whether both values hold the same variant and numbers.
// NaN compares equal to NaN so that results containing NaN stay comparable.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return floatEq(v.scalar, o.scalar)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !floatEq(v.list[i], o.list[i]) {
				return false
			}
		}
	}
	return true
}

func floatEq(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Interface returns nil, a float64, or a []float64.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		return v.Floats()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return formatFloat(v.scalar)
	case KindList:
		parts := make([]string, len(v.list))
		for i, f := range v.list {
			parts[i] = formatFloat(f)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "None"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
