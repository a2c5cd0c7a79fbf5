package sweep

import (
	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// Cardinality returns the number of combinations Expand produces: the
// product of each axis size, where scalars and None count as one.
func Cardinality(values []ulc.Value) int {
	total := 1
	for _, v := range values {
		total *= axisLen(v)
	}
	return total
}

func axisLen(v ulc.Value) int {
	if v.IsList() {
		return v.Len()
	}
	return 1
}

// Expand computes the Cartesian product of the given axes and returns one
// column per axis, in the same order. The first axis varies slowest.
//
// When the product has exactly one row every column is collapsed back to a
// scalar. None axes take no part in the product and stay None.
func Expand(values []ulc.Value) []ulc.Value {
	if len(values) == 0 {
		return nil
	}

	rows := Cardinality(values)
	cols := make([]ulc.Value, len(values))

	// repeat is how many consecutive rows share one element of axis i;
	// it equals the product of the sizes of all later axes.
	repeat := rows
	for i, v := range values {
		if v.IsNone() {
			cols[i] = v
			continue
		}
		elems := v.Floats()
		n := len(elems)
		if rows == 1 {
			cols[i] = ulc.Scalar(elems[0])
			continue
		}
		if n == 0 {
			cols[i] = ulc.List(nil)
			continue
		}
		col := make([]float64, rows)
		if rows > 0 {
			repeat /= n
			for r := range col {
				col[r] = elems[(r/repeat)%n]
			}
		}
		cols[i] = ulc.List(col)
	}
	return cols
}
