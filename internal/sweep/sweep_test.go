package sweep_test

import (
	"fmt"
	"testing"

	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/sweep"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("no input is None", func(t *testing.T) {
		v, err := sweep.Generate(settings.NoInput{})
		require.NoError(t, err)
		assert.True(t, v.IsNone())
	})

	t.Run("fixed value is returned unmodified", func(t *testing.T) {
		v, err := sweep.Generate(settings.FixedInput{Value: ulc.Scalar(5)})
		require.NoError(t, err)
		assert.True(t, v.Equal(ulc.Scalar(5)))

		v, err = sweep.Generate(settings.FixedInput{Value: ulc.List([]float64{3, 1, 2})})
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 1, 2}, v.Floats())
	})

	t.Run("linspace includes both endpoints", func(t *testing.T) {
		v, err := sweep.Generate(settings.LinspaceInput{Min: 0, Max: 1, Steps: 5})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, v.Floats())
	})

	t.Run("arange includes max within half a step", func(t *testing.T) {
		v, err := sweep.Generate(settings.ArangeInput{Min: 0, Max: 1, Step: 0.25})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, v.Floats())

		// 0.1 steps accumulate rounding error; the endpoint must survive.
		v, err = sweep.Generate(settings.ArangeInput{Min: 0, Max: 0.3, Step: 0.1})
		require.NoError(t, err)
		require.Len(t, v.Floats(), 4)
		assert.InDelta(t, 0.3, v.Floats()[3], 1e-12)
	})

	t.Run("arange stops before an unreachable max", func(t *testing.T) {
		v, err := sweep.Generate(settings.ArangeInput{Min: 0, Max: 1, Step: 0.4})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0.4, 0.8}, v.Floats())
	})
}

func TestLinspace_EdgeCounts(t *testing.T) {
	assert.Equal(t, []float64{}, sweep.Linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, sweep.Linspace(2, 5, 1))
	assert.Equal(t, []float64{5, 2}, sweep.Linspace(5, 2, 2))
}

func TestArange_NegativeStep(t *testing.T) {
	assert.Equal(t, []float64{1, 0.5, 0}, sweep.Arange(1, -0.25, -0.5))
	assert.Equal(t, []float64{}, sweep.Arange(0, 1, -1))
}

func TestExpand_CartesianProduct(t *testing.T) {
	a := ulc.List([]float64{1, 2})
	b := ulc.List([]float64{10, 20, 30})
	c := ulc.Scalar(7)

	cols := sweep.Expand([]ulc.Value{a, b, c})
	require.Len(t, cols, 3)
	assert.Equal(t, 6, sweep.Cardinality([]ulc.Value{a, b, c}))

	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, cols[0].Floats())
	assert.Equal(t, []float64{10, 20, 30, 10, 20, 30}, cols[1].Floats())
	assert.Equal(t, []float64{7, 7, 7, 7, 7, 7}, cols[2].Floats())

	// Every combination appears exactly once.
	seen := make(map[string]int)
	for r := 0; r < 6; r++ {
		seen[fmt.Sprint(cols[0].Floats()[r], cols[1].Floats()[r])]++
	}
	assert.Len(t, seen, 6)
	for _, n := range seen {
		assert.Equal(t, 1, n)
	}
}

func TestExpand_CollapsesSingleRow(t *testing.T) {
	cols := sweep.Expand([]ulc.Value{ulc.Scalar(5), ulc.List([]float64{3})})
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Equal(ulc.Scalar(5)))
	assert.True(t, cols[1].Equal(ulc.Scalar(3)))
}

func TestExpand_NoneAxesStayNone(t *testing.T) {
	cols := sweep.Expand([]ulc.Value{ulc.None(), ulc.List([]float64{1, 2})})
	require.Len(t, cols, 2)
	assert.True(t, cols[0].IsNone())
	assert.Equal(t, []float64{1, 2}, cols[1].Floats())
}

func TestExpand_EmptyAxisEmptiesEverything(t *testing.T) {
	cols := sweep.Expand([]ulc.Value{ulc.List(nil), ulc.List([]float64{1, 2}), ulc.Scalar(3)})
	require.Len(t, cols, 3)
	for _, c := range cols {
		require.True(t, c.IsList())
		assert.Equal(t, 0, c.Len())
	}
}

func TestExpand_NoAxes(t *testing.T) {
	assert.Nil(t, sweep.Expand(nil))
}
