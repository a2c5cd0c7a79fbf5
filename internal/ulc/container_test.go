package ulc_test

import (
	"errors"
	"testing"

	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_SetEnforcesUniformLength(t *testing.T) {
	c := ulc.New()
	require.NoError(t, c.Set("a", ulc.List([]float64{1, 2, 3})))
	require.NoError(t, c.Set("b", ulc.Scalar(4)))
	require.NoError(t, c.Set("c", ulc.None()))
	require.NoError(t, c.Set("d", ulc.List([]float64{5, 6, 7})))

	err := c.Set("e", ulc.List([]float64{1, 2}))
	var mismatch *ulc.LengthMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "e", mismatch.Key)
	assert.Equal(t, 2, mismatch.Length)
	assert.Equal(t, 3, mismatch.Expected)

	// The failed assignment must not be visible.
	assert.False(t, c.Has("e"))
	n, ok := c.ListLength()
	require.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestContainer_ReassignOnlyListMayChangeLength(t *testing.T) {
	c := ulc.New()
	require.NoError(t, c.Set("a", ulc.List([]float64{1, 2, 3})))
	require.NoError(t, c.Set("a", ulc.List([]float64{1})))

	n, ok := c.ListLength()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a"}, c.Keys())
}

func TestContainer_SetAnyRejectsNonNumeric(t *testing.T) {
	c := ulc.New()
	require.NoError(t, c.SetAny("int", 5))
	require.NoError(t, c.SetAny("list", []any{1, 2.5}))
	require.NoError(t, c.SetAny("nil", nil))

	for name, bad := range map[string]any{
		"string": "hello",
		"bool":   true,
		"map":    map[string]any{"x": 1},
		"nested": []any{[]any{1}},
	} {
		t.Run(name, func(t *testing.T) {
			err := c.SetAny(name, bad)
			var typeErr *ulc.TypeError
			assert.True(t, errors.As(err, &typeErr), "expected TypeError, got %v", err)
		})
	}
}

func TestContainer_Snapshots(t *testing.T) {
	t.Run("lists yield one snapshot per index", func(t *testing.T) {
		c := ulc.New()
		require.NoError(t, c.Set("a", ulc.List([]float64{1, 2})))
		require.NoError(t, c.Set("b", ulc.Scalar(9)))
		require.NoError(t, c.Set("c", ulc.None()))

		var got []map[string]any
		for _, snap := range c.Snapshots() {
			got = append(got, snap.Map())
		}
		assert.Equal(t, []map[string]any{
			{"a": 1.0, "b": 9.0, "c": nil},
			{"a": 2.0, "b": 9.0, "c": nil},
		}, got)
		assert.Equal(t, 2, c.SnapshotCount())
	})

	t.Run("pure scalars yield a single snapshot equal to itself", func(t *testing.T) {
		c := ulc.New()
		require.NoError(t, c.Set("a", ulc.Scalar(1)))
		require.NoError(t, c.Set("b", ulc.Scalar(2)))

		count := 0
		for _, snap := range c.Snapshots() {
			assert.True(t, snap.Equal(c))
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("None without lists yields nothing", func(t *testing.T) {
		c := ulc.New()
		require.NoError(t, c.Set("a", ulc.Scalar(1)))
		require.NoError(t, c.Set("b", ulc.None()))
		assert.Equal(t, 0, c.SnapshotCount())
		for range c.Snapshots() {
			t.Fatal("no snapshot expected")
		}
	})

	t.Run("sequence is restartable and can stop early", func(t *testing.T) {
		c := ulc.New()
		require.NoError(t, c.Set("a", ulc.List([]float64{1, 2, 3})))

		for pass := 0; pass < 2; pass++ {
			var seen []int
			for i := range c.Snapshots() {
				seen = append(seen, i)
			}
			assert.Equal(t, []int{0, 1, 2}, seen)
		}

		first := -1
		for i := range c.Snapshots() {
			first = i
			break
		}
		assert.Equal(t, 0, first)
	})
}

func TestContainer_EqualIgnoresOrder(t *testing.T) {
	a, err := ulc.FromEntries([]string{"x", "y"}, []ulc.Value{ulc.Scalar(1), ulc.List([]float64{1, 2})})
	require.NoError(t, err)
	b, err := ulc.FromEntries([]string{"y", "x"}, []ulc.Value{ulc.List([]float64{1, 2}), ulc.Scalar(1)})
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	require.NoError(t, b.Set("x", ulc.Scalar(2)))
	assert.False(t, a.Equal(b))

	// Scalar 1 and the one-element list [1] are different values.
	assert.False(t, ulc.Scalar(1).Equal(ulc.List([]float64{1})))
}

func TestFromEntries_LengthMismatch(t *testing.T) {
	_, err := ulc.FromEntries([]string{"a", "b"}, []ulc.Value{ulc.List([]float64{1}), ulc.List([]float64{1, 2})})
	var mismatch *ulc.LengthMismatchError
	assert.True(t, errors.As(err, &mismatch))
}
