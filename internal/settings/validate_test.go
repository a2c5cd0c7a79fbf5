package settings_test

import (
	"errors"
	"testing"

	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRaw(t *testing.T, entries ...settings.Entry) *settings.Raw {
	t.Helper()
	raw, err := settings.FromOrdered(entries...)
	require.NoError(t, err)
	return raw
}

func TestValidate_RecognisedShapes(t *testing.T) {
	raw := mustRaw(t,
		settings.Entry{Name: "none", Body: map[string]any{"input": map[string]any{}}},
		settings.Entry{Name: "fixed", Body: map[string]any{"input": map[string]any{"value": []any{1, 2}}}},
		settings.Entry{Name: "lin", Body: map[string]any{"input": map[string]any{"min": 0, "max": 1, "number_steps": 3}}},
		settings.Entry{Name: "ar", Body: map[string]any{"input": map[string]any{"min": 0, "max": 1, "step_size": 0.5}}},
		settings.Entry{Name: "derived", Body: map[string]any{"output": map[string]any{"function": "lin * 2"}}},
		settings.Entry{Name: "nullout", Body: map[string]any{"input": map[string]any{"value": 3}, "output": nil}},
	)

	s, err := settings.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"none", "fixed", "lin", "ar", "derived", "nullout"}, s.Names())
	assert.Equal(t, []string{"none", "fixed", "lin", "ar", "nullout"}, s.Independent())

	v, ok := s.Lookup("fixed")
	require.True(t, ok)
	fixed, isFixed := v.Input.(settings.FixedInput)
	require.True(t, isFixed)
	assert.True(t, fixed.Value.Equal(ulc.List([]float64{1, 2})))

	v, _ = s.Lookup("lin")
	assert.Equal(t, settings.LinspaceInput{Min: 0, Max: 1, Steps: 3}, v.Input)

	v, _ = s.Lookup("ar")
	assert.Equal(t, settings.ArangeInput{Min: 0, Max: 1, Step: 0.5}, v.Input)

	v, _ = s.Lookup("derived")
	assert.False(t, v.Independent())
	assert.Equal(t, settings.NoInput{}, v.Input)
	assert.Equal(t, settings.FormulaOutput{Function: "lin * 2"}, v.Output)

	v, _ = s.Lookup("nullout")
	assert.Equal(t, settings.PassThrough{}, v.Output)
}

func TestValidate_StructuralErrors(t *testing.T) {
	testCases := []struct {
		name string
		body map[string]any
		keys []string
	}{
		{"unknown top-level key", map[string]any{"bogus": map[string]any{}}, []string{"bogus"}},
		{"unknown input key", map[string]any{"input": map[string]any{"value": 1, "typo": 2}}, []string{"typo"}},
		{"unknown output key", map[string]any{"output": map[string]any{"formula": "x"}}, []string{"formula"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := mustRaw(t, settings.Entry{Name: "v1", Body: tc.body})
			_, err := settings.Validate(raw)

			var structural *settings.StructuralError
			require.True(t, errors.As(err, &structural), "expected StructuralError, got %v", err)
			assert.Equal(t, "v1", structural.Variable)
			assert.Equal(t, tc.keys, structural.Keys)
		})
	}
}

func TestValidate_StructuralCheckRunsBeforeShapes(t *testing.T) {
	// The first entry has a bad shape, the second a bad key. The structural
	// problem wins because every entry is key-checked first.
	raw := mustRaw(t,
		settings.Entry{Name: "a", Body: map[string]any{"input": map[string]any{"min": 1}}},
		settings.Entry{Name: "b", Body: map[string]any{"extra": 1}},
	)
	_, err := settings.Validate(raw)
	var structural *settings.StructuralError
	assert.True(t, errors.As(err, &structural))
}

func TestValidate_UnsupportedShapes(t *testing.T) {
	for name, input := range map[string]map[string]any{
		"min only":            {"min": 0},
		"value and min":       {"value": 1, "min": 0},
		"both step kinds":     {"min": 0, "max": 1, "number_steps": 2, "step_size": 1},
		"missing max":         {"min": 0, "number_steps": 2},
		"step without bounds": {"step_size": 1},
	} {
		t.Run(name, func(t *testing.T) {
			raw := mustRaw(t, settings.Entry{Name: "v", Body: map[string]any{"input": input}})
			_, err := settings.Validate(raw)
			var shapeErr *settings.UnsupportedShapeError
			assert.True(t, errors.As(err, &shapeErr), "expected UnsupportedShapeError, got %v", err)
		})
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	for name, body := range map[string]map[string]any{
		"string bound":        {"input": map[string]any{"min": "zero", "max": 1, "number_steps": 2}},
		"fractional steps":    {"input": map[string]any{"min": 0, "max": 1, "number_steps": 2.5}},
		"negative steps":      {"input": map[string]any{"min": 0, "max": 1, "number_steps": -1}},
		"zero step size":      {"input": map[string]any{"min": 0, "max": 1, "step_size": 0}},
		"string value":        {"input": map[string]any{"value": "abc"}},
		"non-string function": {"output": map[string]any{"function": 5}},
		"blank function":      {"output": map[string]any{"function": "  "}},
	} {
		t.Run(name, func(t *testing.T) {
			raw := mustRaw(t, settings.Entry{Name: "v", Body: body})
			_, err := settings.Validate(raw)
			var fieldErr *settings.FieldError
			assert.True(t, errors.As(err, &fieldErr), "expected FieldError, got %v", err)
		})
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	raw := &settings.Raw{Entries: []settings.RawEntry{{Name: "a"}, {Name: "a"}}}
	_, err := settings.Validate(raw)
	assert.ErrorContains(t, err, "more than once")
}

func TestFromMap_RejectsNonMappingBody(t *testing.T) {
	_, err := settings.FromMap(map[string]any{"v": 5})
	assert.ErrorContains(t, err, "expected a mapping")
}
