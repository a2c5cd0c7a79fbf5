package sink_test

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/beamgridgo/internal/sink"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func container(t *testing.T, kv ...any) *ulc.Container {
	t.Helper()
	c := ulc.New()
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(t, c.SetAny(kv[i].(string), kv[i+1]))
	}
	return c
}

func TestYAML_KeepsOrderAndReadsBack(t *testing.T) {
	// --- Arrange ---
	var out bytes.Buffer
	w := sink.NewYAML(&out)
	c := container(t, "zeta", []float64{0, 0.5}, "alpha", 2.0, "none", nil)

	// --- Act ---
	require.NoError(t, w.Write(context.Background(), sink.Result{Source: "a.yaml", Values: c}))
	require.NoError(t, w.Write(context.Background(), sink.Result{Source: "b.yaml", Values: container(t, "x", 1.0)}))
	require.NoError(t, w.Close())

	// --- Assert ---
	text := out.String()
	assert.Less(t, strings.Index(text, "zeta"), strings.Index(text, "alpha"))
	assert.Contains(t, text, "# source: a.yaml")
	assert.Contains(t, text, "zeta: [0, 0.5]")
	assert.Contains(t, text, "none: null")
	assert.Contains(t, text, "\n---\n")

	dec := yaml.NewDecoder(strings.NewReader(text))
	var first map[string]any
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, map[string]any{"zeta": []any{0, 0.5}, "alpha": 2, "none": nil}, first)
}

func TestYAML_GroupsAndSpecialFloats(t *testing.T) {
	var out bytes.Buffer
	w := sink.NewYAML(&out)
	r, err := sink.Grouped("", container(t, "q1__k", math.Inf(1), "q2__k", math.NaN(), "plain", -1.5))
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), r))
	require.NoError(t, w.Close())

	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, math.Inf(1), doc["q1"]["k"])
	assert.True(t, math.IsNaN(doc["q2"]["k"].(float64)))
	assert.Equal(t, -1.5, doc["original"]["plain"])
}

func TestGrouped(t *testing.T) {
	t.Run("ungrouped without prefixes", func(t *testing.T) {
		r, err := sink.Grouped("s", container(t, "a", 1.0))
		require.NoError(t, err)
		assert.Empty(t, r.Groups)
		assert.Equal(t, "s", r.Source)
	})

	t.Run("groups keep first appearance order", func(t *testing.T) {
		r, err := sink.Grouped("s", container(t, "b__x", 1.0, "a__x", 2.0, "b__y", 3.0))
		require.NoError(t, err)
		require.Len(t, r.Groups, 2)
		assert.Equal(t, "b", r.Groups[0].Name)
		assert.Equal(t, []string{"x", "y"}, r.Groups[0].Values.Keys())
		assert.Equal(t, "a", r.Groups[1].Name)
	})
}

func TestResult_Row(t *testing.T) {
	c := container(t, "beam__energy", []float64{1, 2}, "beam__charge", 1.0, "note", nil)

	t.Run("flat", func(t *testing.T) {
		r := sink.Result{Values: c}
		assert.Equal(t, map[string]any{"beam__energy": 2.0, "beam__charge": 1.0, "note": nil}, r.Row(1))
	})

	t.Run("grouped rows are nested like the file output", func(t *testing.T) {
		r, err := sink.Grouped("s", c)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"beam":     map[string]any{"energy": 1.0, "charge": 1.0},
			"original": map[string]any{"note": nil},
		}, r.Row(0))
	})
}

func TestJSON(t *testing.T) {
	t.Run("one line per result", func(t *testing.T) {
		var out bytes.Buffer
		w := sink.NewJSON(&out)

		require.NoError(t, w.Write(context.Background(), sink.Result{Source: "a.yaml", Values: container(t, "v2", []float64{0, 2}, "v1", 5.0, "n", nil)}))
		r, err := sink.Grouped("b.yaml", container(t, "g__k", 1e21))
		require.NoError(t, err)
		require.NoError(t, w.Write(context.Background(), r))

		assert.Equal(t,
			`{"source":"a.yaml","result":{"v2":[0,2],"v1":5,"n":null}}`+"\n"+
				`{"source":"b.yaml","result":{"g":{"k":1e+21}}}`+"\n",
			out.String())
	})

	t.Run("non-finite numbers are rejected", func(t *testing.T) {
		var out bytes.Buffer
		err := sink.NewJSON(&out).Write(context.Background(), sink.Result{Values: container(t, "bad", []float64{1, math.NaN()})})
		require.ErrorContains(t, err, `key "bad"`)
		assert.Empty(t, out.String())
	})
}

func TestSocketIO_ConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{name: "unparsable", url: "http://[::1", want: "failed to parse URL"},
		{name: "no host", url: "/just/a/path", want: "needs a scheme and a host"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &sink.SocketIO{URL: tc.url, Timeout: time.Second}
			err := s.Write(context.Background(), sink.Result{Values: container(t, "a", 1.0)})
			require.ErrorContains(t, err, tc.want)
		})
	}
}
