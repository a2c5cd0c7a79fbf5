package sink

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"

	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"gopkg.in/yaml.v3"
)

// YAML writes each result as its own YAML document. Keys keep container
// order and lists are written in flow style. It is safe for concurrent use.
type YAML struct {
	mu  sync.Mutex
	enc *yaml.Encoder
}

// NewYAML creates a YAML writer on w. Call Close to flush.
func NewYAML(w io.Writer) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc}
}

func (y *YAML) Write(_ context.Context, r Result) error {
	doc := &yaml.Node{Kind: yaml.DocumentNode}
	root := containerNode(r.Values)
	if len(r.Groups) > 0 {
		root = &yaml.Node{Kind: yaml.MappingNode}
		for _, g := range r.Groups {
			root.Content = append(root.Content, stringNode(g.Name), containerNode(g.Values))
		}
	}
	if r.Source != "" {
		doc.HeadComment = "source: " + r.Source
	}
	doc.Content = []*yaml.Node{root}

	y.mu.Lock()
	defer y.mu.Unlock()
	if err := y.enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode result of %s: %w", r.Source, err)
	}
	return nil
}

// Close flushes the encoder.
func (y *YAML) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.enc.Close()
}

func containerNode(c *ulc.Container) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	if c == nil {
		return n
	}
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		n.Content = append(n.Content, stringNode(k), valueNode(v))
	}
	return n
}

func valueNode(v ulc.Value) *yaml.Node {
	switch {
	case v.IsScalar():
		return floatNode(v.Float())
	case v.IsList():
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, f := range v.Floats() {
			n.Content = append(n.Content, floatNode(f))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func floatNode(f float64) *yaml.Node {
	var s string
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
