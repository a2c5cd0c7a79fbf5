package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (*settings.Raw, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return rawFromNode(&doc)
}

// rawFromNode converts a YAML document of the form
// name -> {section -> {field -> value}} into a Raw, keeping node order.
func rawFromNode(doc *yaml.Node) (*settings.Raw, error) {
	raw := &settings.Raw{}
	root := resolve(doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return raw, nil
		}
		root = resolve(root.Content[0])
	}
	if isNull(root) {
		return raw, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of variable names", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i], resolve(root.Content[i+1])
		entry := settings.RawEntry{Name: name.Value}

		if !isNull(body) {
			if body.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: variable %q: expected a mapping", body.Line, name.Value)
			}
			for j := 0; j+1 < len(body.Content); j += 2 {
				sec, err := sectionFromNode(name.Value, body.Content[j].Value, resolve(body.Content[j+1]))
				if err != nil {
					return nil, err
				}
				entry.Sections = append(entry.Sections, sec)
			}
		}
		raw.Entries = append(raw.Entries, entry)
	}
	return raw, nil
}

func sectionFromNode(variable, key string, n *yaml.Node) (settings.RawSection, error) {
	sec := settings.RawSection{Key: key}
	if isNull(n) {
		sec.Null = true
		return sec, nil
	}
	if n.Kind != yaml.MappingNode {
		return sec, fmt.Errorf("line %d: variable %q, section %q: expected a mapping", n.Line, variable, key)
	}
	for k := 0; k+1 < len(n.Content); k += 2 {
		var v any
		if err := resolve(n.Content[k+1]).Decode(&v); err != nil {
			return sec, fmt.Errorf("line %d: variable %q, field %q: %w", n.Content[k+1].Line, variable, n.Content[k].Value, err)
		}
		sec.Fields = append(sec.Fields, settings.RawField{Key: n.Content[k].Value, Value: v})
	}
	return sec, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// Case is a settings document paired with the result it must produce.
type Case struct {
	Settings *settings.Raw
	Expected *ulc.Container
}

// LoadCases reads a multi-document YAML file holding pairs of documents: a
// settings document followed by its expected result, a mapping of variable
// name to null, a number or a list of numbers.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file %s: %w", path, err)
	}
	cases, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode case file %s: %w", path, err)
	}
	return cases, nil
}

// ParseCases decodes the document pairs read by LoadCases.
func ParseCases(data []byte) ([]Case, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	if len(docs)%2 != 0 {
		return nil, fmt.Errorf("expected settings and result documents in pairs, got %d documents", len(docs))
	}

	cases := make([]Case, 0, len(docs)/2)
	for i := 0; i < len(docs); i += 2 {
		raw, err := rawFromNode(docs[i])
		if err != nil {
			return nil, fmt.Errorf("case %d settings: %w", i/2+1, err)
		}
		expected, err := ParseResult(docs[i+1])
		if err != nil {
			return nil, fmt.Errorf("case %d result: %w", i/2+1, err)
		}
		cases = append(cases, Case{Settings: raw, Expected: expected})
	}
	return cases, nil
}

// ParseResult decodes a result document into a container.
func ParseResult(doc *yaml.Node) (*ulc.Container, error) {
	c := ulc.New()
	root := resolve(doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root.Kind == yaml.DocumentNode || isNull(root) {
		return c, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of variable names", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		var v any
		if err := resolve(root.Content[i+1]).Decode(&v); err != nil {
			return nil, err
		}
		if err := c.SetAny(root.Content[i].Value, v); err != nil {
			return nil, fmt.Errorf("line %d: %w", root.Content[i].Line, err)
		}
	}
	return c, nil
}

// LoadResult reads a single expected-result YAML file.
func LoadResult(path string) (*ulc.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode result file %s: %w", path, err)
	}
	return ParseResult(&doc)
}
