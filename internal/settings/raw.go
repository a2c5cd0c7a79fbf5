package settings

import (
	"fmt"
	"sort"
)

// Raw is the loaded but unvalidated settings document. It preserves the
// declaration order of variables, sections and fields as written in the
// source file.
type Raw struct {
	Entries []RawEntry
}

// RawEntry is one top-level variable declaration.
type RawEntry struct {
	Name     string
	Sections []RawSection
}

// RawSection is a nested mapping under a variable, such as "input".
// Null is set when the section key is present with no value.
type RawSection struct {
	Key    string
	Null   bool
	Fields []RawField
}

// RawField is a single key inside a section. Value holds a decoded scalar
// (float64, int, string, bool), a []any, or nil.
type RawField struct {
	Key   string
	Value any
}

// Names returns the variable names in declaration order.
func (r *Raw) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}

// Section returns the named section of an entry.
func (e RawEntry) Section(key string) (RawSection, bool) {
	for _, s := range e.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return RawSection{}, false
}

// Field returns the named field of a section.
func (s RawSection) Field(key string) (any, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// FieldKeys returns the section's keys in declaration order.
func (s RawSection) FieldKeys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// FromMap builds a Raw document from a generic nested mapping of the form
// name -> {input: {...}, output: {...}}. Go maps carry no order, so
// variables, sections and fields are sorted by name; use loader.Load or
// FromOrdered when declaration order matters.
func FromMap(m map[string]any) (*Raw, error) {
	raw := &Raw{}
	for _, name := range sortedKeys(m) {
		entry := RawEntry{Name: name}
		body, err := asMap(m[name])
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		for _, secKey := range sortedKeys(body) {
			sec := RawSection{Key: secKey}
			if body[secKey] == nil {
				sec.Null = true
			} else {
				fields, err := asMap(body[secKey])
				if err != nil {
					return nil, fmt.Errorf("variable %q, section %q: %w", name, secKey, err)
				}
				for _, fk := range sortedKeys(fields) {
					sec.Fields = append(sec.Fields, RawField{Key: fk, Value: fields[fk]})
				}
			}
			entry.Sections = append(entry.Sections, sec)
		}
		raw.Entries = append(raw.Entries, entry)
	}
	return raw, nil
}

// Entry is a name/body pair used by FromOrdered.
type Entry struct {
	Name string
	Body map[string]any
}

// FromOrdered builds a Raw document keeping the given variable order.
// Sections and fields inside each body are sorted by name.
func FromOrdered(entries ...Entry) (*Raw, error) {
	raw := &Raw{}
	for _, e := range entries {
		one, err := FromMap(map[string]any{e.Name: e.Body})
		if err != nil {
			return nil, err
		}
		raw.Entries = append(raw.Entries, one.Entries...)
	}
	return raw, nil
}

func asMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("expected a mapping, got %T", v)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
