package ulc

import (
	"fmt"
	"strings"
)

const (
	// DefaultDelimiter separates a group prefix from the key inside the group.
	DefaultDelimiter = "__"
	// OriginalGroup collects keys that carry no delimiter.
	OriginalGroup = "original"
)

// Split partitions keys by prefix. A key "beam__energy" lands in group
// "beam" as "energy"; the key is cut at the first delimiter only. Keys
// without the delimiter are collected under OriginalGroup. Each group is
// rebuilt as a Container so the length invariant is checked again.
//
// When no key contains the delimiter Split returns ok == false and the
// caller should keep using c unchanged.
func Split(c *Container, delim string) (groups map[string]*Container, ok bool, err error) {
	if delim == "" {
		delim = DefaultDelimiter
	}

	found := false
	for _, k := range c.keys {
		if strings.Contains(k, delim) {
			found = true
			break
		}
	}
	if !found {
		return nil, false, nil
	}

	groups = make(map[string]*Container)
	for _, k := range c.keys {
		group, sub := OriginalGroup, k
		if prefix, suffix, cut := strings.Cut(k, delim); cut {
			group, sub = prefix, suffix
		}
		g, exists := groups[group]
		if !exists {
			g = New()
			groups[group] = g
		}
		if err := g.Set(sub, c.values[k]); err != nil {
			return nil, false, fmt.Errorf("group %q: %w", group, err)
		}
	}
	return groups, true, nil
}

// GroupNames returns group names in the order their first key appears in c.
func GroupNames(c *Container, delim string) []string {
	if delim == "" {
		delim = DefaultDelimiter
	}
	var names []string
	seen := make(map[string]struct{})
	for _, k := range c.keys {
		group := OriginalGroup
		if prefix, _, cut := strings.Cut(k, delim); cut {
			group = prefix
		}
		if _, dup := seen[group]; !dup {
			seen[group] = struct{}{}
			names = append(names, group)
		}
	}
	return names
}
