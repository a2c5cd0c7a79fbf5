// Package sink delivers generated results: as YAML or JSON documents on a
// stream, or as socket.io events.
package sink

import (
	"context"

	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// Result is one generated container together with the settings file it
// came from. Groups is set instead of being derived when the result was
// split by name prefix.
type Result struct {
	Source string
	Values *ulc.Container
	Groups []Group
}

// Group is one named part of a split result.
type Group struct {
	Name   string
	Values *ulc.Container
}

// Grouped returns a Result whose Groups are c split by ulc.Split, in the
// order each group first appears. A container without prefixed names is
// returned ungrouped.
func Grouped(source string, c *ulc.Container) (Result, error) {
	r := Result{Source: source, Values: c}
	groups, ok, err := ulc.Split(c, ulc.DefaultDelimiter)
	if err != nil || !ok {
		return r, err
	}
	for _, name := range ulc.GroupNames(c, ulc.DefaultDelimiter) {
		r.Groups = append(r.Groups, Group{Name: name, Values: groups[name]})
	}
	return r, nil
}

// Row returns snapshot i of the result as plain values. A grouped result
// gives one nested map per group, keyed by the names without their prefix.
func (r Result) Row(i int) map[string]any {
	if len(r.Groups) == 0 {
		return row(r.Values, i)
	}
	out := make(map[string]any, len(r.Groups))
	for _, g := range r.Groups {
		out[g.Name] = row(g.Values, i)
	}
	return out
}

func row(c *ulc.Container, i int) map[string]any {
	out := make(map[string]any, c.Len())
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		out[k] = v.At(i).Interface()
	}
	return out
}

// Writer delivers results. Implementations are safe for sequential use
// only unless stated otherwise.
type Writer interface {
	Write(ctx context.Context, r Result) error
}
