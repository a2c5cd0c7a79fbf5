// Package ulc implements the uniform-length container: an insertion-ordered
// mapping from variable name to Value in which every list-valued entry has
// the same length at all times.
package ulc

import (
	"fmt"
	"iter"
	"strings"
)

// Container maps names to values while enforcing that all list entries share
// one length. The zero value is not usable; use New.
//
// A Container is not safe for concurrent mutation.
type Container struct {
	keys   []string
	values map[string]Value
}

// New creates an empty container.
func New() *Container {
	return &Container{values: make(map[string]Value)}
}

// FromEntries builds a container from parallel key and value slices, in
// order. It fails on the first assignment that would break the invariant.
func FromEntries(keys []string, values []Value) (*Container, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("ulc: %d keys but %d values", len(keys), len(values))
	}
	c := New()
	for i, k := range keys {
		if err := c.Set(k, values[i]); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithKeys creates a container holding None for every key.
func WithKeys(keys []string) *Container {
	c := New()
	for _, k := range keys {
		// None never violates the invariant.
		_ = c.Set(k, None())
	}
	return c
}

// Set assigns a value. Assigning a list whose length differs from the other
// lists in the container returns a *LengthMismatchError and leaves the
// container unchanged. Re-assigning an existing key keeps its position.
func (c *Container) Set(key string, v Value) error {
	if v.IsList() {
		if n, ok := c.listLengthExcluding(key); ok && n != v.Len() {
			return &LengthMismatchError{Key: key, Length: v.Len(), Expected: n}
		}
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
	return nil
}

// SetAny converts v with ValueOf and assigns it.
func (c *Container) SetAny(key string, v any) error {
	val, err := ValueOf(v)
	if err != nil {
		return fmt.Errorf("key %q: %w", key, err)
	}
	return c.Set(key, val)
}

// Get returns the value stored under key.
func (c *Container) Get(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Container) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (c *Container) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of entries.
func (c *Container) Len() int { return len(c.keys) }

// ListLength returns the shared length of the list entries, and false if
// the container holds no lists.
func (c *Container) ListLength() (int, bool) {
	return c.listLengthExcluding("")
}

func (c *Container) listLengthExcluding(skip string) (int, bool) {
	for _, k := range c.keys {
		if k == skip && skip != "" {
			continue
		}
		if v := c.values[k]; v.IsList() {
			return v.Len(), true
		}
	}
	return 0, false
}

// Equal compares two containers by key set and values; key order is ignored.
func (c *Container) Equal(o *Container) bool {
	if c == nil || o == nil {
		return c == o
	}
	if len(c.keys) != len(o.keys) {
		return false
	}
	for _, k := range c.keys {
		ov, ok := o.values[k]
		if !ok || !c.values[k].Equal(ov) {
			return false
		}
	}
	return true
}

// Map returns a plain map of nil, float64 and []float64 values.
func (c *Container) Map() map[string]any {
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		out[k] = c.values[k].Interface()
	}
	return out
}

// SnapshotCount returns how many snapshots Snapshots yields: the shared list
// length if any list is present, otherwise 1 when every entry is a scalar
// (including the empty container) and 0 when any entry is None.
func (c *Container) SnapshotCount() int {
	if n, ok := c.ListLength(); ok {
		return n
	}
	for _, k := range c.keys {
		if c.values[k].IsNone() {
			return 0
		}
	}
	return 1
}

// Snapshots yields one scalar container per list index, scalar and None
// entries repeated in each. The sequence holds no state on the container and
// can be ranged over any number of times.
func (c *Container) Snapshots() iter.Seq2[int, *Container] {
	return func(yield func(int, *Container) bool) {
		n := c.SnapshotCount()
		for i := 0; i < n; i++ {
			snap := New()
			for _, k := range c.keys {
				snap.keys = append(snap.keys, k)
				snap.values[k] = c.values[k].At(i)
			}
			if !yield(i, snap) {
				return
			}
		}
	}
}

func (c *Container) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %s", k, c.values[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
