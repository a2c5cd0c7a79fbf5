package depgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a collection of variables and the references between them.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by variable name.
	nodes map[string]*node
	// order records insertion order so traversals are deterministic.
	order []string
}

// node is a single vertex. deps is kept both as a set and as an ordered
// slice; the slice drives iteration.
type node struct {
	id string
	// deps holds the nodes this node depends on (predecessors).
	deps     map[string]*node
	depOrder []string
}

// CycleError reports a dependency cycle. Path starts and ends with the same
// node and follows dependency direction: each node depends on the next.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}
