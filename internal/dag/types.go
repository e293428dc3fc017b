package dag

import "errors"

// ErrNodeNotFound is returned when an edge names a node that was never added.
var ErrNodeNotFound = errors.New("node not found")

// Graph is a collection of nodes and their dependencies. It is owned by a
// single compilation and is not safe for concurrent use.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// seq is the next insertion sequence number.
	seq int
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// seq is the insertion position, used to break ordering ties.
	seq int
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
