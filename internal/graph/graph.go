// Package graph holds the weighted directed graph that path queries run against.
//
// A Graph is immutable once built; loading new edge data creates a new Graph
// and the owner swaps it in atomically.
package graph

import "sort"

// EdgeRecord is the canonical input unit for building a graph.
// Bidirectional expands to two directed edges with the same weight.
type EdgeRecord struct {
	Source        string  `json:"source" yaml:"source"`
	Target        string  `json:"target" yaml:"target"`
	Weight        float64 `json:"weight" yaml:"weight"`
	Bidirectional bool    `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
}

// Neighbor is one outgoing edge as seen from its source node.
type Neighbor struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// Graph holds nodes and their source→neighbors adjacency list.
type Graph struct {
	nodes map[string]struct{}   // every known id, including target-only nodes
	out   map[string][]Neighbor // source id → neighbors sorted by id
	edges int
}

// Contains reports whether id appears anywhere in the loaded data.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Neighbors returns the outgoing edges of id. It is empty both for nodes
// without outgoing edges and for unknown ids; use Contains to tell them apart.
// The returned slice must not be modified.
func (g *Graph) Neighbors(id string) []Neighbor {
	return g.out[id]
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges after bidirectional
// expansion and overwrites.
func (g *Graph) EdgeCount() int {
	return g.edges
}
