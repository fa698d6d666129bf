package graph

import (
	"fmt"
	"math"
	"sort"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	nodes []string
}

// WithNodes registers ids that have no edges of their own, such as adjacency
// keys with an empty neighbor map.
func WithNodes(ids ...string) BuildOption {
	return func(c *buildConfig) {
		c.nodes = append(c.nodes, ids...)
	}
}

// Build constructs a Graph from edge records.
// Records are applied in order; a repeated (source, target) pair keeps the
// last weight. The sum of all stored weights must be finite, which bounds
// every path cost below +Inf. On error no Graph is returned, so whatever graph the caller
// currently holds stays in effect.
func Build(edges []EdgeRecord, opts ...BuildOption) (*Graph, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	nodes := make(map[string]struct{}, len(cfg.nodes)+len(edges))
	adj := make(map[string]map[string]float64)

	for i, id := range cfg.nodes {
		if id == "" {
			return nil, fmt.Errorf("%w: nodes[%d]: empty id", ErrMalformedInput, i)
		}
		nodes[id] = struct{}{}
	}

	for i, e := range edges {
		if err := validateRecord(e); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
		nodes[e.Source] = struct{}{}
		nodes[e.Target] = struct{}{}
		setWeight(adj, e.Source, e.Target, e.Weight)
		if e.Bidirectional {
			setWeight(adj, e.Target, e.Source, e.Weight)
		}
	}

	var total float64
	for src, targets := range adj {
		for dst, w := range targets {
			total += w
			if math.IsInf(total, 1) {
				return nil, fmt.Errorf("%w: total edge weight overflows at %s→%s", ErrMalformedInput, src, dst)
			}
		}
	}

	g := &Graph{
		nodes: nodes,
		out:   make(map[string][]Neighbor, len(adj)),
	}
	for src, targets := range adj {
		ns := make([]Neighbor, 0, len(targets))
		for dst, w := range targets {
			ns = append(ns, Neighbor{ID: dst, Weight: w})
		}
		sort.Slice(ns, func(a, b int) bool { return ns[a].ID < ns[b].ID })
		g.out[src] = ns
		g.edges += len(ns)
	}
	return g, nil
}

func validateRecord(e EdgeRecord) error {
	switch {
	case e.Source == "":
		return fmt.Errorf("%w: source is required", ErrMalformedInput)
	case e.Target == "":
		return fmt.Errorf("%w: target is required", ErrMalformedInput)
	case math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0):
		return fmt.Errorf("%w: weight %v of %s→%s is not finite", ErrMalformedInput, e.Weight, e.Source, e.Target)
	case e.Weight < 0:
		return fmt.Errorf("%w: negative weight %v on %s→%s", ErrMalformedInput, e.Weight, e.Source, e.Target)
	}
	return nil
}

func setWeight(adj map[string]map[string]float64, src, dst string, w float64) {
	m, ok := adj[src]
	if !ok {
		m = make(map[string]float64)
		adj[src] = m
	}
	m[dst] = w
}
