// Package solver computes single-source shortest paths over a weighted graph
// with non-negative edge weights.
//
// ShortestPaths runs Dijkstra's label-setting algorithm with a binary heap
// frontier and lazy deletion: improved distances push a new entry and stale
// entries are skipped when popped. Time O((V+E) log V), space O(V+E).
//
// Ties between equal tentative distances are broken arbitrarily; callers must
// only rely on distances and reachability, not on which of several equal-cost
// paths is returned.
//
// Path costs are float64 sums. A graph whose costs overflow to +Inf reports
// the affected nodes as unreached; graph.Build refuses such graphs.
package solver

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
)

// ErrNilGraph indicates that a nil graph was passed to ShortestPaths.
var ErrNilGraph = errors.New("solver: graph is nil")

// Graph is the read view the solver needs. *graph.Graph implements it.
type Graph interface {
	Contains(id string) bool
	Neighbors(id string) []graph.Neighbor
	Nodes() []string
}

// Options configures a single solver run.
type Options struct {
	// Target, when set, stops the search as soon as it is finalized.
	Target string
}

// Option is a functional option for ShortestPaths.
type Option func(*Options)

// WithTarget stops the search once target's distance is final. Nodes that
// were not finalized by then keep their tentative distance, which is only an
// upper bound, so use the result for target alone.
func WithTarget(target string) Option {
	return func(o *Options) {
		o.Target = target
	}
}

// ShortestPaths computes distances and predecessors from source to every
// node of g. Unreached nodes have distance +Inf and no predecessor; the source
// has distance 0 and no predecessor.
func ShortestPaths(g Graph, source string, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}
	if !g.Contains(source) {
		return nil, fmt.Errorf("%w: source %q", graph.ErrUnknownNode, source)
	}

	nodes := g.Nodes()
	r := &runner{
		g:      g,
		target: cfg.Target,
		dist:   make(map[string]float64, len(nodes)),
		prev:   make(map[string]string),
		closed: make(map[string]bool, len(nodes)),
	}
	for _, id := range nodes {
		r.dist[id] = math.Inf(1)
	}
	r.dist[source] = 0
	heap.Push(&r.pq, &nodeItem{id: source, dist: 0})

	if err := r.process(); err != nil {
		return nil, err
	}
	return &Result{Source: source, Dist: r.dist, Prev: r.prev}, nil
}

// runner holds the mutable state of one solver run.
type runner struct {
	g      Graph
	target string
	dist   map[string]float64
	prev   map[string]string
	closed map[string]bool
	pq     nodePQ
}

func (r *runner) process() error {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.id
		// Stale entry: u was already finalized with a smaller distance.
		if r.closed[u] {
			continue
		}
		r.closed[u] = true
		if u == r.target {
			return nil
		}
		if err := r.relax(u); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) relax(u string) error {
	du := r.dist[u]
	for _, n := range r.g.Neighbors(u) {
		if n.Weight < 0 {
			return fmt.Errorf("%w: negative weight %v on %s→%s", graph.ErrMalformedInput, n.Weight, u, n.ID)
		}
		if r.closed[n.ID] {
			continue
		}
		cand := du + n.Weight
		cur, ok := r.dist[n.ID]
		if ok && cand >= cur {
			continue
		}
		r.dist[n.ID] = cand
		r.prev[n.ID] = u
		heap.Push(&r.pq, &nodeItem{id: n.ID, dist: cand})
	}
	return nil
}

// nodeItem is a frontier entry: a node and the tentative distance it was
// pushed with.
type nodeItem struct {
	id   string
	dist float64
}

// nodePQ is a min-heap of frontier entries ordered by distance.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
