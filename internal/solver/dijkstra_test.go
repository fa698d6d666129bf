package solver_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
	"github.com/gyaneshwarpardhi/pathsolver/internal/solver"
)

func mustBuild(t *testing.T, edges ...graph.EdgeRecord) *graph.Graph {
	t.Helper()
	g, err := graph.Build(edges)
	require.NoError(t, err)
	return g
}

func e(src, dst string, w float64) graph.EdgeRecord {
	return graph.EdgeRecord{Source: src, Target: dst, Weight: w}
}

func TestShortestPaths_PrefersCheaperDetour(t *testing.T) {
	g := mustBuild(t, e("A", "B", 1), e("B", "C", 2), e("A", "C", 10))

	res, err := solver.ShortestPaths(g, "A")
	require.NoError(t, err)

	d, ok := res.Distance("C")
	require.True(t, ok)
	assert.Equal(t, 3.0, d)

	path, ok := res.PathTo("C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, path)
}

func TestShortestPaths_SourceState(t *testing.T) {
	g := mustBuild(t, e("A", "B", 1), e("B", "A", 1))

	res, err := solver.ShortestPaths(g, "A")
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Dist["A"])
	_, hasPrev := res.Prev["A"]
	assert.False(t, hasPrev, "source must not have a predecessor")
}

func TestShortestPaths_Unreachable(t *testing.T) {
	// Directed: C can reach A but not the other way round.
	g := mustBuild(t, e("A", "B", 1), e("C", "A", 1))

	res, err := solver.ShortestPaths(g, "A")
	require.NoError(t, err)

	assert.True(t, math.IsInf(res.Dist["C"], 1))
	_, ok := res.Distance("C")
	assert.False(t, ok)
	_, hasPrev := res.Prev["C"]
	assert.False(t, hasPrev)

	path, ok := res.PathTo("C")
	assert.False(t, ok)
	assert.Nil(t, path)
}

func TestShortestPaths_UnknownSource(t *testing.T) {
	g := mustBuild(t, e("A", "B", 1))

	_, err := solver.ShortestPaths(g, "Z")
	require.ErrorIs(t, err, graph.ErrUnknownNode)
}

func TestShortestPaths_NilGraph(t *testing.T) {
	_, err := solver.ShortestPaths(nil, "A")
	require.ErrorIs(t, err, solver.ErrNilGraph)
}

func TestShortestPaths_ZeroWeightsAndSelfLoops(t *testing.T) {
	g := mustBuild(t, e("A", "A", 0), e("A", "B", 0), e("B", "C", 0), e("B", "B", 3))

	res, err := solver.ShortestPaths(g, "A")
	require.NoError(t, err)
	for _, id := range []string{"A", "B", "C"} {
		d, ok := res.Distance(id)
		require.True(t, ok, id)
		assert.Zero(t, d, id)
	}
}

func TestShortestPaths_WithTarget(t *testing.T) {
	g := mustBuild(t,
		e("A", "B", 1), e("B", "C", 1), e("A", "C", 5),
		e("C", "D", 100), e("D", "E", 1),
	)

	res, err := solver.ShortestPaths(g, "A", solver.WithTarget("C"))
	require.NoError(t, err)

	d, ok := res.Distance("C")
	require.True(t, ok)
	assert.Equal(t, 2.0, d)
	path, ok := res.PathTo("C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, path)

	// The search stopped before relaxing C's edges.
	_, ok = res.Distance("D")
	assert.False(t, ok)
}

// mapGraph lets a test feed the solver data Build would have rejected.
type mapGraph map[string][]graph.Neighbor

func (m mapGraph) Contains(id string) bool {
	if _, ok := m[id]; ok {
		return true
	}
	for _, ns := range m {
		for _, n := range ns {
			if n.ID == id {
				return true
			}
		}
	}
	return false
}

func (m mapGraph) Neighbors(id string) []graph.Neighbor { return m[id] }

func (m mapGraph) Nodes() []string {
	var ids []string
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

func TestShortestPaths_RejectsNegativeWeight(t *testing.T) {
	g := mapGraph{"A": {{ID: "B", Weight: -1}}, "B": nil}

	_, err := solver.ShortestPaths(g, "A")
	require.ErrorIs(t, err, graph.ErrMalformedInput)
}

func TestShortestPaths_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 2 + rng.Intn(5)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("n%d", i)
		}
		var edges []graph.EdgeRecord
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if rng.Float64() < 0.4 {
					edges = append(edges, graph.EdgeRecord{
						Source:        ids[i],
						Target:        ids[j],
						Weight:        float64(rng.Intn(10)),
						Bidirectional: rng.Float64() < 0.2,
					})
				}
			}
		}
		g, err := graph.Build(edges, graph.WithNodes(ids...))
		require.NoError(t, err)

		src := ids[rng.Intn(n)]
		res, err := solver.ShortestPaths(g, src)
		require.NoError(t, err)

		want := bruteForce(g, src)
		for _, id := range ids {
			got, reached := res.Distance(id)
			best, ok := want[id]
			require.Equal(t, ok, reached, "round %d: reachability of %s from %s", round, id, src)
			if !ok {
				continue
			}
			require.Equal(t, best, got, "round %d: distance %s→%s", round, src, id)

			path, ok := res.PathTo(id)
			require.True(t, ok)
			require.Equal(t, src, path[0])
			require.Equal(t, id, path[len(path)-1])
			require.Equal(t, best, pathCost(t, g, path), "round %d: path %v", round, path)
		}
	}
}

// bruteForce enumerates every simple path from src and keeps the cheapest
// cost per reachable node.
func bruteForce(g *graph.Graph, src string) map[string]float64 {
	best := map[string]float64{src: 0}
	onPath := map[string]bool{src: true}
	var walk func(u string, cost float64)
	walk = func(u string, cost float64) {
		for _, n := range g.Neighbors(u) {
			if onPath[n.ID] {
				continue
			}
			c := cost + n.Weight
			if b, ok := best[n.ID]; !ok || c < b {
				best[n.ID] = c
			}
			onPath[n.ID] = true
			walk(n.ID, c)
			onPath[n.ID] = false
		}
	}
	walk(src, 0)
	return best
}

func pathCost(t *testing.T, g *graph.Graph, path []string) float64 {
	t.Helper()
	var total float64
	for i := 0; i+1 < len(path); i++ {
		found := false
		for _, n := range g.Neighbors(path[i]) {
			if n.ID == path[i+1] {
				total += n.Weight
				found = true
				break
			}
		}
		require.True(t, found, "no edge %s→%s", path[i], path[i+1])
	}
	return total
}

func TestShortestPaths_LargeFiniteWeights(t *testing.T) {
	g := mustBuild(t, e("A", "B", 4e307), e("B", "C", 4e307))

	res, err := solver.ShortestPaths(g, "A")
	require.NoError(t, err)

	d, ok := res.Distance("C")
	require.True(t, ok)
	assert.Equal(t, 8e307, d)
	path, ok := res.PathTo("C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, path)
}
