package engine_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/pathsolver/internal/config"
	"github.com/gyaneshwarpardhi/pathsolver/internal/engine"
	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
)

func TestFindPaths(t *testing.T) {
	e := newEngine(t)
	load(t, e, triangle())

	queries := []engine.Query{
		{Source: "A", Target: "C"},
		{Source: "C", Target: "A"},
		{Source: "A", Target: "Z"},
		{Source: "", Target: "A"},
		{Source: "B", Target: "B"},
	}
	results, err := e.FindPaths(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, results, 5)

	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{"A", "B", "C"}, results[0].Result.Path)

	require.NoError(t, results[1].Err)
	assert.False(t, results[1].Result.Found())

	require.ErrorIs(t, results[2].Err, graph.ErrUnknownNode)
	assert.Nil(t, results[2].Result)

	require.ErrorIs(t, results[3].Err, graph.ErrMalformedInput)

	require.NoError(t, results[4].Err)
	assert.Equal(t, []string{"B"}, results[4].Result.Path)

	for i, r := range results {
		assert.Equal(t, queries[i], r.Query, "results keep input order")
	}
}

func TestFindPaths_BeforeLoad(t *testing.T) {
	e := newEngine(t)
	_, err := e.FindPaths(context.Background(), []engine.Query{{Source: "A", Target: "B"}})
	require.ErrorIs(t, err, engine.ErrNoActiveGraph)
}

func TestFindPaths_QueueFull(t *testing.T) {
	// No workers and a single queue slot: the first item is accepted but never
	// processed, the second is rejected.
	conf := config.Default().Engine
	conf.Workers = 0
	conf.QueueDepth = 1
	conf.QueryTimeoutMs = 50

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := engine.New(ctx, conf, nil)
	_, err := e.LoadGraph(ctx, "test", triangle())
	require.NoError(t, err)

	results, err := e.FindPaths(ctx, []engine.Query{
		{Source: "A", Target: "C"},
		{Source: "A", Target: "B"},
	})
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "timeout")
	require.ErrorIs(t, results[1].Err, engine.ErrQueueFull)
	assert.Equal(t, 1.0, e.QueueUtilization())
}

func TestFindPaths_AfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e := engine.New(ctx, config.Default().Engine, nil)
	_, err := e.LoadGraph(ctx, "test", triangle())
	require.NoError(t, err)
	e.Shutdown()

	results, err := e.FindPaths(ctx, []engine.Query{{Source: "A", Target: "C"}})
	require.NoError(t, err)
	require.ErrorIs(t, results[0].Err, engine.ErrQueueFull)
}

func TestFindPaths_OneSnapshotPerBatch(t *testing.T) {
	e := newEngine(t)

	// Same node set, different costs: A→C costs 2 on one graph and 100 on the
	// other. Distances are matched to graph ids once the loaders are done.
	cheap := []graph.EdgeRecord{{Source: "A", Target: "B", Weight: 1}, {Source: "B", Target: "C", Weight: 1}}
	dear := []graph.EdgeRecord{{Source: "A", Target: "B", Weight: 50}, {Source: "B", Target: "C", Weight: 50}}

	var mu sync.Mutex
	want := map[string]float64{}
	record := func(info *engine.GraphInfo, edges []graph.EdgeRecord) {
		mu.Lock()
		defer mu.Unlock()
		want[info.ID] = edges[0].Weight + edges[1].Weight
	}
	record(load(t, e, cheap), cheap)

	stop := make(chan struct{})
	var loaders sync.WaitGroup
	loaders.Add(1)
	go func() {
		defer loaders.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			edges := cheap
			if i%2 == 0 {
				edges = dear
			}
			info, err := e.LoadGraph(context.Background(), "test", edges)
			if err != nil {
				t.Error(err)
				return
			}
			record(info, edges)
		}
	}()

	queries := make([]engine.Query, 16)
	for i := range queries {
		queries[i] = engine.Query{Source: "A", Target: "C"}
	}
	var batches [][]engine.BatchResult
	for i := 0; i < 50; i++ {
		results, err := e.FindPaths(context.Background(), queries)
		require.NoError(t, err)
		batches = append(batches, results)
	}
	close(stop)
	loaders.Wait()

	for i, results := range batches {
		require.NoError(t, results[0].Err)
		id := results[0].Result.GraphID
		for _, r := range results {
			require.NoError(t, r.Err)
			assert.Equal(t, id, r.Result.GraphID, "batch %d mixed graphs", i)
			assert.Equal(t, want[r.Result.GraphID], *r.Result.TotalDistance, "batch %d", i)
		}
	}
}
