package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
	"github.com/gyaneshwarpardhi/pathsolver/internal/metrics"
)

var validate = validator.New()

// Query is one (source, target) pair of a batch.
type Query struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// BatchResult is the outcome of one batch item: exactly one of Result and Err
// is set.
type BatchResult struct {
	Query  Query
	Result *PathResult
	Err    error
}

type queryWork struct {
	ctx   context.Context
	snap  *snapshot
	index int
	query Query
	reply chan<- batchReply
}

type batchReply struct {
	index int
	res   *PathResult
	err   error
}

// FindPaths answers a batch of queries on the worker pool. Every item is
// solved against the same graph, the one active when the call started.
// Items the queue cannot accept fail with ErrQueueFull; items still pending
// when the query timeout or ctx expires fail with a timeout error.
func (e *Engine) FindPaths(ctx context.Context, queries []Query) ([]BatchResult, error) {
	snap := e.active.Load()
	if snap == nil {
		metrics.Queries.WithLabelValues("no_active_graph").Add(float64(len(queries)))
		return nil, ErrNoActiveGraph
	}

	results := make([]BatchResult, len(queries))
	reply := make(chan batchReply, len(queries))
	pending := 0
	for i, q := range queries {
		results[i].Query = q
		if err := validate.Struct(q); err != nil {
			results[i].Err = fmt.Errorf("%w: queries[%d]: source and target are required", graph.ErrMalformedInput, i)
			continue
		}
		w := &queryWork{ctx: ctx, snap: snap, index: i, query: q, reply: reply}
		if !e.pool.Submit(w) {
			metrics.BatchItemsDropped.Inc()
			results[i].Err = ErrQueueFull
			continue
		}
		pending++
	}
	metrics.QueueUtilization.Set(e.QueueUtilization())

	timeout := time.Duration(e.conf.QueryTimeoutMs) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	done := make([]bool, len(queries))
	for pending > 0 {
		select {
		case r := <-reply:
			results[r.index].Result = r.res
			results[r.index].Err = r.err
			done[r.index] = true
			pending--
		case <-timer.C:
			markPending(results, done, fmt.Errorf("query timeout after %v", timeout))
			return results, nil
		case <-ctx.Done():
			markPending(results, done, ctx.Err())
			return results, nil
		}
	}
	return results, nil
}

func markPending(results []BatchResult, done []bool, err error) {
	for i := range results {
		if !done[i] && results[i].Err == nil {
			results[i].Err = err
		}
	}
}

// runQuery is the worker pool's process function.
func (e *Engine) runQuery(_ context.Context, w *queryWork) {
	if err := w.ctx.Err(); err != nil {
		w.reply <- batchReply{index: w.index, err: err}
		return
	}
	res, err := e.findPath(w.ctx, w.snap, w.query.Source, w.query.Target)
	w.reply <- batchReply{index: w.index, res: res, err: err}
}
