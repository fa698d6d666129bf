package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gyaneshwarpardhi/pathsolver/internal/config"
	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
	"github.com/gyaneshwarpardhi/pathsolver/internal/metrics"
	"github.com/gyaneshwarpardhi/pathsolver/internal/solver"
)

var (
	// ErrNoActiveGraph is returned by queries issued before any successful load.
	ErrNoActiveGraph = errors.New("engine: no active graph, please upload a graph first")

	// ErrQueueFull is reported for batch items the worker queue could not accept.
	ErrQueueFull = errors.New("engine: query queue full")
)

var tracer = otel.Tracer("github.com/gyaneshwarpardhi/pathsolver/internal/engine")

// GraphInfo describes the active graph.
type GraphInfo struct {
	ID       string    `json:"graph_id"`
	Origin   string    `json:"origin"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
	LoadedAt time.Time `json:"loaded_at"`
}

// PathResult is the outcome of a path query. Path and TotalDistance are both
// nil when the two nodes are known but not connected.
type PathResult struct {
	GraphID       string   `json:"graph_id"`
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Path          []string `json:"shortest_path"`
	TotalDistance *float64 `json:"total_distance"`
}

// Found reports whether a path exists.
func (r *PathResult) Found() bool {
	return r.Path != nil
}

// snapshot pairs an immutable graph with its metadata so readers always see
// both from the same load.
type snapshot struct {
	g    *graph.Graph
	info GraphInfo
}

// Engine owns the single active graph and answers queries against it.
type Engine struct {
	active atomic.Pointer[snapshot]
	pool   *workerPool[*queryWork]
	conf   config.EngineConf
	logger *slog.Logger
}

// New creates an Engine with no active graph and starts the batch worker pool.
func New(ctx context.Context, conf config.EngineConf, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{conf: conf, logger: logger}
	e.pool = newWorkerPool[*queryWork](ctx, conf.Workers, conf.QueueDepth, e.runQuery)
	return e
}

// LoadGraph builds a new graph from edges and makes it the active graph.
// origin labels where the data came from ("upload", "file", ...). On error the
// previously active graph, if any, stays in place.
func (e *Engine) LoadGraph(ctx context.Context, origin string, edges []graph.EdgeRecord, opts ...graph.BuildOption) (*GraphInfo, error) {
	_, span := tracer.Start(ctx, "engine.LoadGraph", trace.WithAttributes(
		attribute.String("origin", origin),
		attribute.Int("records", len(edges)),
	))
	defer span.End()

	g, err := graph.Build(edges, opts...)
	if err != nil {
		metrics.GraphLoads.WithLabelValues(origin, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	snap := &snapshot{
		g: g,
		info: GraphInfo{
			ID:       uuid.New().String(),
			Origin:   origin,
			Nodes:    g.NodeCount(),
			Edges:    g.EdgeCount(),
			LoadedAt: time.Now().UTC(),
		},
	}
	e.active.Store(snap)

	metrics.GraphLoads.WithLabelValues(origin, "success").Inc()
	metrics.ActiveGraphNodes.Set(float64(snap.info.Nodes))
	metrics.ActiveGraphEdges.Set(float64(snap.info.Edges))
	span.SetAttributes(attribute.String("graph_id", snap.info.ID))
	e.logger.Info("graph loaded",
		"graph_id", snap.info.ID, "origin", origin,
		"nodes", snap.info.Nodes, "edges", snap.info.Edges)

	info := snap.info
	return &info, nil
}

// Active returns metadata of the active graph.
func (e *Engine) Active() (*GraphInfo, bool) {
	snap := e.active.Load()
	if snap == nil {
		return nil, false
	}
	info := snap.info
	return &info, true
}

// FindPath returns the cheapest path from source to target on the active graph.
func (e *Engine) FindPath(ctx context.Context, source, target string) (*PathResult, error) {
	snap := e.active.Load()
	if snap == nil {
		metrics.Queries.WithLabelValues("no_active_graph").Inc()
		return nil, ErrNoActiveGraph
	}
	return e.findPath(ctx, snap, source, target)
}

// Distances runs the solver from source over the whole active graph.
func (e *Engine) Distances(ctx context.Context, source string) (*solver.Result, *GraphInfo, error) {
	snap := e.active.Load()
	if snap == nil {
		return nil, nil, ErrNoActiveGraph
	}
	_, span := tracer.Start(ctx, "engine.Distances", trace.WithAttributes(
		attribute.String("graph_id", snap.info.ID),
		attribute.String("source", source),
	))
	defer span.End()

	res, err := solver.ShortestPaths(snap.g, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	info := snap.info
	return res, &info, nil
}

func (e *Engine) findPath(ctx context.Context, snap *snapshot, source, target string) (*PathResult, error) {
	_, span := tracer.Start(ctx, "engine.FindPath", trace.WithAttributes(
		attribute.String("graph_id", snap.info.ID),
		attribute.String("source", source),
		attribute.String("target", target),
	))
	defer span.End()

	start := time.Now()
	res, err := solve(snap, source, target)
	metrics.QueryDuration.Observe(float64(time.Since(start).Microseconds()) / 1000)

	switch {
	case err != nil:
		outcome := "error"
		if errors.Is(err, graph.ErrUnknownNode) {
			outcome = "unknown_node"
		}
		metrics.Queries.WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	case res.Found():
		metrics.Queries.WithLabelValues("found").Inc()
	default:
		metrics.Queries.WithLabelValues("no_path").Inc()
	}
	span.SetAttributes(attribute.Bool("found", res.Found()))
	return res, nil
}

func solve(snap *snapshot, source, target string) (*PathResult, error) {
	g := snap.g
	for _, id := range []string{source, target} {
		if !g.Contains(id) {
			return nil, fmt.Errorf("%w: %q", graph.ErrUnknownNode, id)
		}
	}
	res := &PathResult{GraphID: snap.info.ID, Source: source, Target: target}
	if source == target {
		zero := 0.0
		res.Path = []string{source}
		res.TotalDistance = &zero
		return res, nil
	}

	sp, err := solver.ShortestPaths(g, source, solver.WithTarget(target))
	if err != nil {
		return nil, err
	}
	path, ok := sp.PathTo(target)
	if !ok {
		return res, nil
	}
	d, _ := sp.Distance(target)
	res.Path = path
	res.TotalDistance = &d
	return res, nil
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown drains the worker pool.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
