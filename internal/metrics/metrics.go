package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GraphLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathsolver_graph_loads_total",
		Help: "Total number of graph load attempts, labelled by origin and status.",
	}, []string{"origin", "status"})

	ActiveGraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathsolver_active_graph_nodes",
		Help: "Number of nodes in the active graph.",
	})

	ActiveGraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathsolver_active_graph_edges",
		Help: "Number of directed edges in the active graph.",
	})

	Queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pathsolver_queries_total",
		Help: "Total number of path queries, labelled by outcome.",
	}, []string{"outcome"})

	QueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathsolver_query_duration_ms",
		Help:    "Solver latency per query in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	BatchItemsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pathsolver_batch_items_dropped_total",
		Help: "Total number of batch queries rejected due to a full worker queue.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pathsolver_queue_utilization_ratio",
		Help: "Current batch worker queue utilization (0–1).",
	})
)
