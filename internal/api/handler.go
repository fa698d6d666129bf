package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/pathsolver/internal/engine"
	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
	"github.com/gyaneshwarpardhi/pathsolver/internal/ingest"
	"github.com/gyaneshwarpardhi/pathsolver/internal/metrics"
)

// Options bounds request sizes.
type Options struct {
	MaxUploadBytes int64
	MaxBatch       int
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, opts Options, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{eng: eng, opts: opts, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /{$}", h.root)
	h.mux.HandleFunc("POST /v1/graph", h.uploadGraph)
	h.mux.HandleFunc("GET /v1/graph", h.activeGraph)
	h.mux.HandleFunc("GET /v1/path", h.findPath)
	h.mux.HandleFunc("GET /v1/distances", h.distances)
	h.mux.HandleFunc("POST /v1/paths/batch", h.findPaths)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	// Routes of the first version of the service.
	h.mux.HandleFunc("POST /upload_graph_json/", h.uploadGraph)
	h.mux.HandleFunc("GET /solve_shortest_path/{query}", h.legacySolve)

	return loggingMiddleware(logger, h.mux)
}

// GET /: welcome message.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Shortest Path Solver!"})
}

// POST /v1/graph: replace the active graph.
// Accepts a raw JSON/YAML body or a multipart form with a "file" field.
func (h *Handler) uploadGraph(w http.ResponseWriter, r *http.Request) {
	if h.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}

	data, format, err := readGraphDocument(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := ingest.Decode(data, format)
	if err != nil {
		writeErr(w, err)
		return
	}
	info, err := h.eng.LoadGraph(r.Context(), "upload", p.Edges, p.BuildOptions()...)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"graph": info,
		"shape": p.Shape,
	})
}

func readGraphDocument(r *http.Request) ([]byte, ingest.Format, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("%w: multipart field \"file\": %v", graph.ErrMalformedInput, err)
		}
		defer file.Close()
		format, err := ingest.FormatFromName(header.Filename)
		if err != nil {
			return nil, "", err
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return data, format, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	format := ingest.FormatJSON
	if strings.Contains(mediaType, "yaml") {
		format = ingest.FormatYAML
	}
	return data, format, nil
}

// GET /v1/graph: metadata of the active graph.
func (h *Handler) activeGraph(w http.ResponseWriter, r *http.Request) {
	info, ok := h.eng.Active()
	if !ok {
		writeErr(w, engine.ErrNoActiveGraph)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GET /v1/path?source=A&target=B
func (h *Handler) findPath(w http.ResponseWriter, r *http.Request) {
	h.solve(w, r, r.URL.Query(), "source", "target")
}

// GET /solve_shortest_path/starting_node_id=A&end_node_id=B
func (h *Handler) legacySolve(w http.ResponseWriter, r *http.Request) {
	// PathValue is already unescaped; parse the raw segment so ParseQuery
	// decodes it exactly once.
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/solve_shortest_path/")
	q, err := url.ParseQuery(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	h.solve(w, r, q, "starting_node_id", "end_node_id")
}

func (h *Handler) solve(w http.ResponseWriter, r *http.Request, q url.Values, srcKey, dstKey string) {
	source, target := q.Get(srcKey), q.Get(dstKey)
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("%s and %s are required", srcKey, dstKey))
		return
	}
	res, err := h.eng.FindPath(r.Context(), source, target)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type distancesResponse struct {
	GraphID      string              `json:"graph_id"`
	Source       string              `json:"source"`
	Distances    map[string]*float64 `json:"distances"`
	Predecessors map[string]string   `json:"predecessors"`
}

// GET /v1/distances?source=A: distances from A to every node (null = unreachable).
func (h *Handler) distances(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "source is required")
		return
	}
	res, info, err := h.eng.Distances(r.Context(), source)
	if err != nil {
		writeErr(w, err)
		return
	}
	out := distancesResponse{
		GraphID:      info.ID,
		Source:       res.Source,
		Distances:    make(map[string]*float64, len(res.Dist)),
		Predecessors: res.Prev,
	}
	for id, d := range res.Dist {
		if math.IsInf(d, 1) {
			out.Distances[id] = nil
			continue
		}
		d := d
		out.Distances[id] = &d
	}
	writeJSON(w, http.StatusOK, out)
}

type batchItem struct {
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Path          []string `json:"shortest_path"`
	TotalDistance *float64 `json:"total_distance"`
	Error         string   `json:"error,omitempty"`
	Code          string   `json:"code,omitempty"`
}

// POST /v1/paths/batch: up to MaxBatch queries against one graph snapshot.
func (h *Handler) findPaths(w http.ResponseWriter, r *http.Request) {
	var queries []engine.Query
	if err := json.NewDecoder(r.Body).Decode(&queries); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "batch must contain at least one query")
		return
	}
	if h.opts.MaxBatch > 0 && len(queries) > h.opts.MaxBatch {
		writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(queries), h.opts.MaxBatch))
		return
	}

	results, err := h.eng.FindPaths(r.Context(), queries)
	if err != nil {
		writeErr(w, err)
		return
	}
	items := make([]batchItem, len(results))
	for i, res := range results {
		items[i] = batchItem{Source: res.Query.Source, Target: res.Query.Target}
		if res.Err != nil {
			_, items[i].Code = classify(res.Err)
			items[i].Error = res.Err.Error()
			continue
		}
		items[i].Path = res.Result.Path
		items[i].TotalDistance = res.Result.TotalDistance
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": items})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the batch queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	_, loaded := h.eng.Active()
	body := map[string]interface{}{
		"queue_utilization": util,
		"graph_loaded":      loaded,
	}
	if util > 0.8 {
		body["status"] = "overloaded"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	writeJSON(w, http.StatusOK, body)
}
