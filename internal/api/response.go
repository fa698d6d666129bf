package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/pathsolver/internal/engine"
	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
)

// Error codes carried in error envelopes.
const (
	codeMalformedInput  = "malformed_input"
	codeNoActiveGraph   = "no_active_graph"
	codeUnknownNode     = "unknown_node"
	codeBadRequest      = "bad_request"
	codePayloadTooLarge = "payload_too_large"
	codeQueueFull       = "queue_full"
	codeInternal        = "internal"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeErr maps a core error onto a status and code.
func writeErr(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, codePayloadTooLarge
	case errors.Is(err, graph.ErrMalformedInput):
		return http.StatusBadRequest, codeMalformedInput
	case errors.Is(err, engine.ErrNoActiveGraph):
		return http.StatusConflict, codeNoActiveGraph
	case errors.Is(err, graph.ErrUnknownNode):
		return http.StatusNotFound, codeUnknownNode
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests, codeQueueFull
	}
	return http.StatusInternalServerError, codeInternal
}
