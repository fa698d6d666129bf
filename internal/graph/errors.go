package graph

import "errors"

var (
	// ErrMalformedInput reports edge data the store refuses to load: a missing
	// id, a non-finite weight or a negative weight.
	ErrMalformedInput = errors.New("graph: malformed input")

	// ErrUnknownNode reports an id that is not part of the loaded graph.
	ErrUnknownNode = errors.New("graph: unknown node")
)
