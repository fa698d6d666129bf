// Package ingest turns uploaded or on-disk graph documents into the canonical
// edge-record sequence the graph store loads.
//
// Two document shapes are accepted, in JSON or YAML:
//
//	edge list:  [{"source": "A", "target": "B", "weight": 1, "bidirectional": true}]
//	adjacency:  {"A": {"B": 1, "C": 4}, "D": {}}
//
// Numeric node ids are coerced to their literal text. A record without a
// weight is rejected rather than defaulted.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/pathsolver/internal/graph"
)

// Format is the serialization of a graph document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Shape identifies which of the two document layouts was decoded.
type Shape string

const (
	ShapeEdgeList  Shape = "edge_list"
	ShapeAdjacency Shape = "adjacency"
)

// Payload is a decoded graph document in canonical form.
type Payload struct {
	Shape Shape
	Edges []graph.EdgeRecord
	// Nodes lists adjacency keys so that keys with no neighbors stay known.
	Nodes []string
}

// BuildOptions returns the graph.Build options the payload needs besides its
// edges.
func (p *Payload) BuildOptions() []graph.BuildOption {
	if len(p.Nodes) == 0 {
		return nil
	}
	return []graph.BuildOption{graph.WithNodes(p.Nodes...)}
}

// FormatFromName picks a format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", graph.ErrMalformedInput, name)
}

var validate = validator.New()

// wireEdge is an edge-list record as it appears in a document.
type wireEdge struct {
	Source        nodeID   `json:"source" yaml:"source" validate:"required"`
	Target        nodeID   `json:"target" yaml:"target" validate:"required"`
	Weight        *float64 `json:"weight" yaml:"weight" validate:"required"`
	Bidirectional bool     `json:"bidirectional" yaml:"bidirectional"`
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*Payload, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	}
	return nil, fmt.Errorf("%w: unknown format %q", graph.ErrMalformedInput, format)
}

func decodeJSON(data []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", graph.ErrMalformedInput)
	}
	switch trimmed[0] {
	case '[':
		var recs []wireEdge
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("%w: edge list: %v", graph.ErrMalformedInput, err)
		}
		return fromEdgeList(recs)
	case '{':
		var adj map[string]map[nodeID]*float64
		if err := json.Unmarshal(trimmed, &adj); err != nil {
			return nil, fmt.Errorf("%w: adjacency: %v", graph.ErrMalformedInput, err)
		}
		return fromAdjacency(adj)
	}
	return nil, fmt.Errorf("%w: document is neither an edge list nor an adjacency mapping", graph.ErrMalformedInput)
}

func decodeYAML(data []byte) (*Payload, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", graph.ErrMalformedInput, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", graph.ErrMalformedInput)
	}
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var recs []wireEdge
		if err := root.Decode(&recs); err != nil {
			return nil, fmt.Errorf("%w: edge list: %v", graph.ErrMalformedInput, err)
		}
		return fromEdgeList(recs)
	case yaml.MappingNode:
		adj, err := yamlAdjacency(root)
		if err != nil {
			return nil, err
		}
		return fromAdjacency(adj)
	}
	return nil, fmt.Errorf("%w: document is neither an edge list nor an adjacency mapping", graph.ErrMalformedInput)
}

// yamlAdjacency walks the mapping by hand at both levels so that keys such as
// `1:` keep their literal text and every key gets the same id checks.
func yamlAdjacency(root *yaml.Node) (map[string]map[nodeID]*float64, error) {
	adj := make(map[string]map[nodeID]*float64, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		src, err := yamlScalarID(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", graph.ErrMalformedInput, err)
		}
		if _, dup := adj[src]; dup {
			return nil, fmt.Errorf("%w: line %d: node %q defined twice", graph.ErrMalformedInput, key.Line, src)
		}
		nbrs, err := yamlNeighbors(src, val)
		if err != nil {
			return nil, err
		}
		adj[src] = nbrs
	}
	return adj, nil
}

// yamlNeighbors decodes the neighbor mapping of src. A null value means no
// neighbors.
func yamlNeighbors(src string, val *yaml.Node) (map[nodeID]*float64, error) {
	if val.Kind == yaml.ScalarNode && val.ShortTag() == "!!null" {
		return nil, nil
	}
	if val.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: neighbors of %q must be a mapping", graph.ErrMalformedInput, val.Line, src)
	}
	nbrs := make(map[nodeID]*float64, len(val.Content)/2)
	for i := 0; i+1 < len(val.Content); i += 2 {
		k, v := val.Content[i], val.Content[i+1]
		dst, err := yamlScalarID(k)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: %v", graph.ErrMalformedInput, src, err)
		}
		if _, dup := nbrs[nodeID(dst)]; dup {
			return nil, fmt.Errorf("%w: line %d: %s→%s defined twice", graph.ErrMalformedInput, k.Line, src, dst)
		}
		var w *float64
		if err := v.Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: %s→%s: %v", graph.ErrMalformedInput, src, dst, err)
		}
		nbrs[nodeID(dst)] = w
	}
	return nbrs, nil
}

func fromEdgeList(recs []wireEdge) (*Payload, error) {
	p := &Payload{Shape: ShapeEdgeList, Edges: make([]graph.EdgeRecord, 0, len(recs))}
	for i := range recs {
		r := &recs[i]
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("%w: edges[%d]: %v", graph.ErrMalformedInput, i, err)
		}
		p.Edges = append(p.Edges, graph.EdgeRecord{
			Source:        string(r.Source),
			Target:        string(r.Target),
			Weight:        *r.Weight,
			Bidirectional: r.Bidirectional,
		})
	}
	return p, nil
}

func fromAdjacency(adj map[string]map[nodeID]*float64) (*Payload, error) {
	p := &Payload{Shape: ShapeAdjacency, Nodes: make([]string, 0, len(adj))}
	for src := range adj {
		if src == "" {
			return nil, fmt.Errorf("%w: empty node id", graph.ErrMalformedInput)
		}
		p.Nodes = append(p.Nodes, src)
	}
	sort.Strings(p.Nodes)
	for _, src := range p.Nodes {
		nbrs := adj[src]
		dsts := make([]string, 0, len(nbrs))
		for dst, w := range nbrs {
			if w == nil {
				return nil, fmt.Errorf("%w: %s→%s: weight is required", graph.ErrMalformedInput, src, dst)
			}
			dsts = append(dsts, string(dst))
		}
		sort.Strings(dsts)
		for _, dst := range dsts {
			p.Edges = append(p.Edges, graph.EdgeRecord{Source: src, Target: dst, Weight: *nbrs[nodeID(dst)]})
		}
	}
	return p, nil
}
