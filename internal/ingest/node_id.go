package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// nodeID is a node identifier that accepts strings and numbers on the wire.
// Numbers keep their literal text: 7 becomes "7", 2.50 becomes "2.50".
type nodeID string

func (id *nodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = nodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number, got %s", data)
	}
	*id = nodeID(n.String())
	return nil
}

func (id *nodeID) UnmarshalYAML(value *yaml.Node) error {
	s, err := yamlScalarID(value)
	if err != nil {
		return err
	}
	*id = nodeID(s)
	return nil
}

// yamlScalarID returns the literal text of a YAML node used as a node id.
// Null and boolean scalars are rejected rather than read as "~" or "true".
func yamlScalarID(value *yaml.Node) (string, error) {
	if value.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: node id must be a scalar", value.Line)
	}
	switch value.ShortTag() {
	case "!!str", "!!int", "!!float":
		return value.Value, nil
	}
	return "", fmt.Errorf("line %d: node id must be a string or number, got %s", value.Line, value.ShortTag())
}
