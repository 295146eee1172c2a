package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NormalizeYAML converts a YAML document into the JSON form the validator
// reads. JSON input passes through unchanged since YAML is a superset.
func NormalizeYAML(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationErrors{Errors: []*ValidationError{{
			Reason: fmt.Sprintf("kein gültiges YAML: %v", err),
			Kind:   KindMalformed,
			Err:    err,
		}}}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationErrors{Errors: []*ValidationError{{
			Reason: fmt.Sprintf("YAML lässt sich nicht als JSON darstellen: %v", err),
			Kind:   KindMalformed,
			Err:    err,
		}}}
	}
	return out, nil
}
