// Package yamlsource reads YAML documents into provider mappings. Nested
// maps are flattened into dotted keys and scalar values keep their YAML
// types, so a YAML integer read as a string is reported as a type mismatch.
package yamlsource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/confcascade/internal/provider"
)

// Load reads and parses the YAML file at path.
func Load(path string) (provider.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	values, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

// Parse decodes a YAML document whose root is a mapping. An empty document
// yields an empty mapping.
func Parse(data []byte) (provider.Mapping, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	out := make(provider.Mapping, len(raw))
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out provider.Mapping) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = val
		}
	}
}
