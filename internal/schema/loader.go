package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a schema file. An empty path yields the built-in dataset schema.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("schema YAML parse error: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty schema YAML")
	}
	if err := validateYAMLNode(root.Content[0], "schema"); err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	var s Schema
	if err := root.Decode(&s); err != nil {
		return nil, fmt.Errorf("schema unmarshal error: %w", err)
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return &s, nil
}
