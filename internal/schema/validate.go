package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var allowedSchemaKeys = map[string]bool{
	"table":  true,
	"fields": true,
}

var allowedFieldKeys = map[string]bool{
	"name":   true,
	"column": true,
	"kind":   true,
}

var allowedKindValues = map[string]bool{
	string(KindString):  true,
	string(KindArray):   true,
	string(KindMixed):   true,
	string(KindDate):    true,
	string(KindBoolean): true,
}

func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "schema":
			allowedKeys = allowedSchemaKeys
		case "field":
			allowedKeys = allowedFieldKeys
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val := node.Content[i+1]

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s (line %d)", key, context, node.Content[i].Line)
			}
			if context == "field" && key == "kind" && !allowedKindValues[val.Value] {
				return fmt.Errorf("unknown kind '%s' in field (line %d)", val.Value, val.Line)
			}

			next := "value"
			if context == "schema" && key == "fields" {
				next = "fields-seq"
			}
			if err := validateYAMLNode(val, next); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		next := context
		if context == "fields-seq" {
			next = "field"
		}
		for _, item := range node.Content {
			if err := validateYAMLNode(item, next); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		if context == "schema" {
			return fmt.Errorf("schema root must be a mapping")
		}
	}
	return nil
}
