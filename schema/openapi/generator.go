// Package openapi describes a resolved configuration tree as an OpenAPI
// document: one component schema and one read path per namespace.
package openapi

import (
	"fmt"
	"sort"
	"time"
)

// Generate builds the document for tree, a namespace -> value map such as
// the merged tree of a flexconf resolver.
func Generate(tree map[string]any, opts ...Option) (map[string]any, error) {
	s := newSettings(opts)

	namespaces := make([]string, 0, len(tree))
	for namespace := range tree {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)

	schemas := make(map[string]any, len(namespaces))
	owners := make(map[string]string, len(namespaces))
	for _, namespace := range namespaces {
		name := componentName(namespace)
		if other, taken := owners[name]; taken {
			return nil, fmt.Errorf("openapi: namespaces %q and %q both map to component %s", other, namespace, name)
		}
		owners[name] = namespace

		schema, err := buildSchema(tree[namespace], s.examples)
		if err != nil {
			return nil, fmt.Errorf("openapi: namespace %q: %w", namespace, err)
		}
		schemas[name] = schema
	}

	document := buildDocument(s, namespaces, schemas)
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

// Schema infers the schema of a single decoded value.
func Schema(value any) (map[string]any, error) {
	return buildSchema(value, false)
}

func buildSchema(value any, examples bool) (map[string]any, error) {
	var schema map[string]any
	switch typed := value.(type) {
	case nil:
		return map[string]any{"nullable": true}, nil
	case bool:
		schema = map[string]any{"type": "boolean"}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		schema = map[string]any{"type": "integer"}
	case float32:
		schema = numberSchema(float64(typed))
	case float64:
		schema = numberSchema(typed)
	case string:
		schema = map[string]any{"type": "string"}
	case time.Time:
		schema = map[string]any{"type": "string", "format": "date-time"}
		if examples {
			schema["example"] = typed.Format(time.RFC3339Nano)
		}
		return schema, nil
	case map[string]any:
		return schemaForMap(typed, examples)
	case []any:
		return schemaForSlice(typed, examples)
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
	if examples {
		schema["example"] = value
	}
	return schema, nil
}

// numberSchema reports whole floats as integers; JSON decoding produces
// float64 for every number.
func numberSchema(value float64) map[string]any {
	if value == float64(int64(value)) {
		return map[string]any{"type": "integer"}
	}
	return map[string]any{"type": "number"}
}

func schemaForMap(tree map[string]any, examples bool) (map[string]any, error) {
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	properties := make(map[string]any, len(names))
	for _, name := range names {
		child, err := buildSchema(tree[name], examples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		properties[name] = child
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}, nil
}

func schemaForSlice(items []any, examples bool) (map[string]any, error) {
	itemSchema := map[string]any{}
	if len(items) > 0 {
		var err error
		itemSchema, err = buildSchema(items[0], false)
		if err != nil {
			return nil, err
		}
	}
	schema := map[string]any{
		"type":  "array",
		"items": itemSchema,
	}
	if examples {
		schema["example"] = items
	}
	return schema, nil
}
