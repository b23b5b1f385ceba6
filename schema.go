package flexconf

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// FieldDescriptor describes one leaf of the merged tree: its dotted path,
// the Go type of its value and the layer whose value won.
type FieldDescriptor struct {
	Path  string `json:"path"`
	Type  string `json:"type"`
	Layer string `json:"layer,omitempty"`
}

// Describe lists the leaves of the merged tree sorted by path. Empty maps
// and lists count as leaves.
func (r *Resolver) Describe() ([]FieldDescriptor, error) {
	final, err := r.Final()
	if err != nil {
		return nil, err
	}
	layers := r.store.Layers()
	fields := []FieldDescriptor{}
	walkLeaves(final, nil, func(segments []string, value any) {
		field := FieldDescriptor{Path: strings.Join(segments, "."), Type: goTypeName(value)}
		if effective, ok := r.traceSegments(layers, segments).Effective(); ok {
			field.Layer = effective.Layer
		}
		fields = append(fields, field)
	})
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields, nil
}

// walkLeaves visits leaves in key order with the key segments leading to
// them. Keys may contain dots.
func walkLeaves(value any, segments []string, visit func(segments []string, value any)) {
	tree, isTree := value.(map[string]any)
	if !isTree || len(tree) == 0 {
		if len(segments) > 0 {
			visit(segments, value)
		}
		return
	}
	for _, key := range slices.Sorted(maps.Keys(tree)) {
		walkLeaves(tree[key], append(slices.Clip(segments), key), visit)
	}
}

// goTypeName names the dynamic type of value. Lists report their element
// type when every element shares it.
func goTypeName(value any) string {
	switch typed := value.(type) {
	case nil:
		return "nil"
	case map[string]any:
		return "map[string]any"
	case []any:
		element := ""
		for _, item := range typed {
			name := goTypeName(item)
			if element != "" && name != element {
				return "[]any"
			}
			element = name
		}
		if element == "" {
			element = "any"
		}
		return "[]" + element
	default:
		return fmt.Sprintf("%T", value)
	}
}
