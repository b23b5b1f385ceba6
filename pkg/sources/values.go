// Package sources turns process arguments and environment variables into
// configuration trees that can be stacked on top of file fragments.
package sources

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseValue converts well-known literals into typed values: true, false,
// null, numbers and JSON objects or arrays. Anything else stays a string.
func ParseValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	case "":
		return raw
	}
	if number, err := strconv.ParseFloat(trimmed, 64); err == nil && looksNumeric(trimmed) {
		return number
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var out any
		if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
			return out
		}
	}
	return raw
}

// looksNumeric rejects strings ParseFloat accepts but users rarely mean as
// numbers, such as "Inf", "NaN" or hex floats.
func looksNumeric(value string) bool {
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// setPath assigns value at path inside tree, replacing any scalar found on
// the way with a map. A scalar never replaces an existing map.
func setPath(tree map[string]any, path []string, value any) {
	if len(path) == 0 {
		return
	}
	node := tree
	for _, segment := range path[:len(path)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[segment] = child
		}
		node = child
	}
	last := path[len(path)-1]
	if _, isMap := node[last].(map[string]any); isMap {
		if _, replacement := value.(map[string]any); !replacement {
			return
		}
	}
	node[last] = value
}

func splitKey(key, separator string) []string {
	if separator == "" {
		return []string{key}
	}
	parts := strings.Split(key, separator)
	out := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
