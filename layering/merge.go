package layering

// MergeTrees composes trees ordered from strongest to weakest, returning a new
// tree that keeps every value set by a stronger layer while filling missing
// keys from weaker ones. Maps are merged key by key at every depth; any other
// value (scalars, slices, nil) set by a stronger layer replaces the weaker one.
func MergeTrees(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return map[string]any{}
	}

	merged := CloneTree(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeMaps(layers[i], merged)
	}
	if merged == nil {
		return map[string]any{}
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	if strong == nil {
		return CloneTree(weak)
	}
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = cloneValue(value)
	}
	for key, value := range strong {
		existing, ok := result[key]
		if !ok {
			result[key] = cloneValue(value)
			continue
		}
		result[key] = mergeValue(value, existing)
	}
	return result
}

func mergeValue(strong, weak any) any {
	strongMap, ok := strong.(map[string]any)
	if !ok {
		return cloneValue(strong)
	}
	weakMap, ok := weak.(map[string]any)
	if !ok {
		return CloneTree(strongMap)
	}
	return mergeMaps(strongMap, weakMap)
}

// CloneTree deep copies a decoded configuration tree.
func CloneTree(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}
	clone := make(map[string]any, len(tree))
	for key, value := range tree {
		clone[key] = cloneValue(value)
	}
	return clone
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneTree(typed)
	case []any:
		if typed == nil {
			return []any(nil)
		}
		clone := make([]any, len(typed))
		for i := range typed {
			clone[i] = cloneValue(typed[i])
		}
		return clone
	default:
		return typed
	}
}

// Lookup walks tree following path and reports whether a value exists there.
// An empty path returns the tree itself.
func Lookup(tree map[string]any, path ...string) (any, bool) {
	if tree == nil {
		return nil, false
	}
	var current any = tree
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
