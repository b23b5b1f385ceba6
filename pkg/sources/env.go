package sources

import (
	"slices"
	"sort"
	"strings"
)

// DefaultEnvSeparator nests DATABASE__PORT under database.port.
const DefaultEnvSeparator = "__"

// EnvOptions controls how environment entries become a tree.
type EnvOptions struct {
	// Separator splits variable names into nested keys. Defaults to "__".
	Separator string
	// LowerCase lower-cases every key segment.
	LowerCase bool
	// ParseValues converts literals with ParseValue.
	ParseValues bool
	// Prefix keeps only variables starting with it and strips it from keys.
	Prefix string
}

// Env builds a tree from KEY=value entries such as os.Environ() returns.
// Keys are split and normalised first, then applied shallowest path first so
// a nested key always replaces a scalar of the same prefix, whatever the
// separator. Entries that normalise to the same path apply in raw key order.
func Env(environ []string, opts EnvOptions) map[string]any {
	separator := opts.Separator
	if separator == "" {
		separator = DefaultEnvSeparator
	}

	type envEntry struct {
		raw   string
		path  []string
		value string
	}
	entries := make([]envEntry, 0, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		raw := key
		if opts.Prefix != "" {
			if !strings.HasPrefix(key, opts.Prefix) {
				continue
			}
			key = strings.TrimPrefix(key, opts.Prefix)
		}
		if opts.LowerCase {
			key = strings.ToLower(key)
		}
		path := splitKey(key, separator)
		if len(path) == 0 {
			continue
		}
		entries = append(entries, envEntry{raw: raw, path: path, value: value})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if len(a.path) != len(b.path) {
			return len(a.path) < len(b.path)
		}
		if c := slices.Compare(a.path, b.path); c != 0 {
			return c < 0
		}
		return a.raw < b.raw
	})

	tree := map[string]any{}
	for _, entry := range entries {
		var parsed any = entry.value
		if opts.ParseValues {
			parsed = ParseValue(entry.value)
		}
		setPath(tree, entry.path, parsed)
	}
	return tree
}
