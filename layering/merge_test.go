package layering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeTreesStrongestFirst(t *testing.T) {
	cases := []struct {
		name   string
		layers []map[string]any
		expect map[string]any
	}{
		{
			name:   "no layers",
			expect: map[string]any{},
		},
		{
			name: "scalar conflict keeps strongest",
			layers: []map[string]any{
				{"database": map[string]any{"port": 5000.0}},
				{"database": map[string]any{"port": 5432.0, "host": "db"}},
			},
			expect: map[string]any{"database": map[string]any{"port": 5000.0, "host": "db"}},
		},
		{
			name: "nested maps merge at every depth",
			layers: []map[string]any{
				{"a": map[string]any{"b": map[string]any{"c": 1}}},
				{"a": map[string]any{"b": map[string]any{"d": 2}, "e": 3}},
				{"a": map[string]any{"b": map[string]any{"c": 9, "f": 4}}},
			},
			expect: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1, "d": 2, "f": 4}, "e": 3}},
		},
		{
			name: "slices replace rather than append",
			layers: []map[string]any{
				{"hosts": []any{"a"}},
				{"hosts": []any{"b", "c"}},
			},
			expect: map[string]any{"hosts": []any{"a"}},
		},
		{
			name: "strong scalar shadows weak map",
			layers: []map[string]any{
				{"cache": "off"},
				{"cache": map[string]any{"ttl": 10}},
			},
			expect: map[string]any{"cache": "off"},
		},
		{
			name: "strong map shadows weak scalar",
			layers: []map[string]any{
				{"cache": map[string]any{"ttl": 10}},
				{"cache": "off"},
			},
			expect: map[string]any{"cache": map[string]any{"ttl": 10}},
		},
		{
			name: "explicit nil wins",
			layers: []map[string]any{
				{"token": nil},
				{"token": "secret"},
			},
			expect: map[string]any{"token": nil},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeTrees(tc.layers...)
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("merged tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeTreesDoesNotAliasInputs(t *testing.T) {
	strong := map[string]any{"a": map[string]any{"b": 1}}
	weak := map[string]any{"a": map[string]any{"c": []any{"x"}}}

	merged := MergeTrees(strong, weak)
	merged["a"].(map[string]any)["b"] = 2
	merged["a"].(map[string]any)["c"].([]any)[0] = "y"

	if strong["a"].(map[string]any)["b"] != 1 {
		t.Fatalf("strong layer mutated through merged tree")
	}
	if weak["a"].(map[string]any)["c"].([]any)[0] != "x" {
		t.Fatalf("weak layer mutated through merged tree")
	}
}

func TestLookup(t *testing.T) {
	tree := map[string]any{"a": map[string]any{"b": "c"}, "n": nil}

	if value, ok := Lookup(tree, "a", "b"); !ok || value != "c" {
		t.Fatalf("expected a.b to be c, got %v (%v)", value, ok)
	}
	if _, ok := Lookup(tree, "a", "b", "c"); ok {
		t.Fatalf("expected lookup through scalar to fail")
	}
	if value, ok := Lookup(tree, "n"); !ok || value != nil {
		t.Fatalf("expected explicit nil to be found, got %v (%v)", value, ok)
	}
	if _, ok := Lookup(nil, "a"); ok {
		t.Fatalf("expected lookup on nil tree to fail")
	}
}
