package flexconf

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

// isolated keeps tests independent from the process arguments and
// environment.
func isolated(opts ...Option) []Option {
	return append([]Option{WithArgs(nil), WithEnviron(nil)}, opts...)
}

func scenarioRegistry() *TagRegistry {
	registry := NewTagRegistry()
	registry.MustRegister("tag1", NewRule(
		AlwaysApplies(),
		WithWeights(map[string]float64{"val1": 2}, 4),
	))
	registry.MustRegister("tag2", NewRule(
		AlwaysApplies(),
		WithWeights(map[string]float64{"val1": 8}, 16),
	))
	return registry
}

func environmentRegistry(active string) *TagRegistry {
	registry := NewTagRegistry()
	registry.MustRegister("env", NewRule(
		WithValues(map[string]string{"dev": "development", "prod": "production"}),
		AppliesTo(active),
		WithConstantWeight(10),
	))
	return registry
}
