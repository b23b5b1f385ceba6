package openapi

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateDocument(t *testing.T) {
	tree := map[string]any{
		"database": map[string]any{
			"host":  "localhost",
			"port":  float64(5432),
			"ratio": 0.5,
			"tls":   map[string]any{"enabled": true},
		},
		"http-server": map[string]any{
			"hosts": []any{"a", "b"},
		},
	}

	doc, err := Generate(tree,
		WithInfo(Info{Title: "Demo", Version: "2.0.0", Description: "demo config"}),
		WithBasePath("/v1/config/"),
		WithServer("https://config.internal/"),
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	info := doc["info"].(map[string]any)
	if info["title"] != "Demo" || info["version"] != "2.0.0" || info["description"] != "demo config" {
		t.Fatalf("unexpected info: %v", info)
	}

	if diff := cmp.Diff([]any{map[string]any{"url": "https://config.internal"}}, doc["servers"]); diff != "" {
		t.Fatalf("servers mismatch (-want +got):\n%s", diff)
	}

	paths := doc["paths"].(map[string]any)
	for _, path := range []string{"/v1/config", "/v1/config/database", "/v1/config/http-server"} {
		if _, ok := paths[path]; !ok {
			t.Fatalf("expected path %s, got %v", path, paths)
		}
	}

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	wantDatabase := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"host":  map[string]any{"type": "string"},
			"port":  map[string]any{"type": "integer"},
			"ratio": map[string]any{"type": "number"},
			"tls": map[string]any{
				"type":       "object",
				"properties": map[string]any{"enabled": map[string]any{"type": "boolean"}},
			},
		},
	}
	if diff := cmp.Diff(wantDatabase, schemas["Database"]); diff != "" {
		t.Fatalf("database schema mismatch (-want +got):\n%s", diff)
	}
	wantServer := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hosts": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}
	if diff := cmp.Diff(wantServer, schemas["HttpServer"]); diff != "" {
		t.Fatalf("server schema mismatch (-want +got):\n%s", diff)
	}

	op := paths["/v1/config/http-server"].(map[string]any)["get"].(map[string]any)
	if op["operationId"] != "getHttpServer" {
		t.Fatalf("unexpected operation id %v", op["operationId"])
	}
}

func TestGenerateExamples(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc, err := Generate(map[string]any{
		"job": map[string]any{"cron": "* * * * *", "since": when, "note": nil},
	}, WithExamples(true))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	job := doc["components"].(map[string]any)["schemas"].(map[string]any)["Job"].(map[string]any)
	props := job["properties"].(map[string]any)
	if props["cron"].(map[string]any)["example"] != "* * * * *" {
		t.Fatalf("expected scalar example, got %v", props["cron"])
	}
	since := props["since"].(map[string]any)
	if since["format"] != "date-time" || since["example"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected date schema %v", since)
	}
	if props["note"].(map[string]any)["nullable"] != true {
		t.Fatalf("expected nullable schema for null, got %v", props["note"])
	}
}

func TestGenerateEmptyAndErrors(t *testing.T) {
	doc, err := Generate(nil)
	if err != nil {
		t.Fatalf("generate empty: %v", err)
	}
	if _, ok := doc["components"]; ok {
		t.Fatalf("expected no components for an empty tree")
	}
	if len(doc["paths"].(map[string]any)) != 1 {
		t.Fatalf("expected only the root path")
	}

	_, err = Generate(map[string]any{"bad": map[string]any{"ch": make(chan int)}})
	if err == nil || !strings.Contains(err.Error(), `namespace "bad": ch`) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}

	_, err = Generate(map[string]any{"a-b": map[string]any{}, "a_b": map[string]any{}})
	if err == nil || !strings.Contains(err.Error(), `"a-b" and "a_b" both map to component AB`) {
		t.Fatalf("expected component collision error, got %v", err)
	}

	doc = buildDocument(newSettings(nil), nil, nil)
	doc["paths"].(map[string]any)["/other"] = doc["paths"].(map[string]any)["/config"]
	if err := validateDocument(doc); err == nil || !strings.Contains(err.Error(), `operationId "getConfig"`) {
		t.Fatalf("expected duplicate operation id error, got %v", err)
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"database":    "Database",
		"http-server": "HttpServer",
		"name1":       "Name1",
		"__":          "Namespace",
	}
	for in, want := range cases {
		if got := componentName(in); got != want {
			t.Fatalf("componentName(%q) = %q, want %q", in, got, want)
		}
	}
}
