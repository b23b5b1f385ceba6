package codec

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultRegistryDecodesEveryFormat(t *testing.T) {
	cases := []struct {
		ext  string
		data string
	}{
		{ext: "json", data: `{"host": "db.local", "pool": {"size": "small"}}`},
		{ext: "yaml", data: "host: db.local\npool:\n  size: small\n"},
		{ext: ".yml", data: "host: db.local\npool:\n  size: small\n"},
		{ext: "toml", data: "host = \"db.local\"\n[pool]\nsize = \"small\"\n"},
		{ext: "cue", data: "host: \"db.local\"\npool: size: \"small\"\n"},
	}

	registry := Default()
	for _, tc := range cases {
		t.Run(tc.ext, func(t *testing.T) {
			codec, ok := registry.Lookup(tc.ext)
			if !ok {
				t.Fatalf("expected codec for %q", tc.ext)
			}
			decoded, err := codec.Decode([]byte(tc.data), "fragment."+strings.TrimPrefix(tc.ext, "."))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			tree, ok := decoded.(map[string]any)
			if !ok {
				t.Fatalf("expected map tree, got %T", decoded)
			}
			if tree["host"] != "db.local" {
				t.Fatalf("expected host db.local, got %v", tree["host"])
			}
			pool, ok := tree["pool"].(map[string]any)
			if !ok || pool["size"] != "small" {
				t.Fatalf("expected nested pool.size small, got %#v", tree["pool"])
			}
		})
	}
}

func TestForPathUnknownExtension(t *testing.T) {
	if _, err := Default().ForPath("/etc/app/database.ini"); err == nil {
		t.Fatalf("expected error for unregistered extension")
	}
}

func TestJSONDecodeRejectsInvalidInput(t *testing.T) {
	if _, err := (JSON{}).Decode([]byte(`{"port": `), "broken.json"); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestJSONEncodeIndent(t *testing.T) {
	out, err := (JSON{}).Encode(map[string]any{"port": 5432}, EncodeOptions{Indent: "  "})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(out) != "{\n  \"port\": 5432\n}" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCUEEncodeUnsupported(t *testing.T) {
	if _, err := (CUE{}).Encode(map[string]any{}, EncodeOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestRegisterValidates(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("", JSON{}); err == nil {
		t.Fatalf("expected empty extension error")
	}
	if err := registry.Register("json5", nil); err == nil {
		t.Fatalf("expected nil codec error")
	}
	if err := registry.Register(".JSON5", JSON{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := registry.Extensions(); len(got) != 1 || got[0] != "json5" {
		t.Fatalf("expected normalized extension, got %v", got)
	}
}
