// Package codec decodes and encodes configuration fragment contents. Codecs
// are looked up by file extension so a fragment tree may mix JSON, YAML, TOML
// and CUE files.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupported is returned when a codec cannot perform an operation.
var ErrUnsupported = errors.New("codec: operation not supported")

// EncodeOptions controls serialisation.
type EncodeOptions struct {
	// Indent is the per-level indentation. Empty produces compact output
	// where the format allows it.
	Indent string
}

// Codec converts between raw bytes and decoded trees.
type Codec interface {
	Name() string
	Decode(data []byte, filename string) (any, error)
	Encode(value any, opts EncodeOptions) ([]byte, error)
}

// Registry maps file extensions (without the leading dot) to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec{}}
}

// Default returns a registry with json, yaml, yml, toml and cue registered.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("json", JSON{})
	_ = r.Register("yaml", YAML{})
	_ = r.Register("yml", YAML{})
	_ = r.Register("toml", TOML{})
	_ = r.Register("cue", CUE{})
	return r
}

// Register binds codec to ext, replacing any previous binding.
func (r *Registry) Register(ext string, codec Codec) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("codec: extension must not be empty")
	}
	if codec == nil {
		return fmt.Errorf("codec: codec for %q is nil", ext)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codecs == nil {
		r.codecs = map[string]Codec{}
	}
	r.codecs[ext] = codec
	return nil
}

// Lookup returns the codec bound to ext.
func (r *Registry) Lookup(ext string) (Codec, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	codec, ok := r.codecs[normalizeExt(ext)]
	return codec, ok
}

// ForPath returns the codec bound to the extension of path.
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	codec, ok := r.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("codec: no codec registered for %q", ext)
	}
	return codec, nil
}

// Extensions returns registered extensions sorted alphabetically.
func (r *Registry) Extensions() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// JSON is the encoding/json codec.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Decode(data []byte, _ string) (any, error) {
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (JSON) Encode(value any, opts EncodeOptions) ([]byte, error) {
	if opts.Indent == "" {
		return json.Marshal(value)
	}
	return json.MarshalIndent(value, "", opts.Indent)
}

// YAML is the gopkg.in/yaml.v3 codec.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Decode(data []byte, _ string) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return normalizeTree(out), nil
}

func (YAML) Encode(value any, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if n := len(opts.Indent); n > 0 {
		enc.SetIndent(n)
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TOML is the github.com/pelletier/go-toml/v2 codec.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) Decode(data []byte, _ string) (any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (TOML) Encode(value any, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if opts.Indent != "" {
		enc.SetIndentSymbol(opts.Indent)
		enc.SetIndentTables(true)
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CUE decodes CUE documents with cuelang.org/go. Values must be concrete.
type CUE struct{}

func (CUE) Name() string { return "cue" }

func (CUE) Decode(data []byte, filename string) (any, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	var out any
	if err := value.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (CUE) Encode(any, EncodeOptions) ([]byte, error) {
	return nil, fmt.Errorf("%w: cue encode", ErrUnsupported)
}

// normalizeTree converts map[any]any nodes, which yaml emits for non-string
// keys, into map[string]any so trees from every codec merge uniformly.
func normalizeTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			typed[key] = normalizeTree(child)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[fmt.Sprint(key)] = normalizeTree(child)
		}
		return out
	case []any:
		for i := range typed {
			typed[i] = normalizeTree(typed[i])
		}
		return typed
	default:
		return typed
	}
}
