package layering

import (
	"errors"
	"fmt"
	"sync"
)

// Kind identifies which input produced a layer.
type Kind string

const (
	// KindArgv marks a layer parsed from command-line arguments.
	KindArgv Kind = "argv"
	// KindEnv marks a layer parsed from environment variables.
	KindEnv Kind = "env"
	// KindFile marks a layer decoded from a configuration fragment.
	KindFile Kind = "file"
	// KindLiteral marks a layer supplied directly by the caller.
	KindLiteral Kind = "literal"
)

var (
	// ErrLayerNameRequired indicates a layer without a name.
	ErrLayerNameRequired = errors.New("layering: layer name must be provided")
	// ErrDuplicateLayerName indicates two layers share a name.
	ErrDuplicateLayerName = errors.New("layering: layer names must be unique")
)

// Layer is one named key-space. Tree holds namespace -> value.
type Layer struct {
	Name  string
	Kind  Kind
	Tree  map[string]any
	Score float64
}

func (l Layer) clone() Layer {
	return Layer{
		Name:  l.Name,
		Kind:  l.Kind,
		Tree:  CloneTree(l.Tree),
		Score: l.Score,
	}
}

// Store is an ordered list of layers. Layers added earlier take precedence
// over layers added later. A Store is built once and then only read; Add is
// not safe for concurrent use, reads are.
type Store struct {
	layers []Layer
	names  map[string]struct{}

	mu     sync.Mutex
	merged map[string]any
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{names: map[string]struct{}{}}
}

// Add appends layer with lower precedence than every layer added before it.
func (s *Store) Add(layer Layer) error {
	if layer.Name == "" {
		return ErrLayerNameRequired
	}
	if _, exists := s.names[layer.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLayerName, layer.Name)
	}
	if s.names == nil {
		s.names = map[string]struct{}{}
	}
	s.names[layer.Name] = struct{}{}
	s.layers = append(s.layers, layer.clone())
	s.mu.Lock()
	s.merged = nil
	s.mu.Unlock()
	return nil
}

// Len returns the number of layers.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Layers returns copies of the layers in precedence order.
func (s *Store) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i := range s.layers {
		out[i] = s.layers[i].clone()
	}
	return out
}

// Merged returns a copy of the merged tree across all layers.
func (s *Store) Merged() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return CloneTree(s.mergedTree())
}

// Get reads the merged value at path.
func (s *Store) Get(path ...string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := Lookup(s.mergedTree(), path...)
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Lookup reads the value at path from the layer at index only.
func (s *Store) Lookup(index int, path ...string) (any, bool) {
	if s == nil || index < 0 || index >= len(s.layers) {
		return nil, false
	}
	value, ok := Lookup(s.layers[index].Tree, path...)
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

func (s *Store) mergedTree() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.merged != nil {
		return s.merged
	}
	trees := make([]map[string]any, len(s.layers))
	for i := range s.layers {
		trees[i] = s.layers[i].Tree
	}
	s.merged = MergeTrees(trees...)
	return s.merged
}
