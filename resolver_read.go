package flexconf

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-flexconf/layering"
)

// Final returns a copy of the fully merged tree.
func (r *Resolver) Final() (map[string]any, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	return r.store.Merged(), nil
}

// Namespace returns a copy of the merged subtree of namespace.
func (r *Resolver) Namespace(namespace string) (map[string]any, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	value, ok := r.store.Get(namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotFound, namespace)
	}
	tree, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("flexconf: namespace %q holds %T, not an object", namespace, value)
	}
	return tree, nil
}

// Get returns the merged value at a dot separated path such as
// "database.port".
func (r *Resolver) Get(path string) (any, error) {
	return r.GetPath(splitPath(path)...)
}

// GetPath returns the merged value at segments. Use it when keys contain
// dots.
func (r *Resolver) GetPath(segments ...string) (any, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	value, ok := r.store.Get(segments...)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, strings.Join(segments, "."))
	}
	return value, nil
}

// Fragments returns the included fragments in merge order, highest
// precedence first.
func (r *Resolver) Fragments() ([]LoadedFragment, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	return append([]LoadedFragment(nil), r.fragments...), nil
}

// Excluded returns the fragments rejected by their tag rules, in discovery
// order.
func (r *Resolver) Excluded() ([]*Fragment, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	return append([]*Fragment(nil), r.excluded...), nil
}

// Layers returns copies of every layer in precedence order.
func (r *Resolver) Layers() ([]layering.Layer, error) {
	if !r.loaded {
		return nil, ErrNotLoaded
	}
	return r.store.Layers(), nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
