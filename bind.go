package flexconf

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-flexconf/internal/hydrate"
)

// BindOption configures Bind.
type BindOption[T any] func(*bindConfig[T])

type bindConfig[T any] struct {
	decoder []hydrate.Option[T]
}

// BindStrict rejects keys that have no matching struct field.
func BindStrict[T any]() BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithStrict[T]())
	}
}

// BindWeak converts string leaves, as produced by the env and argv layers
// without WithParseValues, into the numeric or boolean field types.
func BindWeak[T any]() BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithWeakTyping[T]())
	}
}

// BindTagName reads field names from the given struct tag instead of json.
func BindTagName[T any](tag string) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithTagName[T](tag))
	}
}

// BindTransform rewrites the namespace tree before it is decoded.
func BindTransform[T any](fn func(namespace string, tree map[string]any) (map[string]any, error)) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		if fn == nil {
			return
		}
		cfg.decoder = append(cfg.decoder, hydrate.WithTransform[T](func(ctx hydrate.Context, tree map[string]any) (map[string]any, error) {
			return fn(ctx.Namespace, tree)
		}))
	}
}

// Bind decodes the merged subtree of namespace into T using its json tags.
// Durations such as "30s" bind to time.Duration fields.
// When T, or *T, implements Validate() error the result is validated.
func Bind[T any](r *Resolver, namespace string, opts ...BindOption[T]) (T, error) {
	var zero T
	tree, err := r.Namespace(namespace)
	if err != nil {
		return zero, err
	}

	cfg := bindConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	decoderOpts := append(cfg.decoder, hydrate.WithCheck[T](func(_ hydrate.Context, value *T) error {
		return validateValue(value)
	}))

	value, err := hydrate.NewDecoder(decoderOpts...).Decode(hydrate.Context{Namespace: namespace, Source: r.root}, tree)
	if err != nil {
		return zero, fmt.Errorf("flexconf: bind %s: %w", namespace, err)
	}
	return value, nil
}

func validateValue[T any](value *T) error {
	if value == nil {
		return nil
	}
	if v, ok := any(value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	if v, ok := any(*value).(interface{ Validate() error }); ok {
		if rv := reflect.ValueOf(*value); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return v.Validate()
	}
	return nil
}
