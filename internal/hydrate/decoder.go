// Package hydrate turns resolved namespace trees into typed structs.
package hydrate

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultTagName is the struct tag read for field names.
const DefaultTagName = "json"

// Context identifies the namespace being bound and the root it was
// resolved from.
type Context struct {
	Namespace string
	Source    string
}

// Transform rewrites the tree before it is decoded. Returning a nil map
// keeps the current tree.
type Transform func(Context, map[string]any) (map[string]any, error)

// Check inspects or adjusts the decoded value.
type Check[T any] func(Context, *T) error

// DecodeFunc replaces the mapstructure step entirely.
type DecodeFunc[T any] func(Context, map[string]any) (T, error)

// Option configures a Decoder.
type Option[T any] func(*Decoder[T])

// Decoder binds a namespace tree onto T.
type Decoder[T any] struct {
	tagName    string
	strict     bool
	weak       bool
	transforms []Transform
	checks     []Check[T]
	hooks      []mapstructure.DecodeHookFunc
	decode     DecodeFunc[T]
}

// Stage names reported by DecodeError.
const (
	StageCopy      = "copy"
	StageTransform = "transform"
	StageDecode    = "decode"
	StageCheck     = "check"
)

// DecodeError reports the stage that failed while binding a namespace.
type DecodeError struct {
	Namespace string
	Stage     string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hydrate: %s %q: %v", e.Stage, e.Namespace, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WithTransform runs fn on a private copy of the tree before decoding.
func WithTransform[T any](fn Transform) Option[T] {
	return func(d *Decoder[T]) {
		if fn != nil {
			d.transforms = append(d.transforms, fn)
		}
	}
}

// WithCheck runs fn on the decoded value.
func WithCheck[T any](fn Check[T]) Option[T] {
	return func(d *Decoder[T]) {
		if fn != nil {
			d.checks = append(d.checks, fn)
		}
	}
}

// WithStrict fails when the tree holds keys with no matching field.
func WithStrict[T any]() Option[T] {
	return func(d *Decoder[T]) { d.strict = true }
}

// WithWeakTyping converts strings such as "5432" or "true" to the field
// type. Values from the environment and argv layers arrive as strings.
func WithWeakTyping[T any]() Option[T] {
	return func(d *Decoder[T]) { d.weak = true }
}

// WithTagName reads field names from tag instead of json.
func WithTagName[T any](tag string) Option[T] {
	return func(d *Decoder[T]) {
		if tag != "" {
			d.tagName = tag
		}
	}
}

// WithDecodeHook appends a mapstructure conversion hook.
func WithDecodeHook[T any](hook mapstructure.DecodeHookFunc) Option[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.hooks = append(d.hooks, hook)
		}
	}
}

// WithDecodeFunc bypasses mapstructure. Transforms and checks still run.
func WithDecodeFunc[T any](fn DecodeFunc[T]) Option[T] {
	return func(d *Decoder[T]) { d.decode = fn }
}

// NewDecoder builds a Decoder. Durations ("30s"), RFC 3339 timestamps and
// encoding.TextUnmarshaler fields are converted by default.
func NewDecoder[T any](opts ...Option[T]) *Decoder[T] {
	d := &Decoder[T]{
		tagName: DefaultTagName,
		hooks: []mapstructure.DecodeHookFunc{
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode binds tree onto a new T. The caller's tree is never modified.
func (d *Decoder[T]) Decode(ctx Context, tree map[string]any) (T, error) {
	var zero T
	if tree == nil {
		return zero, &DecodeError{Namespace: ctx.Namespace, Stage: StageCopy, Err: fmt.Errorf("tree is nil")}
	}

	current, ok := copyValue(tree).(map[string]any)
	if !ok {
		return zero, &DecodeError{Namespace: ctx.Namespace, Stage: StageCopy, Err: fmt.Errorf("unexpected tree type %T", tree)}
	}
	for _, transform := range d.transforms {
		next, err := transform(ctx, current)
		if err != nil {
			return zero, &DecodeError{Namespace: ctx.Namespace, Stage: StageTransform, Err: err}
		}
		if next != nil {
			current = next
		}
	}

	var (
		value T
		err   error
	)
	if d.decode != nil {
		value, err = d.decode(ctx, current)
	} else {
		err = d.mapstructure(current, &value)
	}
	if err != nil {
		return zero, &DecodeError{Namespace: ctx.Namespace, Stage: StageDecode, Err: err}
	}

	for _, check := range d.checks {
		if err := check(ctx, &value); err != nil {
			return zero, &DecodeError{Namespace: ctx.Namespace, Stage: StageCheck, Err: err}
		}
	}
	return value, nil
}

func (d *Decoder[T]) mapstructure(tree map[string]any, out *T) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(d.hooks...),
		ErrorUnused:      d.strict,
		WeaklyTypedInput: d.weak,
		TagName:          d.tagName,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(tree)
}

// copyValue deep copies maps and slices so transforms may mutate freely.
func copyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = copyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, child := range typed {
			out[i] = copyValue(child)
		}
		return out
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && !rv.IsNil() {
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return value
}
