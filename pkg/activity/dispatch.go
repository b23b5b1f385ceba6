package activity

import (
	"context"
	"fmt"
	"strings"
)

// Hook receives activity events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify calls fn.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is an ordered list of hooks notified in turn.
type Hooks []Hook

// Compact returns the non-nil hooks, or nil when there are none.
func (h Hooks) Compact() Hooks {
	var out Hooks
	for _, hook := range h {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}

// Notify normalizes event and hands it to every hook. Invalid events are
// dropped. Every hook runs even when an earlier one fails; failures come
// back as a *NotifyError.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	event = event.Normalize()
	if len(h) == 0 || !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var failures []HookFailure
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			failures = append(failures, HookFailure{Index: i, Err: err})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &NotifyError{Verb: event.Verb, Object: event.Object, Failures: failures}
}

// HookFailure is the error returned by the hook at Index.
type HookFailure struct {
	Index int
	Err   error
}

// NotifyError collects the hooks that failed for one event.
type NotifyError struct {
	Verb     string
	Object   Object
	Failures []HookFailure
}

func (e *NotifyError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		parts[i] = fmt.Sprintf("hook %d: %v", failure.Index, failure.Err)
	}
	return fmt.Sprintf("activity: %s %s: %s", e.Verb, e.Object.ID, strings.Join(parts, "; "))
}

// Unwrap exposes every hook error to errors.Is and errors.As.
func (e *NotifyError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, failure := range e.Failures {
		errs[i] = failure.Err
	}
	return errs
}
