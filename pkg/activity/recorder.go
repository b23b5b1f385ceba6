package activity

import (
	"context"
	"sync"
)

// Recorder is a Hook that keeps events in memory, for tests and for tools
// that print what a run did.
type Recorder struct {
	// Err is returned from every Notify call after the event is kept.
	Err error

	mu     sync.Mutex
	events []Event
}

// Notify keeps event.
func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.Normalize())
	return r.Err
}

// Events returns a copy of the kept events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Verbs returns the verb of each kept event.
func (r *Recorder) Verbs() []string {
	events := r.Events()
	verbs := make([]string, len(events))
	for i, event := range events {
		verbs[i] = event.Verb
	}
	return verbs
}

// Reset drops the kept events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
