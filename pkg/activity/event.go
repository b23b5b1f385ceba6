// Package activity reports what a resolution run did to interested hooks:
// which fragments were loaded or skipped, when a run finished and when a
// namespace was saved.
package activity

import (
	"maps"
	"strings"
	"time"
)

// Object names the thing an event is about, a fragment path or a namespace.
type Object struct {
	Type string
	ID   string
}

// Actor identifies who triggered a run. IDs are plain strings; sinks that
// need UUIDs parse them.
type Actor struct {
	ID       string
	TenantID string
}

// Event is one activity entry.
type Event struct {
	Verb    string
	Object  Object
	Actor   Actor
	RunID   string
	Channel string
	Data    map[string]any
	At      time.Time
}

// Normalize trims identifiers and copies Data so hooks can keep the event.
func (e Event) Normalize() Event {
	e.Verb = strings.TrimSpace(e.Verb)
	e.Object.Type = strings.TrimSpace(e.Object.Type)
	e.Object.ID = strings.TrimSpace(e.Object.ID)
	e.Actor.ID = strings.TrimSpace(e.Actor.ID)
	e.Actor.TenantID = strings.TrimSpace(e.Actor.TenantID)
	e.RunID = strings.TrimSpace(e.RunID)
	e.Channel = strings.TrimSpace(e.Channel)
	if len(e.Data) == 0 {
		e.Data = nil
	} else {
		e.Data = maps.Clone(e.Data)
	}
	return e
}

// Valid reports whether the event names a verb and an object.
func (e Event) Valid() bool {
	return e.Verb != "" && e.Object.Type != "" && e.Object.ID != ""
}
