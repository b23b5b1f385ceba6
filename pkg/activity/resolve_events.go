package activity

import (
	"maps"
	"strings"
	"time"
)

// Verbs and object types emitted for resolution runs.
const (
	VerbFragmentLoaded  = "config.fragment.loaded"
	VerbFragmentSkipped = "config.fragment.skipped"
	VerbResolved        = "config.resolved"
	VerbNamespaceSaved  = "config.namespace.saved"

	ObjectFragment  = "config.fragment"
	ObjectConfig    = "config"
	ObjectNamespace = "config.namespace"
)

// ResolveEventInput describes the common fields of resolution events.
type ResolveEventInput struct {
	ActorID    string
	TenantID   string
	RunID      string
	Channel    string
	Root       string
	Path       string
	Namespace  string
	Score      float64
	Tags       map[string]string
	Fragments  int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildFragmentLoadedEvent reports a fragment merged into the store.
func BuildFragmentLoadedEvent(input ResolveEventInput) Event {
	return buildResolveEvent(VerbFragmentLoaded, ObjectFragment, input.Path, input)
}

// BuildFragmentSkippedEvent reports a fragment excluded by its tag rules.
func BuildFragmentSkippedEvent(input ResolveEventInput) Event {
	return buildResolveEvent(VerbFragmentSkipped, ObjectFragment, input.Path, input)
}

// BuildResolvedEvent reports a finished resolution run.
func BuildResolvedEvent(input ResolveEventInput) Event {
	id := input.RunID
	if strings.TrimSpace(id) == "" {
		id = input.Root
	}
	return buildResolveEvent(VerbResolved, ObjectConfig, id, input)
}

// BuildNamespaceSavedEvent reports a namespace written back to disk.
func BuildNamespaceSavedEvent(input ResolveEventInput) Event {
	return buildResolveEvent(VerbNamespaceSaved, ObjectNamespace, input.Namespace, input)
}

func buildResolveEvent(verb, objectType, objectID string, input ResolveEventInput) Event {
	data := make(map[string]any, len(input.Metadata)+4)
	for key, value := range input.Metadata {
		data[key] = value
	}
	put := func(key string, value any, ok bool) {
		if ok {
			data[key] = value
		}
	}
	put("root", input.Root, input.Root != "")
	put("path", input.Path, input.Path != "")
	put("namespace", input.Namespace, input.Namespace != "")
	put("score", input.Score, objectType == ObjectFragment)
	put("fragments", input.Fragments, verb == VerbResolved)
	if len(input.Tags) > 0 {
		data["tags"] = maps.Clone(input.Tags)
	}

	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:    verb,
		Object:  Object{Type: objectType, ID: objectID},
		Actor:   Actor{ID: input.ActorID, TenantID: input.TenantID},
		RunID:   input.RunID,
		Channel: input.Channel,
		Data:    data,
		At:      input.OccurredAt,
	}.Normalize()
}
