// Package usersink forwards resolution activity to a go-users ActivitySink,
// so configuration loads land in the same audit log as user activity.
package usersink

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/goliatone/go-flexconf/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
)

// Hook is an activity.Hook writing to Sink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs limits forwarding to the listed verbs. Empty forwards all, which
	// records one entry per fragment; activity.VerbResolved alone keeps a
	// single entry per run.
	Verbs []string
}

// Notify converts event with Record and logs it.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	if len(h.Verbs) > 0 && !slices.Contains(h.Verbs, record.Verb) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record maps an event onto an ActivityRecord. Actor and tenant IDs that
// are not UUIDs map to uuid.Nil; the run ID and channel travel in Data.
// ok is false for events with no verb or object.
func Record(event activity.Event) (record usertypes.ActivityRecord, ok bool) {
	event = event.Normalize()
	if !event.Valid() {
		return record, false
	}

	data := map[string]any{}
	for key, value := range event.Data {
		data[key] = value
	}
	if event.RunID != "" {
		data["run_id"] = event.RunID
	}

	return usertypes.ActivityRecord{
		ActorID:    uuidOrNil(event.Actor.ID),
		TenantID:   uuidOrNil(event.Actor.TenantID),
		Verb:       event.Verb,
		ObjectType: event.Object.Type,
		ObjectID:   event.Object.ID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.At,
	}, true
}

func uuidOrNil(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
