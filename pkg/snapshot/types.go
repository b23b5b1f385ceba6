package snapshot

import (
	"context"
	"errors"
	"maps"
	"time"
)

// ErrRefRequired is returned when a Ref has neither a path nor a namespace.
var ErrRefRequired = errors.New("snapshot: ref requires a path or namespace")

// Ref identifies one persisted snapshot.
type Ref struct {
	Namespace string
	Path      string
}

// Identifier returns the storage key of the ref: the path when set, the
// namespace otherwise.
func (r Ref) Identifier() (string, error) {
	switch {
	case r.Path != "":
		return r.Path, nil
	case r.Namespace != "":
		return r.Namespace, nil
	default:
		return "", ErrRefRequired
	}
}

// Meta describes a saved snapshot. Stores stamp SnapshotID and UpdatedAt
// when the caller leaves them empty.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	Revision   int               `json:"revision,omitempty"`
	Format     string            `json:"format,omitempty"`
	Encoding   string            `json:"encoding,omitempty"`
	Size       int               `json:"size,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one snapshot for a single reference.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

func cloneMeta(meta Meta) Meta {
	meta.Extra = maps.Clone(meta.Extra)
	return meta
}

func stampMeta(meta Meta, newID func() string, now func() time.Time) Meta {
	meta = cloneMeta(meta)
	if meta.SnapshotID == "" {
		meta.SnapshotID = newID()
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = now()
	}
	return meta
}
