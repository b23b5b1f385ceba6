package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps every saved revision in memory, keyed by
// Ref.Identifier(). Load returns the latest revision. It backs dry runs of
// flexconf save and tests.
type MemoryStore[T any] struct {
	mu        sync.RWMutex
	revisions map[string][]revision[T]
	now       func() time.Time
}

type revision[T any] struct {
	payload T
	meta    Meta
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{revisions: map[string][]revision[T]{}, now: time.Now}
}

// Load returns the latest revision saved under ref.
func (s *MemoryStore[T]) Load(ctx context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := keyFor(ctx, ref)
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.revisions[key]
	if len(history) == 0 {
		return zero, Meta{}, false, nil
	}
	latest := history[len(history)-1]
	return latest.payload, cloneMeta(latest.meta), true, nil
}

// Save appends a revision. Meta.Revision counts from 1 per ref.
func (s *MemoryStore[T]) Save(ctx context.Context, ref Ref, payload T, meta Meta) (Meta, error) {
	key, err := keyFor(ctx, ref)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	meta = stampMeta(meta, uuid.NewString, s.now)
	meta.Revision = len(s.revisions[key]) + 1
	s.revisions[key] = append(s.revisions[key], revision[T]{payload: payload, meta: cloneMeta(meta)})
	return meta, nil
}

// History returns the meta of every revision saved under ref, oldest first.
func (s *MemoryStore[T]) History(ctx context.Context, ref Ref) ([]Meta, error) {
	key, err := keyFor(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Meta, len(s.revisions[key]))
	for i, rev := range s.revisions[key] {
		out[i] = cloneMeta(rev.meta)
	}
	return out, nil
}

// Len reports the number of refs with at least one revision.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revisions)
}

func keyFor(ctx context.Context, ref Ref) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ref.Identifier()
}
