package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		name string
		ref  Ref
		want string
		err  error
	}{
		{name: "path wins", ref: Ref{Namespace: "database", Path: "/tmp/db.json"}, want: "/tmp/db.json"},
		{name: "namespace fallback", ref: Ref{Namespace: "database"}, want: "database"},
		{name: "empty", ref: Ref{}, err: ErrRefRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.ref.Identifier()
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected error %v, got %v", tc.err, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[map[string]any]()

	_, _, ok, err := store.Load(ctx, Ref{Namespace: "database"})
	if err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}

	meta, err := store.Save(ctx, Ref{Namespace: "database"}, map[string]any{"port": 5432}, Meta{Extra: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID == "" || meta.UpdatedAt.IsZero() {
		t.Fatalf("expected stamped meta, got %+v", meta)
	}

	got, loaded, ok, err := store.Load(ctx, Ref{Namespace: "database"})
	if err != nil || !ok {
		t.Fatalf("expected snapshot, got ok=%v err=%v", ok, err)
	}
	if got["port"] != 5432 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if loaded.SnapshotID != meta.SnapshotID {
		t.Fatalf("expected snapshot id %q, got %q", meta.SnapshotID, loaded.SnapshotID)
	}
	loaded.Extra["k"] = "changed"
	_, again, _, _ := store.Load(ctx, Ref{Namespace: "database"})
	if again.Extra["k"] != "v" {
		t.Fatalf("expected stored meta isolated from callers")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
}

func TestMemoryStoreHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string]()
	ref := Ref{Path: "/tmp/database.json"}

	for _, payload := range []string{"v1", "v2", "v3"} {
		if _, err := store.Save(ctx, ref, payload, Meta{Format: "json"}); err != nil {
			t.Fatalf("save %s: %v", payload, err)
		}
	}

	got, meta, ok, err := store.Load(ctx, ref)
	if err != nil || !ok || got != "v3" || meta.Revision != 3 {
		t.Fatalf("expected latest revision 3, got %q %+v ok=%v err=%v", got, meta, ok, err)
	}
	history, err := store.History(ctx, ref)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	revisions := make([]int, len(history))
	ids := map[string]bool{}
	for i, entry := range history {
		revisions[i] = entry.Revision
		ids[entry.SnapshotID] = true
	}
	if diff := cmp.Diff([]int{1, 2, 3}, revisions); diff != "" {
		t.Fatalf("revisions mismatch (-want +got):\n%s", diff)
	}
	if len(ids) != 3 {
		t.Fatalf("expected distinct snapshot ids, got %v", ids)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one ref, got %d", store.Len())
	}

	empty, err := store.History(ctx, Ref{Namespace: "cache"})
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty history, got %v err=%v", empty, err)
	}
	if _, err := store.History(ctx, Ref{}); !errors.Is(err, ErrRefRequired) {
		t.Fatalf("expected ErrRefRequired, got %v", err)
	}
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore[[]byte]()
	if _, err := store.Save(ctx, Ref{Namespace: "x"}, nil, Meta{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFileStoreSaveAppliesMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewFileStore(0, 0)
	meta, err := store.Save(ctx, Ref{Namespace: "database", Path: path}, []byte(`{"port":5432}`), Meta{Format: "json"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.Size != len(`{"port":5432}`) || meta.Format != "json" || meta.SnapshotID == "" {
		t.Fatalf("unexpected meta %+v", meta)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != DefaultMode {
		t.Fatalf("expected mode %v, got %v", DefaultMode, info.Mode().Perm())
	}

	data, _, ok, err := store.Load(ctx, Ref{Path: path})
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(data) != `{"port":5432}` {
		t.Fatalf("expected truncated rewrite, got %q", data)
	}
}

func TestFileStoreAppendFlag(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "log.json")
	store := NewFileStore(os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o640)

	for _, chunk := range []string{"a", "b"} {
		if _, err := store.Save(ctx, Ref{Path: path}, []byte(chunk), Meta{}); err != nil {
			t.Fatalf("save %s: %v", chunk, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ab" {
		t.Fatalf("expected appended contents, got %q", data)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("expected mode 0640, got %v", info.Mode().Perm())
	}
}

func TestFileStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(0, 0)

	if _, err := store.Save(ctx, Ref{Namespace: "only"}, nil, Meta{}); !errors.Is(err, ErrRefRequired) {
		t.Fatalf("expected ErrRefRequired, got %v", err)
	}
	missingDir := filepath.Join(t.TempDir(), "missing", "out.json")
	if _, err := store.Save(ctx, Ref{Path: missingDir}, []byte("{}"), Meta{}); err == nil {
		t.Fatalf("expected error writing into a missing directory")
	}
	_, _, ok, err := store.Load(ctx, Ref{Path: missingDir})
	if err != nil || ok {
		t.Fatalf("expected missing file to report ok=false, got ok=%v err=%v", ok, err)
	}
}
