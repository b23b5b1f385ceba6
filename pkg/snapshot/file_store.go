package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultFlag truncates or creates the target file.
	DefaultFlag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	// DefaultMode keeps written snapshots private to the owner.
	DefaultMode fs.FileMode = 0o600
)

// FileStore writes payloads to Ref.Path. Zero Flag and Mode fall back to
// DefaultFlag and DefaultMode.
type FileStore struct {
	Flag int
	Mode fs.FileMode
}

// NewFileStore constructs a FileStore.
func NewFileStore(flag int, mode fs.FileMode) *FileStore {
	return &FileStore{Flag: flag, Mode: mode}
}

func (s *FileStore) flag() int {
	if s == nil || s.Flag == 0 {
		return DefaultFlag
	}
	return s.Flag
}

func (s *FileStore) mode() fs.FileMode {
	if s == nil || s.Mode == 0 {
		return DefaultMode
	}
	return s.Mode
}

// Load reads the file at ref.Path. A missing file reports ok=false.
func (s *FileStore) Load(ctx context.Context, ref Ref) ([]byte, Meta, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, Meta{}, false, err
	}
	if ref.Path == "" {
		return nil, Meta{}, false, ErrRefRequired
	}
	data, err := os.ReadFile(ref.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Meta{}, false, nil
	}
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("snapshot: read %s: %w", ref.Path, err)
	}
	meta := Meta{Size: len(data)}
	if info, err := os.Stat(ref.Path); err == nil {
		meta.UpdatedAt = info.ModTime()
	}
	return data, meta, true, nil
}

// Save writes payload to ref.Path with the store's flag and mode. The mode
// is applied again after writing; umask and existing files do not change it.
func (s *FileStore) Save(ctx context.Context, ref Ref, payload []byte, meta Meta) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	if ref.Path == "" {
		return Meta{}, ErrRefRequired
	}

	file, err := os.OpenFile(ref.Path, s.flag(), s.mode())
	if err != nil {
		return Meta{}, fmt.Errorf("snapshot: open %s: %w", ref.Path, err)
	}
	if _, err := file.Write(payload); err != nil {
		_ = file.Close()
		return Meta{}, fmt.Errorf("snapshot: write %s: %w", ref.Path, err)
	}
	if err := file.Close(); err != nil {
		return Meta{}, fmt.Errorf("snapshot: close %s: %w", ref.Path, err)
	}
	if err := os.Chmod(ref.Path, s.mode()); err != nil {
		return Meta{}, fmt.Errorf("snapshot: chmod %s: %w", ref.Path, err)
	}

	meta = stampMeta(meta, uuid.NewString, time.Now)
	meta.Size = len(payload)
	return meta, nil
}
