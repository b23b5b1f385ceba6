package flexconf

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/goliatone/go-flexconf/pkg/activity"
	"github.com/goliatone/go-flexconf/pkg/codec"
	"github.com/goliatone/go-flexconf/pkg/snapshot"
)

// DefaultEncoding is the text encoding of saved files.
const DefaultEncoding = "utf-8"

// SaveOptions controls SaveToFile. Every field is optional.
type SaveOptions struct {
	// Path defaults to <os.TempDir()>/<namespace>.json.
	Path string
	// Indent is the per-level indentation; empty writes compact output.
	Indent string
	// Encoding is a WHATWG encoding label such as utf-8 or latin1.
	Encoding string
	// Flag is passed to os.OpenFile. Defaults to create and truncate.
	Flag int
	// Mode is applied to the file after writing. Defaults to 0600.
	Mode fs.FileMode
	// Format names the codec; defaults to the extension of Path, then json.
	Format string
	// Store receives the encoded bytes. Defaults to a snapshot.FileStore
	// built from Flag and Mode.
	Store snapshot.Store[[]byte]
}

// SaveToFile writes the merged subtree of namespace to a file and returns
// the path written.
func (r *Resolver) SaveToFile(namespace string, opts SaveOptions) (string, error) {
	return r.SaveToFileContext(context.Background(), namespace, opts)
}

// SaveToFileContext is SaveToFile with a context passed to the store and to
// activity hooks.
func (r *Resolver) SaveToFileContext(ctx context.Context, namespace string, opts SaveOptions) (string, error) {
	if !r.loaded {
		return "", ErrNotLoaded
	}
	value, ok := r.store.Get(namespace)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNamespaceNotFound, namespace)
	}

	path := opts.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), namespace+".json")
	}
	c, err := r.saveCodec(path, opts.Format)
	if err != nil {
		return "", err
	}
	payload, err := c.Encode(value, codec.EncodeOptions{Indent: opts.Indent})
	if err != nil {
		return "", fmt.Errorf("flexconf: encode %s as %s: %w", namespace, c.Name(), err)
	}

	label := opts.Encoding
	if label == "" {
		label = DefaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", fmt.Errorf("flexconf: encoding %q: %w", label, err)
	}
	payload, err = enc.NewEncoder().Bytes(payload)
	if err != nil {
		return "", fmt.Errorf("flexconf: encode %s as %s: %w", namespace, label, err)
	}

	store := opts.Store
	if store == nil {
		store = snapshot.NewFileStore(opts.Flag, opts.Mode)
	}
	meta, err := store.Save(ctx, snapshot.Ref{Namespace: namespace, Path: path}, payload, snapshot.Meta{
		Format:   c.Name(),
		Encoding: label,
		Extra:    map[string]string{"run_id": r.runID},
	})
	r.log(ResolveLogEvent{Stage: StageSave, Path: path, Namespace: namespace, Err: err})
	if err != nil {
		return "", err
	}

	if r.emitter.Enabled() {
		input := r.eventInput()
		input.Path = path
		input.Namespace = namespace
		input.Metadata = map[string]any{"snapshot_id": meta.SnapshotID, "format": meta.Format, "size": meta.Size}
		if meta.Revision > 0 {
			input.Metadata["revision"] = meta.Revision
		}
		if err := r.emitter.Emit(ctx, activity.BuildNamespaceSavedEvent(input)); err != nil {
			r.log(ResolveLogEvent{Stage: StageSave, Path: path, Namespace: namespace, Err: err})
		}
	}
	return path, nil
}

func (r *Resolver) saveCodec(path, format string) (codec.Codec, error) {
	if format != "" {
		c, ok := r.cfg.codecs.Lookup(format)
		if !ok {
			return nil, fmt.Errorf("flexconf: no codec registered for format %q", format)
		}
		return c, nil
	}
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if c, ok := r.cfg.codecs.Lookup(ext); ok {
			return c, nil
		}
	}
	return codec.JSON{}, nil
}
