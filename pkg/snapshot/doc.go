// Package snapshot persists serialized namespace snapshots written back by a
// resolver.
//
// Responsibilities:
//   - Store[T] loads and saves a single snapshot for a single Ref.
//   - FileStore writes raw bytes to the filesystem honouring the open flags
//     and permission bits supplied by the caller.
//   - MemoryStore keeps every revision in memory for tests and dry runs.
//
// Encoding to bytes (format, indentation, text encoding) stays with the
// caller; stores only move payloads.
package snapshot
