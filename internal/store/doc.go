// Package store provides SQLite-backed history of descriptor documents.
//
// Each compile can record the descriptor it produced as a snapshot:
//   - Snapshots: the canonical JSON document, keyed by its content hash
//   - Snapshot endpoints: the content hash of every endpoint in a snapshot
//
// Recording the same document twice is a no-op, so the log only grows when
// the descriptor actually changes. Snapshots are ordered by seq, a
// monotonically increasing integer assigned on insert; recorded_at is
// informational only.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes are computed by spec.ManifestHash and spec.EndpointHash
// over RFC 8785 canonical JSON.
package store
