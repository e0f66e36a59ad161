package store

import (
	"context"
	"fmt"

	"github.com/roach88/fnmanifest/internal/spec"
)

// SaveSnapshot records a descriptor document.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency - recording a document
// identical to an earlier one returns the earlier snapshot and false.
//
// The document is stored as RFC 8785 canonical JSON, and the content hash
// of each endpoint is stored alongside it for per-function history.
func (s *Store) SaveSnapshot(ctx context.Context, doc *spec.Map) (Snapshot, bool, error) {
	document, hash, err := marshalDocument(doc)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	digests, err := endpointDigests(doc)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(hash, spec_version, tool_version, document, recorded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		hash,
		specVersionOf(doc),
		spec.ToolVersion,
		document,
		formatTime(s.now()),
	)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	if inserted == 0 {
		if err := tx.Commit(); err != nil {
			return Snapshot{}, false, fmt.Errorf("save snapshot: commit: %w", err)
		}
		existing, err := s.Snapshot(ctx, hash)
		return existing, false, err
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	for _, d := range digests {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_endpoints (snapshot_seq, name, endpoint_hash)
			VALUES (?, ?, ?)
		`, seq, d.name, d.hash); err != nil {
			return Snapshot{}, false, fmt.Errorf("save snapshot: endpoint %s: %w", d.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("save snapshot: commit: %w", err)
	}

	saved, err := s.Snapshot(ctx, hash)
	return saved, true, err
}
