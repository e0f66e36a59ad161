package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one recorded descriptor document.
type Snapshot struct {
	Seq         int64     `json:"seq"`
	Hash        string    `json:"hash"`
	SpecVersion string    `json:"specVersion"`
	ToolVersion string    `json:"toolVersion"`
	Functions   int       `json:"functions"`
	RecordedAt  time.Time `json:"recordedAt"`
	// Document is the canonical JSON of the descriptor.
	Document string `json:"-"`
}

// EndpointRevision is the content hash of one function in one snapshot.
type EndpointRevision struct {
	Seq          int64     `json:"seq"`
	SnapshotHash string    `json:"snapshotHash"`
	EndpointHash string    `json:"endpointHash"`
	RecordedAt   time.Time `json:"recordedAt"`
}

const snapshotColumns = `
	s.seq, s.hash, s.spec_version, s.tool_version, s.document, s.recorded_at,
	(SELECT COUNT(*) FROM snapshot_endpoints e WHERE e.snapshot_seq = s.seq)
`

// Snapshot returns the snapshot with the given content hash.
// Returns ErrNotFound if there is none.
func (s *Store) Snapshot(ctx context.Context, hash string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+`
		FROM snapshots s
		WHERE s.hash = ?
	`, hash)
	return scanSnapshot(row)
}

// Latest returns the most recently recorded snapshot.
// Returns ErrNotFound if the history is empty.
func (s *Store) Latest(ctx context.Context) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+`
		FROM snapshots s
		ORDER BY s.seq DESC
		LIMIT 1
	`)
	return scanSnapshot(row)
}

// List returns up to limit snapshots, newest first. A limit of zero or
// less returns every snapshot.
//
// Returns an empty slice (not nil) if the history is empty.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+snapshotColumns+`
		FROM snapshots s
		ORDER BY s.seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// EndpointHistory returns the revisions of one function, newest first.
// Consecutive snapshots in which the endpoint did not change are collapsed
// into the earliest of them.
//
// Returns an empty slice (not nil) if the function was never recorded.
func (s *Store) EndpointHistory(ctx context.Context, name string) ([]EndpointRevision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.seq, s.hash, e.endpoint_hash, s.recorded_at
		FROM snapshot_endpoints e
		JOIN snapshots s ON s.seq = e.snapshot_seq
		WHERE e.name = ?
		ORDER BY s.seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query endpoint history: %w", err)
	}
	defer rows.Close()

	var ascending []EndpointRevision
	for rows.Next() {
		var rev EndpointRevision
		var recordedAt string
		if err := rows.Scan(&rev.Seq, &rev.SnapshotHash, &rev.EndpointHash, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan endpoint revision: %w", err)
		}
		if rev.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		if n := len(ascending); n > 0 && ascending[n-1].EndpointHash == rev.EndpointHash {
			continue
		}
		ascending = append(ascending, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate endpoint history: %w", err)
	}

	revisions := make([]EndpointRevision, len(ascending))
	for i, rev := range ascending {
		revisions[len(ascending)-1-i] = rev
	}
	return revisions, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var snap Snapshot
	var recordedAt string
	err := row.Scan(
		&snap.Seq,
		&snap.Hash,
		&snap.SpecVersion,
		&snap.ToolVersion,
		&snap.Document,
		&recordedAt,
		&snap.Functions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	if snap.RecordedAt, err = parseTime(recordedAt); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
