package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/animus-labs/evergreen-matrix/internal/repo"
)

const createSnapshotsTableQuery = `CREATE TABLE IF NOT EXISTS matrix_snapshots (
	snapshot_id UUID PRIMARY KEY,
	digest TEXT NOT NULL UNIQUE,
	document BYTEA NOT NULL,
	compile_tasks INTEGER NOT NULL,
	integration_tasks INTEGER NOT NULL,
	auth_tasks INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertSnapshotQuery = `INSERT INTO matrix_snapshots (
	snapshot_id,
	digest,
	document,
	compile_tasks,
	integration_tasks,
	auth_tasks
) VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (digest) DO NOTHING
RETURNING snapshot_id, digest, document, compile_tasks, integration_tasks, auth_tasks, created_at`

const selectSnapshotByDigestQuery = `SELECT snapshot_id, digest, document, compile_tasks, integration_tasks, auth_tasks, created_at
	FROM matrix_snapshots
	WHERE digest = $1`

const listSnapshotsQuery = `SELECT snapshot_id, digest, document, compile_tasks, integration_tasks, auth_tasks, created_at
	FROM matrix_snapshots
	ORDER BY created_at DESC, snapshot_id DESC
	LIMIT $1`

type SnapshotStore struct {
	db DB
}

var _ repo.SnapshotRepository = (*SnapshotStore)(nil)

func NewSnapshotStore(db DB) *SnapshotStore {
	if db == nil {
		return nil
	}
	return &SnapshotStore{db: db}
}

// EnsureSchema creates the snapshot table when missing.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("snapshot store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, createSnapshotsTableQuery); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

// UpsertSnapshot inserts a snapshot keyed by digest. It reports created=false
// when an identical snapshot already exists and fails when the stored
// document differs from the given one.
func (s *SnapshotStore) UpsertSnapshot(ctx context.Context, snapshot repo.SnapshotRecord) (repo.SnapshotRecord, bool, error) {
	if s == nil || s.db == nil {
		return repo.SnapshotRecord{}, false, fmt.Errorf("snapshot store not initialized")
	}
	digest := strings.TrimSpace(snapshot.Digest)
	if digest == "" {
		return repo.SnapshotRecord{}, false, fmt.Errorf("digest is required")
	}
	if len(snapshot.Document) == 0 {
		return repo.SnapshotRecord{}, false, fmt.Errorf("document is required")
	}

	id := strings.TrimSpace(snapshot.ID)
	if id == "" {
		id = uuid.NewString()
	}
	var record repo.SnapshotRecord
	err := scanSnapshot(s.db.QueryRowContext(
		ctx,
		insertSnapshotQuery,
		id,
		digest,
		snapshot.Document,
		snapshot.CompileTasks,
		snapshot.IntegrationTasks,
		snapshot.AuthTasks,
	), &record)
	if err == nil {
		return record, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return repo.SnapshotRecord{}, false, fmt.Errorf("insert snapshot: %w", err)
	}

	existing, err := s.GetSnapshot(ctx, digest)
	if err != nil {
		return repo.SnapshotRecord{}, false, err
	}
	if !bytes.Equal(existing.Document, snapshot.Document) {
		return repo.SnapshotRecord{}, false, fmt.Errorf("snapshot %s already stored with different content", digest)
	}
	return existing, false, nil
}

func (s *SnapshotStore) GetSnapshot(ctx context.Context, digest string) (repo.SnapshotRecord, error) {
	if s == nil || s.db == nil {
		return repo.SnapshotRecord{}, fmt.Errorf("snapshot store not initialized")
	}
	digest = strings.TrimSpace(digest)
	if digest == "" {
		return repo.SnapshotRecord{}, fmt.Errorf("digest is required")
	}
	var record repo.SnapshotRecord
	if err := scanSnapshot(s.db.QueryRowContext(ctx, selectSnapshotByDigestQuery, digest), &record); err != nil {
		return repo.SnapshotRecord{}, handleNotFound(err)
	}
	return record, nil
}

func (s *SnapshotStore) ListSnapshots(ctx context.Context, filter repo.SnapshotFilter) ([]repo.SnapshotRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("snapshot store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, listSnapshotsQuery, normalizeLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]repo.SnapshotRecord, 0)
	for rows.Next() {
		var record repo.SnapshotRecord
		if err := scanSnapshot(rows, &record); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, record *repo.SnapshotRecord) error {
	return row.Scan(
		&record.ID,
		&record.Digest,
		&record.Document,
		&record.CompileTasks,
		&record.IntegrationTasks,
		&record.AuthTasks,
		&record.CreatedAt,
	)
}
