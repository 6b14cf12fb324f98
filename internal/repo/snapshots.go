package repo

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// SnapshotRecord is one persisted rendering of the task matrix. Digest is the
// SHA-256 of Document and identifies the snapshot's content.
type SnapshotRecord struct {
	ID               string
	Digest           string
	Document         []byte
	CompileTasks     int
	IntegrationTasks int
	AuthTasks        int
	CreatedAt        time.Time
}

type SnapshotFilter struct {
	Limit int
}

// SnapshotRepository stores rendered matrices.
type SnapshotRepository interface {
	UpsertSnapshot(ctx context.Context, snapshot SnapshotRecord) (SnapshotRecord, bool, error)
	GetSnapshot(ctx context.Context, digest string) (SnapshotRecord, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]SnapshotRecord, error)
}
