package snapshot

import "context"

// Reader defines read access to persisted snapshots
type Reader interface {
	// LatestSnapshot returns the most recently created snapshot, ordered by
	// created_at then id.
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
	GetSnapshot(ctx context.Context, id int64) (*Snapshot, error)
	// PreviousSnapshot returns the snapshot created immediately before id.
	PreviousSnapshot(ctx context.Context, id int64) (*Snapshot, error)
	// ListSnapshots returns snapshots newest first.
	ListSnapshots(ctx context.Context, offset, limit int) ([]*Snapshot, error)
	ListRecordRows(ctx context.Context, snapshotID int64) ([]RecordRow, error)
}

// Writer defines the operations of the snapshot write path. They run inside a
// transaction when obtained from Tx and directly against storage otherwise.
type Writer interface {
	CountSnapshots(ctx context.Context) (int, error)
	// DeleteOldestSnapshots removes the n oldest snapshots and their rows and
	// returns the number removed.
	DeleteOldestSnapshots(ctx context.Context, n int) (int, error)
	// InsertSnapshot stores s and returns the id assigned to it.
	InsertSnapshot(ctx context.Context, s *Snapshot) (int64, error)
	InsertRecordRows(ctx context.Context, rows []RecordRow) error
	// DeleteSnapshot removes a snapshot and its rows.
	DeleteSnapshot(ctx context.Context, id int64) error
}

// Tx is a write transaction.
type Tx interface {
	Writer
	Commit() error
	Rollback() error
}

// Repository defines the interface for snapshot persistence
type Repository interface {
	Reader
	Writer
	// Begin starts a write transaction. Storage without transaction support
	// returns ErrTransactionUnsupported.
	Begin(ctx context.Context) (Tx, error)
}
