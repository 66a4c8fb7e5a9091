package snapshot

import "errors"

// Snapshot errors
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrEmptyRecordSet   = errors.New("record set is empty")
)

// Write path errors
var (
	// ErrTransactionUnsupported is returned by Repository.Begin when the storage
	// engine cannot run the write path in a transaction.
	ErrTransactionUnsupported = errors.New("storage does not support transactions")
	ErrInsertFailure          = errors.New("snapshot insert failed")
	// ErrOrphanedSnapshot marks a fallback write whose compensating delete failed,
	// leaving a snapshot row without records.
	ErrOrphanedSnapshot = errors.New("orphaned snapshot left after failed insert")
)
