package monitor

import (
	"context"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"
)

// Resolver fetches the current record set of a domain.
type Resolver interface {
	Resolve(ctx context.Context, domain string) ([]dnsrecord.Record, error)
}

// Notifier is told about checks that detected changes.
type Notifier interface {
	NotifyChanges(ctx context.Context, result *CheckResult) error
}

// Locker serializes checks across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// SnapshotStore is the part of the snapshot store the monitor depends on.
type SnapshotStore interface {
	Latest(ctx context.Context) (*snapshot.Snapshot, error)
	Get(ctx context.Context, id int64) (*snapshot.Snapshot, error)
	Previous(ctx context.Context, id int64) (*snapshot.Snapshot, error)
	RecordsOf(ctx context.Context, id int64) (*snapshot.RecordSet, error)
	CreateWithRecords(ctx context.Context, records []dnsrecord.Record, summary snapshot.ChangeSummary) (int64, error)
}
