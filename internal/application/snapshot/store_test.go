package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"dnsmonitor/internal/adapters/db/memory"
	"dnsmonitor/internal/adapters/db/sqlite"
	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"
)

var errInjected = errors.New("injected failure")

// Test doubles

// failingRowsRepository fails every record row insert, directly or inside a transaction.
type failingRowsRepository struct {
	snapshot.Repository
	failDelete bool
}

func (r *failingRowsRepository) InsertRecordRows(ctx context.Context, rows []snapshot.RecordRow) error {
	return errInjected
}

func (r *failingRowsRepository) DeleteSnapshot(ctx context.Context, id int64) error {
	if r.failDelete {
		return errInjected
	}
	return r.Repository.DeleteSnapshot(ctx, id)
}

func (r *failingRowsRepository) Begin(ctx context.Context) (snapshot.Tx, error) {
	tx, err := r.Repository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingRowsTx{Tx: tx}, nil
}

type failingRowsTx struct {
	snapshot.Tx
}

func (t *failingRowsTx) InsertRecordRows(ctx context.Context, rows []snapshot.RecordRow) error {
	return errInjected
}

func newSQLiteRepository(t *testing.T) *sqlite.SnapshotRepository {
	t.Helper()
	db, err := sqlite.Open("sqlite::memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := sqlite.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return sqlite.NewSnapshotRepository(db)
}

// newTestStore returns a store whose clock advances one minute per snapshot.
func newTestStore(repo snapshot.Repository, retention int) *Store {
	store := NewStore(repo, retention)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store
}

func records(ips ...string) []dnsrecord.Record {
	out := make([]dnsrecord.Record, len(ips))
	for i, ip := range ips {
		out[i] = dnsrecord.A{Hdr: dnsrecord.Header{Host: "example.com", TTL: 300}, IP: ip}
	}
	return out
}

func repositories(t *testing.T) map[string]func() snapshot.Repository {
	return map[string]func() snapshot.Repository{
		"memory": func() snapshot.Repository { return memory.NewSnapshotRepository() },
		"sqlite": func() snapshot.Repository { return newSQLiteRepository(t) },
	}
}

func TestStore_Retention(t *testing.T) {
	for name, newRepo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo()
			store := newTestStore(repo, 10)

			var ids []int64
			for i := 0; i < 13; i++ {
				id, err := store.CreateWithRecords(ctx, records("1.1.1.1", "2.2.2.2"), snapshot.ChangeSummary{})
				if err != nil {
					t.Fatalf("Insert %d failed: %v", i, err)
				}
				ids = append(ids, id)
			}

			count, err := store.Count(ctx)
			if err != nil || count != 10 {
				t.Fatalf("Expected 10 snapshots, got %d (err %v)", count, err)
			}

			for _, id := range ids[:3] {
				if _, err := store.Get(ctx, id); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
					t.Errorf("Expected snapshot %d to be evicted, got %v", id, err)
				}
				rows, err := repo.ListRecordRows(ctx, id)
				if err != nil || len(rows) != 0 {
					t.Errorf("Expected rows of snapshot %d to be evicted, got %d (err %v)", id, len(rows), err)
				}
			}
			for _, id := range ids[3:] {
				set, err := store.RecordsOf(ctx, id)
				if err != nil || len(set.Records) != 2 {
					t.Errorf("Expected snapshot %d to keep 2 records, got %v (err %v)", id, set, err)
				}
			}

			latest, err := store.Latest(ctx)
			if err != nil || latest.ID != ids[12] {
				t.Errorf("Expected latest %d, got %+v (err %v)", ids[12], latest, err)
			}
		})
	}
}

func TestStore_RetentionBoundary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(memory.NewSnapshotRepository(), 3)

	for i := 0; i < 3; i++ {
		if _, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if count, _ := store.Count(ctx); count != 3 {
		t.Fatalf("Expected 3 snapshots before eviction starts, got %d", count)
	}

	if _, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if count, _ := store.Count(ctx); count != 3 {
		t.Errorf("Expected count to stay at 3, got %d", count)
	}
}

func TestStore_TransactionalAtomicity(t *testing.T) {
	ctx := context.Background()
	base := newSQLiteRepository(t)
	store := newTestStore(base, 10)

	if _, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{}); err != nil {
		t.Fatalf("Baseline insert failed: %v", err)
	}

	store.repo = &failingRowsRepository{Repository: base}
	_, err := store.CreateWithRecords(ctx, records("2.2.2.2"), snapshot.ChangeSummary{Additions: 1, Total: 1})
	if !errors.Is(err, snapshot.ErrInsertFailure) {
		t.Fatalf("Expected ErrInsertFailure, got %v", err)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("Expected the cause to be kept, got %v", err)
	}

	count, _ := base.CountSnapshots(ctx)
	if count != 1 {
		t.Errorf("Expected only the baseline snapshot to remain, got %d", count)
	}
}

func TestStore_TransactionalEvictionRollsBack(t *testing.T) {
	ctx := context.Background()
	base := newSQLiteRepository(t)
	store := newTestStore(base, 2)

	for i := 0; i < 2; i++ {
		if _, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	store.repo = &failingRowsRepository{Repository: base}
	if _, err := store.CreateWithRecords(ctx, records("2.2.2.2"), snapshot.ChangeSummary{}); err == nil {
		t.Fatal("Expected insert to fail")
	}

	if count, _ := base.CountSnapshots(ctx); count != 2 {
		t.Errorf("Expected eviction to be rolled back with the insert, got %d snapshots", count)
	}
}

func TestStore_FallbackCompensates(t *testing.T) {
	ctx := context.Background()
	base := memory.NewSnapshotRepository()
	store := newTestStore(&failingRowsRepository{Repository: base}, 10)

	_, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{})
	if !errors.Is(err, snapshot.ErrInsertFailure) {
		t.Fatalf("Expected ErrInsertFailure, got %v", err)
	}
	if errors.Is(err, snapshot.ErrOrphanedSnapshot) {
		t.Errorf("Expected compensation to succeed, got %v", err)
	}
	if count, _ := base.CountSnapshots(ctx); count != 0 {
		t.Errorf("Expected compensating delete to remove the snapshot, got %d", count)
	}
}

func TestStore_FallbackReportsOrphan(t *testing.T) {
	ctx := context.Background()
	base := memory.NewSnapshotRepository()
	store := newTestStore(&failingRowsRepository{Repository: base, failDelete: true}, 10)

	_, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{})
	if !errors.Is(err, snapshot.ErrInsertFailure) || !errors.Is(err, snapshot.ErrOrphanedSnapshot) {
		t.Fatalf("Expected ErrInsertFailure and ErrOrphanedSnapshot, got %v", err)
	}

	latest, err := base.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("Expected the orphan to remain, got %v", err)
	}
	if rows, _ := base.ListRecordRows(ctx, latest.ID); len(rows) != 0 {
		t.Errorf("Expected orphan to have no rows, got %d", len(rows))
	}
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	store := newTestStore(repo, 10)

	if _, err := store.CreateWithRecords(ctx, nil, snapshot.ChangeSummary{}); !errors.Is(err, snapshot.ErrEmptyRecordSet) {
		t.Errorf("Expected ErrEmptyRecordSet, got %v", err)
	}

	dup := append(records("1.1.1.1"), dnsrecord.A{Hdr: dnsrecord.Header{Host: "example.com", TTL: 60}, IP: "1.1.1.1"})
	if _, err := store.CreateWithRecords(ctx, dup, snapshot.ChangeSummary{}); !errors.Is(err, dnsrecord.ErrDuplicateRecord) {
		t.Errorf("Expected ErrDuplicateRecord, got %v", err)
	}

	if count, _ := repo.CountSnapshots(ctx); count != 0 {
		t.Errorf("Expected nothing to be stored, got %d", count)
	}
}

func TestStore_StoresSummaryWithTotal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(memory.NewSnapshotRepository(), 10)

	id, err := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{Additions: 2, Removals: 1, Modifications: 3})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Total != 6 || got.Additions != 2 || got.Removals != 1 || got.Modifications != 3 {
		t.Errorf("Unexpected counts: %+v", got)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", got.CreatedAt)
	}
}

func TestStore_RecordsOfSkipsCorruptRows(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	store := newTestStore(repo, 10)

	id, err := repo.InsertSnapshot(ctx, &snapshot.Snapshot{CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	rows := []snapshot.RecordRow{
		{SnapshotID: id, Host: "example.com", Type: "A", EncodedValue: "1.1.1.1"},
		{SnapshotID: id, Host: "example.com", Type: "MX", EncodedValue: "not-a-priority"},
		{SnapshotID: id, Host: "example.com", Type: "MX", EncodedValue: "00010|mail.example.com"},
	}
	if err := repo.InsertRecordRows(ctx, rows); err != nil {
		t.Fatalf("Insert rows failed: %v", err)
	}

	set, err := store.RecordsOf(ctx, id)
	if err != nil {
		t.Fatalf("Expected partial result, got error %v", err)
	}
	if !set.Partial() || len(set.Skipped) != 1 {
		t.Fatalf("Expected one skipped row, got %+v", set.Skipped)
	}
	if set.Skipped[0].Type != "MX" {
		t.Errorf("Expected the MX row to be skipped, got %+v", set.Skipped[0])
	}
	if len(set.Records) != 2 {
		t.Errorf("Expected 2 decoded records, got %d", len(set.Records))
	}
}

func TestStore_RecordsOfUnknownSnapshot(t *testing.T) {
	store := newTestStore(memory.NewSnapshotRepository(), 10)
	if _, err := store.RecordsOf(context.Background(), 99); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestStore_LatestAndPrevious(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(memory.NewSnapshotRepository(), 10)

	if _, err := store.Latest(ctx); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		t.Fatalf("Expected ErrSnapshotNotFound on empty store, got %v", err)
	}

	first, _ := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{})
	second, _ := store.CreateWithRecords(ctx, records("2.2.2.2"), snapshot.ChangeSummary{})

	prev, err := store.Previous(ctx, second)
	if err != nil || prev.ID != first {
		t.Errorf("Expected previous %d, got %+v (err %v)", first, prev, err)
	}
	if _, err := store.Previous(ctx, first); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		t.Errorf("Expected no predecessor for the first snapshot, got %v", err)
	}
}

func TestStore_ListPaging(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(memory.NewSnapshotRepository(), 50)

	var ids []int64
	for i := 0; i < 5; i++ {
		id, _ := store.CreateWithRecords(ctx, records("1.1.1.1"), snapshot.ChangeSummary{})
		ids = append(ids, id)
	}

	page, err := store.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Errorf("Expected [%d %d], got %+v", ids[2], ids[1], page)
	}

	all, _ := store.List(ctx, 0, 0)
	if len(all) != 5 {
		t.Errorf("Expected defaults to return all 5, got %d", len(all))
	}
}
