package memory

import (
	"context"
	"sort"
	"sync"

	"dnsmonitor/internal/domain/snapshot"
)

// SnapshotRepository is an in-memory implementation of the snapshot repository.
// It has no transaction support, so writes through it take the store's
// compensating fallback path.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[int64]*snapshot.Snapshot
	rows      map[int64][]snapshot.RecordRow // snapshotID -> rows
	nextID    int64
	nextRowID int64
}

// NewSnapshotRepository creates a new in-memory snapshot repository
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: make(map[int64]*snapshot.Snapshot),
		rows:      make(map[int64][]snapshot.RecordRow),
	}
}

// Begin always reports that transactions are unsupported.
func (r *SnapshotRepository) Begin(ctx context.Context) (snapshot.Tx, error) {
	return nil, snapshot.ErrTransactionUnsupported
}

// ordered returns snapshots oldest first. Caller must hold the lock.
func (r *SnapshotRepository) ordered() []*snapshot.Snapshot {
	out := make([]*snapshot.Snapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.ordered()
	if len(all) == 0 {
		return nil, snapshot.ErrSnapshotNotFound
	}
	s := *all[len(all)-1]
	return &s, nil
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, exists := r.snapshots[id]
	if !exists {
		return nil, snapshot.ErrSnapshotNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SnapshotRepository) PreviousSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, exists := r.snapshots[id]; !exists {
		return nil, snapshot.ErrSnapshotNotFound
	}
	all := r.ordered()
	for i, s := range all {
		if s.ID == id {
			if i == 0 {
				return nil, snapshot.ErrSnapshotNotFound
			}
			cp := *all[i-1]
			return &cp, nil
		}
	}
	return nil, snapshot.ErrSnapshotNotFound
}

func (r *SnapshotRepository) ListSnapshots(ctx context.Context, offset, limit int) ([]*snapshot.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.ordered()
	var out []*snapshot.Snapshot
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *SnapshotRepository) ListRecordRows(ctx context.Context, snapshotID int64) ([]snapshot.RecordRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]snapshot.RecordRow(nil), r.rows[snapshotID]...), nil
}

func (r *SnapshotRepository) CountSnapshots(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots), nil
}

func (r *SnapshotRepository) DeleteOldestSnapshots(ctx context.Context, n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.ordered()
	if n > len(all) {
		n = len(all)
	}
	for _, s := range all[:max(n, 0)] {
		delete(r.snapshots, s.ID)
		delete(r.rows, s.ID)
	}
	return max(n, 0), nil
}

func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, s *snapshot.Snapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := *s
	cp.ID = r.nextID
	r.snapshots[cp.ID] = &cp
	return cp.ID, nil
}

func (r *SnapshotRepository) InsertRecordRows(ctx context.Context, rows []snapshot.RecordRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		if _, exists := r.snapshots[row.SnapshotID]; !exists {
			return snapshot.ErrSnapshotNotFound
		}
	}
	for _, row := range rows {
		r.nextRowID++
		row.ID = r.nextRowID
		r.rows[row.SnapshotID] = append(r.rows[row.SnapshotID], row)
	}
	return nil
}

func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.snapshots[id]; !exists {
		return snapshot.ErrSnapshotNotFound
	}
	delete(r.snapshots, id)
	delete(r.rows, id)
	return nil
}
