package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"

	"github.com/rs/zerolog/log"
)

// Page size bounds for List
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Store persists snapshots with their records and keeps the history bounded.
type Store struct {
	repo      snapshot.Repository
	retention int
	now       func() time.Time
}

// NewStore creates a store keeping at most retention snapshots. A
// non-positive retention selects snapshot.DefaultRetention.
func NewStore(repo snapshot.Repository, retention int) *Store {
	if retention <= 0 {
		retention = snapshot.DefaultRetention
	}
	return &Store{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// Retention returns the number of snapshots kept after an insert.
func (s *Store) Retention() int {
	return s.retention
}

// Latest returns the most recently created snapshot.
func (s *Store) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	snap, err := s.repo.LatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snap, nil
}

// Get returns the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	snap, err := s.repo.GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %d: %w", id, err)
	}
	return snap, nil
}

// Previous returns the snapshot created immediately before id.
func (s *Store) Previous(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	snap, err := s.repo.PreviousSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot before %d: %w", id, err)
	}
	return snap, nil
}

// List returns one page of snapshots, newest first. Pages start at 1.
func (s *Store) List(ctx context.Context, page, perPage int) ([]*snapshot.Snapshot, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = DefaultPageSize
	case perPage > MaxPageSize:
		perPage = MaxPageSize
	}

	snaps, err := s.repo.ListSnapshots(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

// Count returns the number of stored snapshots.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.repo.CountSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}

// RecordsOf decodes the records of a snapshot. Rows that cannot be decoded are
// skipped and reported in the returned set.
func (s *Store) RecordsOf(ctx context.Context, id int64) (*snapshot.RecordSet, error) {
	if _, err := s.repo.GetSnapshot(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get snapshot %d: %w", id, err)
	}

	rows, err := s.repo.ListRecordRows(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list records of snapshot %d: %w", id, err)
	}

	set := &snapshot.RecordSet{Records: make([]dnsrecord.Record, 0, len(rows))}
	for _, row := range rows {
		rec, err := row.Decode()
		if err != nil {
			log.Warn().Err(err).
				Int64("snapshot_id", id).
				Int64("row_id", row.ID).
				Msg("skipping undecodable record row")
			set.Skipped = append(set.Skipped, snapshot.SkippedRow{
				RowID:  row.ID,
				Host:   row.Host,
				Type:   row.Type,
				Reason: err.Error(),
			})
			continue
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

// CreateWithRecords stores a new snapshot holding records and the given change
// counts, evicting the oldest snapshots beyond the retention bound.
//
// When the repository supports transactions the eviction and both inserts
// commit or roll back together. Otherwise they run in sequence and a failed
// record insert is compensated by deleting the new snapshot. If that delete
// fails as well the returned error also matches snapshot.ErrOrphanedSnapshot.
func (s *Store) CreateWithRecords(ctx context.Context, records []dnsrecord.Record, summary snapshot.ChangeSummary) (int64, error) {
	if len(records) == 0 {
		return 0, snapshot.ErrEmptyRecordSet
	}
	if err := dnsrecord.ValidateUnique(records); err != nil {
		return 0, err
	}

	snap := &snapshot.Snapshot{
		CreatedAt:     s.now().UTC(),
		Additions:     summary.Additions,
		Removals:      summary.Removals,
		Modifications: summary.Modifications,
		Total:         summary.Additions + summary.Removals + summary.Modifications,
	}

	tx, err := s.repo.Begin(ctx)
	if errors.Is(err, snapshot.ErrTransactionUnsupported) {
		return s.createWithoutTx(ctx, snap, records)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %w", snapshot.ErrInsertFailure, err)
	}
	defer tx.Rollback()

	id, err := s.write(ctx, tx, snap, records)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", snapshot.ErrInsertFailure, err)
	}

	log.Debug().Int64("snapshot_id", id).Int("records", len(records)).Msg("snapshot stored")
	return id, nil
}

func (s *Store) createWithoutTx(ctx context.Context, snap *snapshot.Snapshot, records []dnsrecord.Record) (int64, error) {
	id, err := s.write(ctx, s.repo, snap, records)
	if err == nil {
		log.Debug().Int64("snapshot_id", id).Int("records", len(records)).Msg("snapshot stored without transaction")
		return id, nil
	}
	if id == 0 {
		return 0, err
	}

	log.Warn().Err(err).Int64("snapshot_id", id).Msg("record insert failed, removing snapshot")
	if delErr := s.repo.DeleteSnapshot(context.WithoutCancel(ctx), id); delErr != nil {
		log.Error().Err(delErr).Int64("snapshot_id", id).Msg("compensating delete failed, snapshot left without records")
		return 0, errors.Join(err, fmt.Errorf("%w: snapshot %d: %w", snapshot.ErrOrphanedSnapshot, id, delErr))
	}
	return 0, err
}

// write evicts old snapshots and inserts snap with its records. A non-zero id
// returned with an error means the snapshot row was written but its records
// were not.
func (s *Store) write(ctx context.Context, w snapshot.Writer, snap *snapshot.Snapshot, records []dnsrecord.Record) (int64, error) {
	count, err := w.CountSnapshots(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count snapshots: %w", snapshot.ErrInsertFailure, err)
	}
	if count >= s.retention {
		evicted, err := w.DeleteOldestSnapshots(ctx, count-(s.retention-1))
		if err != nil {
			return 0, fmt.Errorf("%w: evict snapshots: %w", snapshot.ErrInsertFailure, err)
		}
		log.Debug().Int("evicted", evicted).Int("retention", s.retention).Msg("evicted old snapshots")
	}

	id, err := w.InsertSnapshot(ctx, snap)
	if err != nil {
		return 0, fmt.Errorf("%w: insert snapshot: %w", snapshot.ErrInsertFailure, err)
	}
	snap.ID = id

	rows := make([]snapshot.RecordRow, len(records))
	for i, r := range records {
		rows[i] = snapshot.NewRecordRow(id, r, snap.CreatedAt)
	}
	if err := w.InsertRecordRows(ctx, rows); err != nil {
		return id, fmt.Errorf("%w: insert records of snapshot %d: %w", snapshot.ErrInsertFailure, id, err)
	}
	return id, nil
}
