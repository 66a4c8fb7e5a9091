package sqlite

import (
	"context"
	"errors"

	"dnsmonitor/internal/domain/snapshot"

	"gorm.io/gorm"
)

type SnapshotRepository struct {
	writer
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{writer{db: db}}
}

func snapshotToRecord(s *snapshot.Snapshot) *SnapshotRecord {
	return &SnapshotRecord{
		ID:                    s.ID,
		SnapshotChanges:       s.Total,
		SnapshotAdditions:     s.Additions,
		SnapshotRemovals:      s.Removals,
		SnapshotModifications: s.Modifications,
		CreatedAt:             s.CreatedAt,
	}
}

func snapshotToModel(r *SnapshotRecord) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt.UTC(),
		Additions:     r.SnapshotAdditions,
		Removals:      r.SnapshotRemovals,
		Modifications: r.SnapshotModifications,
		Total:         r.SnapshotChanges,
	}
}

func rowToRecord(row snapshot.RecordRow) RecordRowRecord {
	return RecordRowRecord{
		SnapshotID: row.SnapshotID,
		RecordHost: row.Host,
		RecordType: row.Type,
		RecordData: row.EncodedValue,
		CreatedAt:  row.CreatedAt,
	}
}

func rowToModel(r *RecordRowRecord) snapshot.RecordRow {
	return snapshot.RecordRow{
		ID:           r.ID,
		SnapshotID:   r.SnapshotID,
		Host:         r.RecordHost,
		Type:         r.RecordType,
		EncodedValue: r.RecordData,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func first(q *gorm.DB) (*snapshot.Snapshot, error) {
	var rec SnapshotRecord
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, err
	}
	return snapshotToModel(&rec), nil
}

func (r *SnapshotRepository) Begin(ctx context.Context) (snapshot.Tx, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &snapshotTx{writer{db: tx}}, nil
}

func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	return first(r.db.WithContext(ctx).Order("created_at DESC, id DESC"))
}

func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	return first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *SnapshotRepository) PreviousSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	current, err := r.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return first(r.db.WithContext(ctx).
		Where("created_at < ? OR (created_at = ? AND id < ?)", current.CreatedAt, current.CreatedAt, id).
		Order("created_at DESC, id DESC"))
}

func (r *SnapshotRepository) ListSnapshots(ctx context.Context, offset, limit int) ([]*snapshot.Snapshot, error) {
	var recs []SnapshotRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*snapshot.Snapshot, 0, len(recs))
	for i := range recs {
		out = append(out, snapshotToModel(&recs[i]))
	}
	return out, nil
}

func (r *SnapshotRepository) ListRecordRows(ctx context.Context, snapshotID int64) ([]snapshot.RecordRow, error) {
	var recs []RecordRowRecord
	if err := r.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]snapshot.RecordRow, 0, len(recs))
	for i := range recs {
		out = append(out, rowToModel(&recs[i]))
	}
	return out, nil
}

var _ snapshot.Repository = (*SnapshotRepository)(nil)

type snapshotTx struct {
	writer
}

func (t *snapshotTx) Commit() error   { return t.db.Commit().Error }
func (t *snapshotTx) Rollback() error { return t.db.Rollback().Error }

// writer implements snapshot.Writer on either the base handle or a transaction.
type writer struct{ db *gorm.DB }

func (w writer) CountSnapshots(ctx context.Context) (int, error) {
	var n int64
	if err := w.db.WithContext(ctx).Model(&SnapshotRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (w writer) DeleteOldestSnapshots(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	var ids []int64
	if err := w.db.WithContext(ctx).Model(&SnapshotRecord{}).
		Order("created_at ASC, id ASC").Limit(n).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := w.db.WithContext(ctx).Where("snapshot_id IN ?", ids).Delete(&RecordRowRecord{}).Error; err != nil {
		return 0, err
	}
	res := w.db.WithContext(ctx).Where("id IN ?", ids).Delete(&SnapshotRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (w writer) InsertSnapshot(ctx context.Context, s *snapshot.Snapshot) (int64, error) {
	rec := snapshotToRecord(s)
	rec.ID = 0
	if err := w.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (w writer) InsertRecordRows(ctx context.Context, rows []snapshot.RecordRow) error {
	if len(rows) == 0 {
		return nil
	}
	recs := make([]RecordRowRecord, len(rows))
	for i, row := range rows {
		recs[i] = rowToRecord(row)
	}
	return w.db.WithContext(ctx).CreateInBatches(recs, 100).Error
}

func (w writer) DeleteSnapshot(ctx context.Context, id int64) error {
	if err := w.db.WithContext(ctx).Where("snapshot_id = ?", id).Delete(&RecordRowRecord{}).Error; err != nil {
		return err
	}
	res := w.db.WithContext(ctx).Delete(&SnapshotRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}
