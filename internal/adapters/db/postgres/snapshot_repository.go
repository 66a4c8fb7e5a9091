package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dnsmonitor/internal/domain/snapshot"

	"github.com/lib/pq"
)

const pgForeignKeyViolation = "23503"

// SnapshotRepository is a PostgreSQL implementation of snapshot.Repository
type SnapshotRepository struct {
	writer
	db *sql.DB
}

// NewSnapshotRepository constructs a new SnapshotRepository
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{writer: writer{q: db}, db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const snapshotColumns = `id, created_at, snapshot_additions, snapshot_removals, snapshot_modifications, snapshot_changes`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.Additions, &s.Removals, &s.Modifications, &s.Total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

// Begin starts a transaction for the snapshot write path
func (r *SnapshotRepository) Begin(ctx context.Context) (snapshot.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &snapshotTx{writer: writer{q: tx}, tx: tx}, nil
}

// LatestSnapshot returns the most recently created snapshot
func (r *SnapshotRepository) LatestSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	return scanSnapshot(r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM dns_snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`))
}

// GetSnapshot retrieves a snapshot by ID
func (r *SnapshotRepository) GetSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	return scanSnapshot(r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM dns_snapshots
		WHERE id = $1
	`, id))
}

// PreviousSnapshot returns the snapshot created immediately before id
func (r *SnapshotRepository) PreviousSnapshot(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	if _, err := r.GetSnapshot(ctx, id); err != nil {
		return nil, err
	}
	return scanSnapshot(r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM dns_snapshots
		WHERE (created_at, id) < (SELECT created_at, id FROM dns_snapshots WHERE id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, id))
}

// ListSnapshots returns snapshots newest first
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, offset, limit int) ([]*snapshot.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM dns_snapshots
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*snapshot.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// ListRecordRows returns the stored rows of a snapshot in insertion order
func (r *SnapshotRepository) ListRecordRows(ctx context.Context, snapshotID int64) ([]snapshot.RecordRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, snapshot_id, record_host, record_type, record_data, created_at
		FROM dns_records
		WHERE snapshot_id = $1
		ORDER BY id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("list record rows: %w", err)
	}
	defer rows.Close()

	var out []snapshot.RecordRow
	for rows.Next() {
		var row snapshot.RecordRow
		if err := rows.Scan(&row.ID, &row.SnapshotID, &row.Host, &row.Type, &row.EncodedValue, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		row.CreatedAt = row.CreatedAt.UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ snapshot.Repository = (*SnapshotRepository)(nil)

type snapshotTx struct {
	writer
	tx *sql.Tx
}

func (t *snapshotTx) Commit() error   { return t.tx.Commit() }
func (t *snapshotTx) Rollback() error { return t.tx.Rollback() }

// writer implements snapshot.Writer on the pool or inside a transaction.
type writer struct {
	q queryer
}

func (w writer) CountSnapshots(ctx context.Context) (int, error) {
	var n int
	if err := w.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM dns_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// DeleteOldestSnapshots removes the n oldest snapshots and their rows.
func (w writer) DeleteOldestSnapshots(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	rows, err := w.q.QueryContext(ctx, `
		SELECT id FROM dns_snapshots
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`, n)
	if err != nil {
		return 0, fmt.Errorf("select oldest snapshots: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select oldest snapshots: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	// Rows are removed explicitly even though the foreign key cascades.
	if _, err := w.q.ExecContext(ctx, `DELETE FROM dns_records WHERE snapshot_id = ANY($1)`, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("delete record rows: %w", err)
	}
	res, err := w.q.ExecContext(ctx, `DELETE FROM dns_snapshots WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete oldest snapshots: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete oldest snapshots: %w", err)
	}
	return int(deleted), nil
}

func (w writer) InsertSnapshot(ctx context.Context, s *snapshot.Snapshot) (int64, error) {
	var id int64
	err := w.q.QueryRowContext(ctx, `
		INSERT INTO dns_snapshots (snapshot_changes, snapshot_additions, snapshot_removals, snapshot_modifications, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, s.Total, s.Additions, s.Removals, s.Modifications, s.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	return id, nil
}

// InsertRecordRows writes rows with one multi-row INSERT per batch.
func (w writer) InsertRecordRows(ctx context.Context, rows []snapshot.RecordRow) error {
	const batch = 500
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		var sb strings.Builder
		sb.WriteString(`INSERT INTO dns_records (snapshot_id, record_host, record_type, record_data, created_at) VALUES `)
		args := make([]any, 0, (end-start)*5)
		for i, row := range rows[start:end] {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 5
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
			args = append(args, row.SnapshotID, row.Host, row.Type, row.EncodedValue, row.CreatedAt)
		}
		if _, err := w.q.ExecContext(ctx, sb.String(), args...); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("insert record rows: %w", snapshot.ErrSnapshotNotFound)
			}
			return fmt.Errorf("insert record rows: %w", err)
		}
	}
	return nil
}

// DeleteSnapshot removes a snapshot and its rows
func (w writer) DeleteSnapshot(ctx context.Context, id int64) error {
	if _, err := w.q.ExecContext(ctx, `DELETE FROM dns_records WHERE snapshot_id = $1`, id); err != nil {
		return fmt.Errorf("delete record rows: %w", err)
	}
	res, err := w.q.ExecContext(ctx, `DELETE FROM dns_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return requireDeleted(res)
}

// requireDeleted maps a delete that matched no row to ErrSnapshotNotFound
func requireDeleted(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: rows affected: %w", err)
	}
	if n == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}
