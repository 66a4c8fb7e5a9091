package snapshot

import (
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
)

// DefaultRetention is the number of snapshots kept after an insert.
const DefaultRetention = 10

// Snapshot is an immutable capture of a domain's record set together with the
// change counts relative to the snapshot before it.
type Snapshot struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Additions     int       `json:"additions"`
	Removals      int       `json:"removals"`
	Modifications int       `json:"modifications"`
	Total         int       `json:"total"`
}

// Summary returns the change counts stored on the snapshot.
func (s *Snapshot) Summary() ChangeSummary {
	return ChangeSummary{
		Additions:     s.Additions,
		Removals:      s.Removals,
		Modifications: s.Modifications,
		Total:         s.Total,
	}
}

// ChangeSummary counts the differences between two record sets.
type ChangeSummary struct {
	Additions     int `json:"additions"`
	Removals      int `json:"removals"`
	Modifications int `json:"modifications"`
	Total         int `json:"total"`
}

// NewChangeSummary builds a summary whose Total is the sum of the three counts.
func NewChangeSummary(additions, removals, modifications int) ChangeSummary {
	return ChangeSummary{
		Additions:     additions,
		Removals:      removals,
		Modifications: modifications,
		Total:         additions + removals + modifications,
	}
}

// HasChanges reports whether any bucket is non-zero.
func (c ChangeSummary) HasChanges() bool {
	return c.Total > 0
}

// RecordRow is the persisted form of one record belonging to a snapshot.
type RecordRow struct {
	ID           int64     `json:"id"`
	SnapshotID   int64     `json:"snapshot_id"`
	Host         string    `json:"host"`
	Type         string    `json:"type"`
	EncodedValue string    `json:"value"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewRecordRow encodes r for storage under snapshotID.
func NewRecordRow(snapshotID int64, r dnsrecord.Record, createdAt time.Time) RecordRow {
	return RecordRow{
		SnapshotID:   snapshotID,
		Host:         r.Header().Host,
		Type:         string(r.Type()),
		EncodedValue: dnsrecord.Encode(r),
		CreatedAt:    createdAt,
	}
}

// Decode rebuilds the record held by the row. The result has no TTL.
func (row RecordRow) Decode() (dnsrecord.Record, error) {
	return dnsrecord.Decode(row.Host, dnsrecord.Type(row.Type), row.EncodedValue)
}

// SkippedRow describes a stored row that could not be decoded.
type SkippedRow struct {
	RowID  int64  `json:"row_id"`
	Host   string `json:"host"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// RecordSet is the decoded content of a snapshot. Rows that failed to decode
// are listed in Skipped instead of aborting the read.
type RecordSet struct {
	Records []dnsrecord.Record
	Skipped []SkippedRow
}

// Partial reports whether any stored row was skipped.
func (s *RecordSet) Partial() bool {
	return len(s.Skipped) > 0
}
