package sqlite

import "time"

// SnapshotRecord is the RDB persistence model for domain Snapshot.
// Table name: dns_snapshots
type SnapshotRecord struct {
	ID                    int64             `gorm:"primaryKey;autoIncrement"`
	SnapshotChanges       int               `gorm:"not null;default:0"`
	SnapshotAdditions     int               `gorm:"not null;default:0"`
	SnapshotRemovals      int               `gorm:"not null;default:0"`
	SnapshotModifications int               `gorm:"not null;default:0"`
	CreatedAt             time.Time         `gorm:"not null;index:idx_created_at"`
	Records               []RecordRowRecord `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

func (SnapshotRecord) TableName() string { return "dns_snapshots" }

// RecordRowRecord persistence model
// Table name: dns_records
type RecordRowRecord struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	SnapshotID int64     `gorm:"not null;index:idx_snapshot_type_host,priority:1"`
	RecordHost string    `gorm:"type:varchar(255);not null;index:idx_snapshot_type_host,priority:3;index:idx_type_host,priority:2"`
	RecordType string    `gorm:"type:varchar(255);not null;index:idx_snapshot_type_host,priority:2;index:idx_type_host,priority:1;index:idx_type"`
	RecordData string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (RecordRowRecord) TableName() string { return "dns_records" }
