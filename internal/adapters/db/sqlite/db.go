package sqlite

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB backed by SQLite. The dsn may carry a "sqlite:" or
// "sqlite3:" scheme prefix, e.g. sqlite:./dnsmonitor.db or sqlite::memory:.
// An empty dsn opens ./dnsmonitor.db.
func Open(dsn string) (*gorm.DB, error) {
	for _, scheme := range []string{"sqlite:", "sqlite3:"} {
		dsn = strings.TrimPrefix(dsn, scheme)
	}
	if dsn == "" {
		dsn = "./dnsmonitor.db"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases
	// and the foreign_keys pragma alive for the lifetime of the handle.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// AutoMigrate applies schema migrations for the snapshot tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SnapshotRecord{}, &RecordRowRecord{})
}
