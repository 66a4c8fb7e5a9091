package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dnsmonitor/internal/config"
	"dnsmonitor/internal/domain/snapshot"
)

const testZone = `$ORIGIN example.com.
$TTL 300
@ IN A  93.184.216.34
@ IN MX 10 mail.example.com.
`

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	zone := filepath.Join(t.TempDir(), "example.com.zone")
	if err := os.WriteFile(zone, []byte(testZone), 0o600); err != nil {
		t.Fatalf("Failed to write zone: %v", err)
	}
	return &config.Config{
		HTTPPort: "8080",
		Monitor:  config.MonitorConfig{Domain: "example.com", ZoneFile: zone},
		Snapshot: config.SnapshotConfig{Retention: 3, Behavior: "on_change"},
		Database: config.DBConfig{Driver: driver, DSN: "sqlite:" + filepath.Join(t.TempDir(), "test.db")},
	}
}

func TestNew_Drivers(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			a, err := New(context.Background(), testConfig(t, driver))
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			defer a.Close()

			if a.Store.Retention() != 3 {
				t.Errorf("Expected retention 3, got %d", a.Store.Retention())
			}

			result, err := a.Monitor.Check(context.Background())
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !result.Baseline || result.RecordCount != 2 {
				t.Errorf("Expected a baseline of 2 records, got %+v", result)
			}

			// on_change keeps the history at one snapshot while nothing changes
			if _, err := a.Monitor.Check(context.Background()); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			count, err := a.Store.Count(context.Background())
			if err != nil || count != 1 {
				t.Errorf("Expected 1 snapshot, got %d (%v)", count, err)
			}
		})
	}
}

func TestNew_SQLitePersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := a.Monitor.Check(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	a.Close()

	a, err = New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	latest, err := a.Store.Latest(context.Background())
	if err != nil {
		t.Fatalf("Expected the snapshot to survive a restart, got %v", err)
	}
	if latest.ID == 0 {
		t.Error("Expected a stored snapshot id")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Snapshot.Behavior = "sometimes"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected an error for an unknown snapshot behavior")
	}

	cfg = testConfig(t, "mysql")
	if _, err := New(context.Background(), cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNew_EmptyStoreHasNoLatest(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, config.DriverMemory))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer a.Close()

	if _, err := a.Store.Latest(context.Background()); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}
