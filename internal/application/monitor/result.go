package monitor

import (
	"fmt"
	"strings"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"
)

// SnapshotBehavior decides when a check stores a snapshot.
type SnapshotBehavior string

const (
	// BehaviorAlways stores a snapshot on every check.
	BehaviorAlways SnapshotBehavior = "always"
	// BehaviorOnChange stores a snapshot only when changes were detected.
	BehaviorOnChange SnapshotBehavior = "on_change"
)

// ParseSnapshotBehavior validates a behavior name. An empty name selects BehaviorAlways.
func ParseSnapshotBehavior(s string) (SnapshotBehavior, error) {
	switch b := SnapshotBehavior(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return BehaviorAlways, nil
	case BehaviorAlways, BehaviorOnChange:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBehavior, s)
}

// RecordChange is one modified record, before and after.
type RecordChange struct {
	Previous map[string]any `json:"previous"`
	Current  map[string]any `json:"current"`
}

// ChangeDetail lists the records behind a change summary.
type ChangeDetail struct {
	Added    []map[string]any `json:"added"`
	Removed  []map[string]any `json:"removed"`
	Modified []RecordChange   `json:"modified"`
}

// NewChangeDetail renders changes for notifications and the API.
func NewChangeDetail(c snapshot.Changes) *ChangeDetail {
	d := &ChangeDetail{
		Added:    RecordViews(c.Added),
		Removed:  RecordViews(c.Removed),
		Modified: make([]RecordChange, 0, len(c.Modified)),
	}
	for _, m := range c.Modified {
		d.Modified = append(d.Modified, RecordChange{
			Previous: dnsrecord.Fields(m.Previous),
			Current:  dnsrecord.Fields(m.Current),
		})
	}
	return d
}

// RecordViews returns the flat field view of each record.
func RecordViews(records []dnsrecord.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		out = append(out, dnsrecord.Fields(r))
	}
	return out
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	ID                 string                 `json:"id"`
	Domain             string                 `json:"domain"`
	CheckedAt          time.Time              `json:"checked_at"`
	RecordCount        int                    `json:"record_count"`
	Summary            snapshot.ChangeSummary `json:"summary"`
	ChangesDetected    bool                   `json:"changes_detected"`
	Baseline           bool                   `json:"baseline"`
	Saved              bool                   `json:"saved"`
	SnapshotID         int64                  `json:"snapshot_id,omitempty"`
	PreviousSnapshotID int64                  `json:"previous_snapshot_id,omitempty"`
	SkippedRows        int                    `json:"skipped_rows,omitempty"`
	Changes            *ChangeDetail          `json:"changes,omitempty"`
}

// Comparison is a snapshot next to its predecessor.
type Comparison struct {
	Current         *snapshot.Snapshot
	Previous        *snapshot.Snapshot // nil for the oldest snapshot
	CurrentRecords  *snapshot.RecordSet
	PreviousRecords *snapshot.RecordSet
	Changes         snapshot.Changes
}
