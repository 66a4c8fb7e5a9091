package notify

import (
	"context"

	"dnsmonitor/internal/application/monitor"

	"github.com/rs/zerolog"
)

// LogNotifier writes one warning per detected change set, followed by one
// line per changed record.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// NotifyChanges implements monitor.Notifier
func (n *LogNotifier) NotifyChanges(ctx context.Context, result *monitor.CheckResult) error {
	n.logger.Warn().
		Str("check_id", result.ID).
		Str("domain", result.Domain).
		Int("additions", result.Summary.Additions).
		Int("removals", result.Summary.Removals).
		Int("modifications", result.Summary.Modifications).
		Int64("snapshot_id", result.SnapshotID).
		Int64("previous_snapshot_id", result.PreviousSnapshotID).
		Msg("DNS changes detected")

	if result.Changes == nil {
		return nil
	}
	for _, r := range result.Changes.Added {
		n.logger.Info().Str("check_id", result.ID).Str("change", "added").Fields(r).Msg("record added")
	}
	for _, r := range result.Changes.Removed {
		n.logger.Info().Str("check_id", result.ID).Str("change", "removed").Fields(r).Msg("record removed")
	}
	for _, m := range result.Changes.Modified {
		n.logger.Info().
			Str("check_id", result.ID).
			Str("change", "modified").
			Interface("previous", m.Previous).
			Interface("current", m.Current).
			Msg("record modified")
	}
	return nil
}
