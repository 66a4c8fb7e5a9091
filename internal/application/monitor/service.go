package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config holds the monitor settings
type Config struct {
	Domain   string
	Behavior SnapshotBehavior
}

// Service runs checks of one domain against its snapshot history
type Service struct {
	mu        sync.Mutex
	cfg       Config
	resolver  Resolver
	store     SnapshotStore
	locker    Locker
	notifiers []Notifier
	now       func() time.Time
}

// NewService creates a new monitor service
func NewService(cfg Config, resolver Resolver, store SnapshotStore) *Service {
	if cfg.Behavior == "" {
		cfg.Behavior = BehaviorAlways
	}
	return &Service{
		cfg:      cfg,
		resolver: resolver,
		store:    store,
		now:      time.Now,
	}
}

// SetLocker sets the cross-process lock taken around every check
func (s *Service) SetLocker(locker Locker) {
	s.locker = locker
}

// AddNotifier registers a notifier for checks that detect changes
func (s *Service) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// Domain returns the monitored domain
func (s *Service) Domain() string {
	return s.cfg.Domain
}

// Check resolves the domain, compares the result with the latest snapshot
// and stores a new snapshot according to the configured behavior.
//
// When the snapshot cannot be stored the result is still returned, with Saved
// unset, together with an error matching ErrSnapshotNotSaved.
func (s *Service) Check(ctx context.Context) (*CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "check:"+s.cfg.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire check lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.Error().Err(err).Str("domain", s.cfg.Domain).Msg("failed to release check lock")
			}
		}()
	}

	result := &CheckResult{
		ID:        uuid.New().String(),
		Domain:    s.cfg.Domain,
		CheckedAt: s.now().UTC(),
	}

	records, err := s.resolver.Resolve(ctx, s.cfg.Domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}
	if len(records) == 0 {
		return nil, ErrResolutionEmpty
	}
	if err := dnsrecord.ValidateUnique(records); err != nil {
		return nil, err
	}
	records = dnsrecord.Sort(records)
	result.RecordCount = len(records)

	previous, err := s.baseline(ctx, result)
	if err != nil {
		return nil, err
	}

	changes := snapshot.Compare(records, previous)
	result.Summary = changes.Summary()
	result.ChangesDetected = !result.Baseline && result.Summary.HasChanges()
	if result.ChangesDetected {
		result.Changes = NewChangeDetail(changes)
	}

	var saveErr error
	if result.Baseline || result.ChangesDetected || s.cfg.Behavior == BehaviorAlways {
		id, err := s.store.CreateWithRecords(ctx, records, result.Summary)
		if err != nil {
			log.Error().Err(err).Str("check_id", result.ID).Str("domain", s.cfg.Domain).Msg("failed to store snapshot")
			saveErr = fmt.Errorf("%w: %w", ErrSnapshotNotSaved, err)
		} else {
			result.Saved = true
			result.SnapshotID = id
		}
	}

	if result.ChangesDetected {
		s.notify(ctx, result)
	}

	log.Info().
		Str("check_id", result.ID).
		Str("domain", s.cfg.Domain).
		Int("records", result.RecordCount).
		Int("additions", result.Summary.Additions).
		Int("removals", result.Summary.Removals).
		Int("modifications", result.Summary.Modifications).
		Bool("saved", result.Saved).
		Int64("snapshot_id", result.SnapshotID).
		Msg("check completed")

	return result, saveErr
}

// baseline loads the records of the latest snapshot. It marks result as a
// baseline check when no snapshot exists yet.
func (s *Service) baseline(ctx context.Context, result *CheckResult) ([]dnsrecord.Record, error) {
	latest, err := s.store.Latest(ctx)
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		result.Baseline = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	set, err := s.store.RecordsOf(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load records of snapshot %d: %w", latest.ID, err)
	}
	if set.Partial() {
		log.Warn().
			Int64("snapshot_id", latest.ID).
			Int("skipped", len(set.Skipped)).
			Msg("comparing against a partially decoded snapshot")
	}
	result.PreviousSnapshotID = latest.ID
	result.SkippedRows = len(set.Skipped)
	return set.Records, nil
}

func (s *Service) notify(ctx context.Context, result *CheckResult) {
	for _, n := range s.notifiers {
		if err := n.NotifyChanges(ctx, result); err != nil {
			log.Error().Err(err).Str("check_id", result.ID).Msg("failed to send change notification")
		}
	}
}

// Compare returns the snapshot id next to its predecessor with both record
// sets and the changes between them.
func (s *Service) Compare(ctx context.Context, id int64) (*Comparison, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	currentRecords, err := s.store.RecordsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Current:         current,
		CurrentRecords:  currentRecords,
		PreviousRecords: &snapshot.RecordSet{},
	}

	previous, err := s.store.Previous(ctx, id)
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		return cmp, nil
	}
	if err != nil {
		return nil, err
	}
	previousRecords, err := s.store.RecordsOf(ctx, previous.ID)
	if err != nil {
		return nil, err
	}

	cmp.Previous = previous
	cmp.PreviousRecords = previousRecords
	cmp.Changes = snapshot.Compare(currentRecords.Records, previousRecords.Records)
	return cmp, nil
}
