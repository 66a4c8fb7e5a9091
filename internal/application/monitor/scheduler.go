package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Checker runs one check.
type Checker interface {
	Check(ctx context.Context) (*CheckResult, error)
}

// Scheduler runs checks at a fixed interval
type Scheduler struct {
	checker    Checker
	interval   time.Duration
	runOnStart bool
}

// NewScheduler creates a scheduler. A runOnStart scheduler checks once
// before the first tick.
func NewScheduler(checker Checker, interval time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{checker: checker, interval: interval, runOnStart: runOnStart}
}

// Run blocks, checking on every tick until ctx is done. Check failures are
// logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("check interval must be positive")
	}
	log.Info().Dur("interval", s.interval).Bool("run_on_start", s.runOnStart).Msg("starting check scheduler")

	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("check scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.checker.Check(ctx); err != nil {
		if errors.Is(err, ErrResolutionEmpty) {
			log.Warn().Msg("scheduled check skipped: no records resolved")
			return
		}
		log.Error().Err(err).Msg("scheduled check failed")
	}
}
