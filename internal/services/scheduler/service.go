package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Purger removes expired sessions and reset tokens
type Purger interface {
	PurgeExpired(ctx context.Context) error
}

// Service runs periodic housekeeping on a cron schedule
type Service struct {
	purger  Purger
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	running bool
	lastRun *time.Time
	lastErr error
}

// NewService creates a new scheduler service
func NewService(purger Purger, logger arbor.ILogger) *Service {
	return &Service{
		purger: purger,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the cleanup job and starts the cron loop
func (s *Service) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if schedule == "" {
		schedule = "*/15 * * * *" // Default: every 15 minutes
	}

	if _, err := s.cron.AddFunc(schedule, s.runCleanup); err != nil {
		return fmt.Errorf("failed to add cleanup job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Cleanup scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Cleanup scheduler stopped")
}

// RunNow performs a cleanup pass synchronously
func (s *Service) RunNow() error {
	s.runCleanup()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastRun returns the time of the most recent cleanup pass, nil if none ran
func (s *Service) LastRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Service) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	start := time.Now()
	err := s.purger.PurgeExpired(ctx)

	s.mu.Lock()
	s.lastRun = &start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Scheduled cleanup failed")
		return
	}

	s.logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("Scheduled cleanup complete")
}
