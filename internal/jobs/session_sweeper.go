package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper expires idle entries; implemented by session.Registry.
type Sweeper interface {
	Sweep(now time.Time) int
}

// SessionSweeper closes abandoned capture sessions on a cron schedule
type SessionSweeper struct {
	registry Sweeper
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
	now      func() time.Time
}

// schedule uses standard cron syntax or descriptors such as "@every 1m"
func NewSessionSweeper(registry Sweeper, schedule string, logger *zap.Logger) *SessionSweeper {
	if schedule == "" {
		schedule = "@every 1m"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionSweeper{
		registry: registry,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the scheduled sweep
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *SessionSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.logger.Info("session sweeper stopped")
	}
}

// RunOnce performs a single sweep and returns the number of sessions closed
func (s *SessionSweeper) RunOnce() int {
	n := s.registry.Sweep(s.now())
	if n > 0 {
		s.logger.Debug("session sweep closed sessions", zap.Int("count", n))
	}
	return n
}
