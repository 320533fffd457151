package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yanqian/lumee/internal/domain/conversation"
	"github.com/yanqian/lumee/internal/infra/config"
)

// Sweeper drops conversation sessions idle for longer than ttl.
type Sweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (int, error)
}

// Scheduler runs periodic housekeeping next to the HTTP server.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	ttl       time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// NewScheduler only schedules the sweep when the store keeps sessions in process.
// Stores with their own expiry, such as valkey, are left alone.
func NewScheduler(cfg *config.Config, store conversation.Store, logger *slog.Logger) *Scheduler {
	sweeper, _ := store.(Sweeper)
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		ttl:       cfg.Conversation.TTL,
		interval:  cfg.Conversation.SweepInterval,
		logger:    logger.With("component", "bootstrap.scheduler"),
	}
}

// Start registers the jobs and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	if s.sweeper == nil || s.ttl <= 0 || s.interval <= 0 {
		s.logger.Info("conversation sweep disabled")
		return nil
	}

	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Info("conversation sweep scheduled", "interval", s.interval.String(), "ttl", s.ttl.String())
	return nil
}

// Stop cancels future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.sweeper.Sweep(ctx, s.ttl)
	if err != nil {
		s.logger.Warn("conversation sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("idle conversations removed", "count", removed)
	}
}
