// Package scheduler runs the periodic cache-warming job.
package scheduler

import (
	"context"

	"org-cleanse/internal/config"
	"org-cleanse/internal/logger"
	"org-cleanse/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner and the warm job.
type Scheduler struct {
	cron           *cron.Cron
	suggestService *service.SuggestService
	cfg            config.MatchingConfig
}

// NewScheduler creates a scheduler with second precision, matching the
// six-field cron specs in the configuration.
func NewScheduler(suggestService *service.SuggestService, cfg config.MatchingConfig) *Scheduler {
	return &Scheduler{
		cron:           cron.New(cron.WithSeconds()),
		suggestService: suggestService,
		cfg:            cfg,
	}
}

// Start registers the warm job and starts the cron runner.
func (s *Scheduler) Start() error {
	if !s.cfg.WarmEnabled {
		logger.Info().Msg("suggestion cache warming disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.WarmCronSpec, func() {
		ctx := context.Background()
		if err := s.suggestService.WarmParentSuggestions(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled cache warm failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("spec", s.cfg.WarmCronSpec).Msg("scheduler started")
	return nil
}

// Stop stops the cron runner; running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Info().Msg("scheduler stopped")
}

// RunWarmNow triggers the warm job immediately, outside the schedule.
func (s *Scheduler) RunWarmNow(ctx context.Context) error {
	return s.suggestService.WarmParentSuggestions(ctx)
}
