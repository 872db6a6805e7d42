// Package scheduler runs the periodic valuation batch on a cron schedule.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"propfolio/internal/config"
	"propfolio/internal/logger"
	"propfolio/internal/services"
)

// Scheduler triggers unscoped valuation batch runs on a fixed schedule. The
// batch itself is idempotent, so an overlapping or repeated run is safe.
type Scheduler struct {
	cron      *cron.Cron
	valuation services.ValuationServicer
	cfg       config.ValuationConfig
	running   bool
}

// New creates a scheduler around the valuation service.
func New(valuation services.ValuationServicer, cfg config.ValuationConfig) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		valuation: valuation,
		cfg:       cfg,
	}
}

// Start registers the daily job and starts the cron loop. It is a no-op when
// the daily run is disabled in configuration.
func (s *Scheduler) Start() error {
	log := logger.Get()

	if !s.cfg.DailyRunEnabled {
		log.Info("valuation scheduler: daily run disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.DailyRunSpec, func() {
		log.Infow("valuation scheduler: starting scheduled run", "cron", s.cfg.DailyRunSpec)
		summary, err := s.valuation.RunBatch(context.Background(), services.BatchOptions{})
		if err != nil {
			log.Errorw("valuation scheduler: run failed", "error", err.Error())
			return
		}
		log.Infow("valuation scheduler: run finished",
			"total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	log.Infow("valuation scheduler: started", "cron", s.cfg.DailyRunSpec)
	return nil
}

// Stop halts the cron loop. Already-running jobs finish on their own.
func (s *Scheduler) Stop() {
	if s.running {
		s.cron.Stop()
		s.running = false
		logger.Get().Info("valuation scheduler: stopped")
	}
}
