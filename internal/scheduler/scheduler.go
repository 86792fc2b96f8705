package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Haizenx/Enginuity-Alpha/internal/config"
	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

const sweepTimeout = 5 * time.Minute

// Sweeper removes duplicate catalog items and offers left behind by deleted suppliers.
type Sweeper interface {
	Sweep(ctx context.Context, dryRun bool) (models.SweepReport, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	cfg     config.MaintenanceConfig
	logger  *zap.Logger
}

// NewScheduler creates a scheduler that runs the catalog sweep in the configured timezone.
func NewScheduler(cfg config.MaintenanceConfig, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Overlapping sweeps would race on the same duplicates.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Start registers the sweep and starts the scheduler. A disabled sweep leaves
// the scheduler idle.
func (s *Scheduler) Start() error {
	if s.cfg.SweepEnabled() {
		if _, err := s.cron.AddFunc(s.cfg.SweepCron, s.runSweep); err != nil {
			return fmt.Errorf("schedule catalog sweep %q: %w", s.cfg.SweepCron, err)
		}
		s.logger.Info("catalog sweep scheduled", zap.String("cron", s.cfg.SweepCron))
	} else {
		s.logger.Info("catalog sweep disabled")
	}

	s.logger.Info("starting scheduler")
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("stopping scheduler")
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out while a job was running")
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	s.logger.Info("running catalog sweep")
	report, err := s.sweeper.Sweep(ctx, false)
	if err != nil {
		s.logger.Error("catalog sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("catalog sweep finished",
		zap.Int("deleted_items", report.DeletedItems),
		zap.Int("pulled_offers", report.PulledOffers),
	)
}
