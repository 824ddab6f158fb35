package service

import (
	"context"
	"errors"
	"time"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/logger"
	"battery_analysis/internal/repository"

	"github.com/go-co-op/gocron"
)

// SweeperService periodically re-runs the analyses of every battery so
// results catch up after restarts or parameter changes.
type SweeperService struct {
	batteries repository.Batteries
	analyzer  Reanalyzer
	log       *logger.Logger
}

func NewSweeperService(batteries repository.Batteries, analyzer Reanalyzer, log *logger.Logger) *SweeperService {
	return &SweeperService{batteries: batteries, analyzer: analyzer, log: log}
}

// Run schedules a sweep every interval until ctx is canceled.
func (s *SweeperService) Run(ctx context.Context, interval time.Duration) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		if _, err := s.SweepOnce(ctx); err != nil && s.log != nil {
			s.log.Errorw("sweep_failed", "err", err)
		}
	})
	if err != nil {
		if s.log != nil {
			s.log.Errorw("sweep_schedule_failed", "interval", interval.String(), "err", err)
		}
		return
	}

	scheduler.StartAsync()
	if s.log != nil {
		s.log.Infow("sweeper_started", "interval", interval.String())
	}

	<-ctx.Done()
	scheduler.Stop()
	if s.log != nil {
		s.log.Infow("sweeper_stopped")
	}
}

// SweepOnce re-analyzes every battery and returns how many outcomes were applied.
// A failing battery does not stop the sweep.
func (s *SweeperService) SweepOnce(ctx context.Context) (int, error) {
	list, err := s.batteries.List(ctx)
	if err != nil {
		return 0, err
	}

	var (
		appliedCount int
		errs         []error
	)
	for _, b := range list {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		out, err := s.analyzer.Reanalyze(ctx, b.ID)
		if err != nil {
			errs = append(errs, err)
		}
		for _, o := range out {
			if o.Status == analysis.StatusApplied {
				appliedCount++
			}
		}
	}
	if s.log != nil {
		s.log.Debugw("sweep_finished", "batteries", len(list), "applied", appliedCount)
	}
	return appliedCount, errors.Join(errs...)
}
