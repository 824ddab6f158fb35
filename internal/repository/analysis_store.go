package repository

import (
	"context"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/models"
)

// AnalysisStore exposes the repositories through the analysis core's data-access contract.
type AnalysisStore struct {
	batteries Batteries
	samples   Samples
}

func NewAnalysisStore(batteries Batteries, samples Samples) *AnalysisStore {
	return &AnalysisStore{batteries: batteries, samples: samples}
}

var _ analysis.Store = (*AnalysisStore)(nil)

func (s *AnalysisStore) Battery(ctx context.Context, id int) (models.Battery, error) {
	return s.batteries.Get(ctx, id)
}

func (s *AnalysisStore) IcaSamples(ctx context.Context, batteryID int) ([]models.IcaSample, error) {
	return s.samples.IcaSamples(ctx, batteryID)
}

func (s *AnalysisStore) CcctSamples(ctx context.Context, batteryID int) ([]models.CcctSample, error) {
	return s.samples.CcctSamples(ctx, batteryID)
}

func (s *AnalysisStore) SaveLeftBorder(ctx context.Context, batteryID int, v float64) error {
	return s.batteries.SaveLeftBorder(ctx, batteryID, v)
}

func (s *AnalysisStore) SaveRightBorder(ctx context.Context, batteryID int, v float64) error {
	return s.batteries.SaveRightBorder(ctx, batteryID, v)
}

func (s *AnalysisStore) SaveStopTime(ctx context.Context, batteryID int, v float64) error {
	return s.batteries.SaveStopTime(ctx, batteryID, v)
}
