package service

import (
	"context"
	"io"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/chart"
)

// Reanalyzer re-runs every analysis of a battery.
type Reanalyzer interface {
	Reanalyze(ctx context.Context, batteryID int) ([]analysis.Outcome, error)
}

// AnalysisService exposes the core to the transport layer: manual
// re-analysis plus read-only curve diagnostics and charts.
type AnalysisService struct {
	store    analysis.Store
	analyzer Reanalyzer
	locks    *batteryLocks
}

func NewAnalysisService(store analysis.Store, analyzer Reanalyzer, locks *batteryLocks) *AnalysisService {
	if locks == nil {
		locks = newBatteryLocks()
	}
	return &AnalysisService{store: store, analyzer: analyzer, locks: locks}
}

// Reanalyze runs the border and stop-time estimations under the battery's lock.
func (s *AnalysisService) Reanalyze(ctx context.Context, batteryID int) ([]analysis.Outcome, error) {
	if _, err := s.store.Battery(ctx, batteryID); err != nil {
		return nil, mapNotFound(err)
	}
	unlock := s.locks.lock(batteryID)
	defer unlock()
	return s.analyzer.Reanalyze(ctx, batteryID)
}

// Curve computes the diagnostics of one ICA stage without storing anything.
// Analysis conditions such as analysis.ErrInsufficientData are returned as errors.
func (s *AnalysisService) Curve(ctx context.Context, batteryID int, stage analysis.Stage) (analysis.Diagnostics, error) {
	b, err := s.store.Battery(ctx, batteryID)
	if err != nil {
		return analysis.Diagnostics{}, mapNotFound(err)
	}
	samples, err := s.store.IcaSamples(ctx, batteryID)
	if err != nil {
		return analysis.Diagnostics{}, err
	}
	return analysis.AnalyzeCurve(samples, b.Parameters, stage)
}

// RenderCurve writes the chart of one ICA stage to w.
func (s *AnalysisService) RenderCurve(ctx context.Context, batteryID int, stage analysis.Stage, w io.Writer, opts chart.Options) error {
	d, err := s.Curve(ctx, batteryID, stage)
	if err != nil {
		return err
	}
	b, err := s.store.Battery(ctx, batteryID)
	if err != nil {
		return mapNotFound(err)
	}
	return chart.RenderCurve(w, d, b, opts)
}
