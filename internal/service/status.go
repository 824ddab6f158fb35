package service

import (
	"context"

	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

const (
	msgCollecting  = "Collecting data for the battery analysis"
	msgOperational = "Battery analysis finished. The battery is in working condition"
	msgReplace     = "The battery must be replaced. Please contact a service center"
)

type StatusService struct {
	batteries repository.Batteries
	samples   repository.Samples
}

func NewStatusService(batteries repository.Batteries, samples repository.Samples) *StatusService {
	return &StatusService{batteries: batteries, samples: samples}
}

// GetStatus reports whether a battery is still collecting data, operational,
// or due for replacement because its CCCT history reached the stop-time.
func (s *StatusService) GetStatus(ctx context.Context, batteryID int) (models.BatteryStatus, error) {
	b, err := s.batteries.Get(ctx, batteryID)
	if err != nil {
		return models.BatteryStatus{}, mapNotFound(err)
	}
	ica, ccct, err := s.samples.Counts(ctx, batteryID)
	if err != nil {
		return models.BatteryStatus{}, err
	}
	latest, err := s.samples.LatestCcctTime(ctx, batteryID)
	if err != nil {
		return models.BatteryStatus{}, err
	}

	st := models.BatteryStatus{
		Battery:        b,
		IcaSamples:     ica,
		CcctSamples:    ccct,
		LatestCcctTime: latest,
	}
	st.State, st.Message = classify(b.StopTime, latest)
	return st, nil
}

func classify(stopTime, latest *float64) (string, string) {
	switch {
	case stopTime == nil:
		return models.StateCollecting, msgCollecting
	case latest != nil && *latest >= *stopTime:
		return models.StateReplace, msgReplace
	default:
		return models.StateOperational, msgOperational
	}
}
