package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/logger"
	"battery_analysis/internal/models"
	"battery_analysis/internal/repository"
)

// TelemetryService stores incoming samples and notifies subscribers
// synchronously once each sample is persisted.
type TelemetryService struct {
	batteries repository.Batteries
	samples   repository.Samples
	locks     *batteryLocks
	log       *logger.Logger

	hooksMu  sync.RWMutex
	icaHooks []analysis.AppendHook
	ccHooks  []analysis.AppendHook
}

var _ analysis.Notifier = (*TelemetryService)(nil)

func NewTelemetryService(batteries repository.Batteries, samples repository.Samples, locks *batteryLocks, log *logger.Logger) *TelemetryService {
	if locks == nil {
		locks = newBatteryLocks()
	}
	return &TelemetryService{batteries: batteries, samples: samples, locks: locks, log: log}
}

func (s *TelemetryService) OnIcaAppended(h analysis.AppendHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.icaHooks = append(s.icaHooks, h)
}

func (s *TelemetryService) OnCcctAppended(h analysis.AppendHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.ccHooks = append(s.ccHooks, h)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AppendIca persists one (charge, voltage) point and runs the ICA hooks.
func (s *TelemetryService) AppendIca(ctx context.Context, batteryID int, charge, voltage float64) (models.IcaSample, error) {
	if !finite(charge, voltage) {
		return models.IcaSample{}, fmt.Errorf("%w: charge and voltage must be finite", ErrInvalidInput)
	}
	if _, err := s.batteries.Get(ctx, batteryID); err != nil {
		return models.IcaSample{}, mapNotFound(err)
	}

	unlock := s.locks.lock(batteryID)
	defer unlock()

	sample := models.IcaSample{BatteryID: batteryID, Charge: charge, Voltage: voltage, Timestamp: time.Now().UTC()}
	id, err := s.samples.AppendIca(ctx, sample)
	if err != nil {
		return models.IcaSample{}, err
	}
	sample.ID = id

	s.notify(ctx, batteryID, s.hooks(true))
	return sample, nil
}

// AppendCcct persists one capacity measurement and runs the CCCT hooks.
func (s *TelemetryService) AppendCcct(ctx context.Context, batteryID int, overallCharge, elapsed float64) (models.CcctSample, error) {
	if !finite(overallCharge, elapsed) {
		return models.CcctSample{}, fmt.Errorf("%w: overall charge and elapsed time must be finite", ErrInvalidInput)
	}
	if elapsed < 0 {
		return models.CcctSample{}, fmt.Errorf("%w: elapsed time must not be negative", ErrInvalidInput)
	}
	b, err := s.batteries.Get(ctx, batteryID)
	if err != nil {
		return models.CcctSample{}, mapNotFound(err)
	}

	unlock := s.locks.lock(batteryID)
	defer unlock()

	sample := models.CcctSample{BatteryID: batteryID, OverallCharge: overallCharge, ElapsedTime: elapsed, Timestamp: time.Now().UTC()}
	id, err := s.samples.AppendCcct(ctx, sample)
	if err != nil {
		return models.CcctSample{}, err
	}
	sample.ID = id
	if b.NominalCharge != 0 {
		sample.SOC = overallCharge / b.NominalCharge
	}

	s.notify(ctx, batteryID, s.hooks(false))
	return sample, nil
}

func (s *TelemetryService) hooks(ica bool) []analysis.AppendHook {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	if ica {
		return append([]analysis.AppendHook(nil), s.icaHooks...)
	}
	return append([]analysis.AppendHook(nil), s.ccHooks...)
}

// notify runs the hooks detached from the caller's cancellation: the sample
// is already stored and the analysis for it only triggers once.
func (s *TelemetryService) notify(ctx context.Context, batteryID int, hooks []analysis.AppendHook) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range hooks {
		h(ctx, batteryID)
	}
	if s.log != nil {
		s.log.WithBattery(batteryID).Debugw("telemetry_appended", "hooks", len(hooks))
	}
}
