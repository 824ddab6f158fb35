package analysis

import (
	"context"
	"fmt"
	"math"

	"battery_analysis/internal/models"
)

// Diagnostics is the full intermediate state of one curve analysis.
type Diagnostics struct {
	Stage    string    `json:"stage"`
	Curve    Curve     `json:"curve"`
	Smoothed []float64 `json:"smoothed"`
	Peaks    []Peak    `json:"peaks"`
}

// AnalyzeCurve builds, smooths and peak-analyzes one ICA stage.
func AnalyzeCurve(samples []models.IcaSample, p models.Parameters, stage Stage) (Diagnostics, error) {
	charge := make([]float64, len(samples))
	voltage := make([]float64, len(samples))
	for i, s := range samples {
		charge[i] = s.Charge
		voltage[i] = s.Voltage
	}

	curve, err := BuildCurve(charge, voltage, stage)
	if err != nil {
		return Diagnostics{}, err
	}
	smoothed := Smooth(curve.DQDV(), p.FilterWidth)
	peaks, err := FindPeaks(smoothed)
	if err != nil {
		return Diagnostics{}, err
	}
	return Diagnostics{Stage: stage.Name, Curve: curve, Smoothed: smoothed, Peaks: peaks}, nil
}

// LeftBorderVoltage reads the voltage at the left width edge of the configured peak.
func LeftBorderVoltage(d Diagnostics, p models.Parameters) (float64, error) {
	pk, err := selectPeak(d.Peaks, p.Peak)
	if err != nil {
		return 0, err
	}
	i := int(math.RoundToEven(pk.Left))
	if i < 0 || i >= len(d.Curve) {
		return 0, fmt.Errorf("%w: left edge %d outside curve of %d points", ErrDegenerateCurve, i, len(d.Curve))
	}
	return d.Curve[i].Voltage, nil
}

// RightBorderVoltage reads the voltage at the configured peak itself.
func RightBorderVoltage(d Diagnostics, p models.Parameters) (float64, error) {
	pk, err := selectPeak(d.Peaks, p.Peak)
	if err != nil {
		return 0, err
	}
	return d.Curve[pk.Index].Voltage, nil
}

// BorderEstimator assigns the left and right voltage landmarks of a battery.
type BorderEstimator struct {
	store Store
}

func NewBorderEstimator(store Store) *BorderEstimator {
	return &BorderEstimator{store: store}
}

// EstimateLeft computes the left border from the first ICA cycle. The error is
// non-nil only for storage failures; analysis conditions end up in the Outcome.
func (e *BorderEstimator) EstimateLeft(ctx context.Context, batteryID int) (Outcome, error) {
	return e.estimate(ctx, batteryID, OpLeftBorder, FirstCycle, LeftBorderVoltage, e.store.SaveLeftBorder)
}

// EstimateRight computes the right border from the second ICA cycle.
func (e *BorderEstimator) EstimateRight(ctx context.Context, batteryID int) (Outcome, error) {
	return e.estimate(ctx, batteryID, OpRightBorder, SecondCycle, RightBorderVoltage, e.store.SaveRightBorder)
}

func (e *BorderEstimator) estimate(
	ctx context.Context,
	batteryID int,
	op string,
	stage Stage,
	pick func(Diagnostics, models.Parameters) (float64, error),
	save func(context.Context, int, float64) error,
) (Outcome, error) {
	b, err := e.store.Battery(ctx, batteryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load battery %d: %w", batteryID, err)
	}
	samples, err := e.store.IcaSamples(ctx, batteryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load ica samples for battery %d: %w", batteryID, err)
	}

	d, err := AnalyzeCurve(samples, b.Parameters, stage)
	if err != nil {
		return notApplied(op, batteryID, err), nil
	}
	v, err := pick(d, b.Parameters)
	if err != nil {
		return notApplied(op, batteryID, err), nil
	}

	if err := save(ctx, batteryID, v); err != nil {
		return Outcome{}, fmt.Errorf("save %s for battery %d: %w", op, batteryID, err)
	}
	return applied(op, batteryID, v), nil
}
