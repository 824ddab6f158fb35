package analysis

import (
	"fmt"
	"math"
)

// CurvePoint is one row of a differential-capacity curve.
type CurvePoint struct {
	Voltage        float64 `json:"voltage"`
	RoundedVoltage float64 `json:"rounded_voltage"`
	Charge         float64 `json:"charge"`
	DV             float64 `json:"dv"`
	DQ             float64 `json:"dq"`
	DQDV           float64 `json:"dq_dv"`
}

// Curve is an ordered incremental-capacity curve.
type Curve []CurvePoint

// Voltages returns the voltage column.
func (c Curve) Voltages() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Voltage
	}
	return out
}

// DQDV returns the differential-capacity column.
func (c Curve) DQDV() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.DQDV
	}
	return out
}

// roundVoltage rounds to millivolts.
func roundVoltage(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// BuildCurve turns the stored samples of a battery into the dQ/dV curve of
// the given stage. It returns ErrInsufficientData unless exactly
// stage.Expected samples are available.
func BuildCurve(charge, voltage []float64, stage Stage) (Curve, error) {
	if len(charge) != len(voltage) {
		return nil, fmt.Errorf("%w: %d charge values for %d voltage values", ErrInsufficientData, len(charge), len(voltage))
	}
	if len(voltage) != stage.Expected {
		return nil, fmt.Errorf("%w: %s cycle needs %d samples, have %d", ErrInsufficientData, stage, stage.Expected, len(voltage))
	}

	from, to := stage.From, stage.To
	if to > len(voltage) {
		to = len(voltage)
	}
	if from >= to {
		return nil, fmt.Errorf("%w: empty %s cycle", ErrInsufficientData, stage)
	}

	seen := make(map[float64]struct{}, to-from)
	rows := make(Curve, 0, to-from)
	for i := from; i < to; i++ {
		rv := roundVoltage(voltage[i])
		if _, dup := seen[rv]; dup {
			continue
		}
		seen[rv] = struct{}{}
		rows = append(rows, CurvePoint{Voltage: voltage[i], RoundedVoltage: rv, Charge: charge[i]})
	}

	for i := 1; i < len(rows); i++ {
		rows[i].DV = rows[i].Voltage - rows[i-1].Voltage
		rows[i].DQ = rows[i].Charge - rows[i-1].Charge
		if rows[i].DV == 0 {
			continue
		}
		ratio := rows[i].DQ / rows[i].DV
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			continue
		}
		rows[i].DQDV = ratio
	}

	out := rows[:0]
	for _, r := range rows {
		if r.DQDV < 0 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
