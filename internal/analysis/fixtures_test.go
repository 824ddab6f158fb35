package analysis

import (
	"math"

	"battery_analysis/internal/models"
)

var testParams = models.Parameters{
	FirstIcaCycle:   1,
	LastIcaCycle:    2,
	FirstCcctCycle:  3,
	LastCcctCycle:   10,
	CcctCyclesStage: 2,
	FilterWidth:     1,
	Peak:            0,
	Model:           models.ModelLinear,
}

// bumpCycle returns n ICA samples with voltage rising 10 mV per sample and a
// charge increment that peaks around the middle of the cycle.
func bumpCycle(batteryID, n int, v0 float64) []models.IcaSample {
	out := make([]models.IcaSample, n)
	var q float64
	for i := 0; i < n; i++ {
		d := float64(i-n/2) / 3
		q += 0.01 + 0.05*math.Exp(-d*d)
		out[i] = models.IcaSample{
			BatteryID: batteryID,
			Voltage:   v0 + 0.01*float64(i),
			Charge:    q,
		}
	}
	return out
}

// linearDecay returns CCCT samples with overall charge following
// nominal*(1 - k*t) at t = 1..n.
func linearDecay(batteryID, n int, nominal, k float64) []models.CcctSample {
	out := make([]models.CcctSample, n)
	for i := range out {
		t := float64(i + 1)
		out[i] = models.CcctSample{BatteryID: batteryID, ElapsedTime: t, OverallCharge: nominal * (1 - k*t)}
	}
	return out
}
