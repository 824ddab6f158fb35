package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"battery_analysis/internal/models"

	"gonum.org/v1/gonum/mat"
)

// Family returns the canonical model family and polynomial degree for a
// configured model name. Unknown names fall back to cubic.
func Family(name string) (string, int) {
	switch name {
	case models.ModelLinear:
		return models.ModelLinear, 1
	case models.ModelQuadratic:
		return models.ModelQuadratic, 2
	default:
		return models.ModelCubic, 3
	}
}

// Fit is a least-squares polynomial SOC(t) model.
type Fit struct {
	Family       string    `json:"family"`
	Degree       int       `json:"degree"`
	Coefficients []float64 `json:"coefficients"` // ascending powers of t
	RSS          float64   `json:"rss"`
}

// Leading returns the coefficient of the highest-degree term.
func (f Fit) Leading() float64 { return f.Coefficients[f.Degree] }

// Eval returns the model value at t.
func (f Fit) Eval(t float64) float64 {
	var y float64
	for k := f.Degree; k >= 0; k-- {
		y = y*t + f.Coefficients[k]
	}
	return y
}

// FitSOC fits SOC(t) with the polynomial family named by model. Times are
// rescaled to [-1, 1] for the solve; the returned coefficients are in real time.
func FitSOC(times, soc []float64, model string) (Fit, error) {
	family, degree := Family(model)
	n, k := len(times), degree+1
	if len(soc) != n {
		return Fit{}, fmt.Errorf("%w: %d times for %d soc values", ErrFitFailure, n, len(soc))
	}
	if n < k {
		return Fit{}, fmt.Errorf("%w: %s model needs %d points, have %d", ErrFitFailure, family, k, n)
	}

	var scale float64
	for _, t := range times {
		scale = math.Max(scale, math.Abs(t))
	}
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return Fit{}, fmt.Errorf("%w: elapsed times carry no spread", ErrFitFailure)
	}

	a := mat.NewDense(n, k, nil)
	for i, t := range times {
		s := t / scale
		p := 1.0
		for j := 0; j < k; j++ {
			a.Set(i, j, p)
			p *= s
		}
	}
	b := mat.NewVecDense(n, append([]float64(nil), soc...))

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return Fit{}, fmt.Errorf("%w: ill-conditioned system (cond %.3g)", ErrFitFailure, float64(cond))
		}
		return Fit{}, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}

	var resid mat.VecDense
	resid.MulVec(a, &x)
	resid.SubVec(b, &resid)

	coef := make([]float64, k)
	for j := range coef {
		coef[j] = x.AtVec(j) / math.Pow(scale, float64(j))
		if math.IsNaN(coef[j]) || math.IsInf(coef[j], 0) {
			return Fit{}, fmt.Errorf("%w: non-finite coefficient c%d", ErrFitFailure, j)
		}
	}
	return Fit{Family: family, Degree: degree, Coefficients: coef, RSS: mat.Dot(&resid, &resid)}, nil
}

// StopTime inverts a fit to the time the threshold is crossed:
// StopThreshold / leading coefficient, then the square root for quadratic
// and the cube root for cubic models.
func StopTime(f Fit) (float64, error) {
	c := f.Leading()
	if c == 0 {
		return 0, fmt.Errorf("%w: leading coefficient is zero", ErrFitFailure)
	}
	t := StopThreshold / c
	switch f.Degree {
	case 1:
	case 2:
		if t < 0 {
			return 0, fmt.Errorf("%w: square root of negative %.6g", ErrFitFailure, t)
		}
		t = math.Sqrt(t)
	default:
		if t < 0 {
			return 0, fmt.Errorf("%w: cube root of negative %.6g", ErrFitFailure, t)
		}
		t = math.Cbrt(t)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: stop time is not finite", ErrFitFailure)
	}
	return t, nil
}

// sortedSeries returns (elapsed time, SOC) pairs ordered by elapsed time.
func sortedSeries(samples []models.CcctSample) ([]float64, []float64) {
	sorted := append([]models.CcctSample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ElapsedTime < sorted[j].ElapsedTime })
	times := make([]float64, len(sorted))
	soc := make([]float64, len(sorted))
	for i, s := range sorted {
		times[i] = s.ElapsedTime
		soc[i] = s.SOC
	}
	return times, soc
}

// PredictStopTime runs the full degradation analysis on in-memory samples.
func PredictStopTime(samples []models.CcctSample, p models.Parameters) (Fit, float64, error) {
	if len(samples) != p.LastCcctCycle {
		return Fit{}, 0, fmt.Errorf("%w: fit needs %d ccct samples, have %d", ErrInsufficientData, p.LastCcctCycle, len(samples))
	}
	times, soc := sortedSeries(samples)
	fit, err := FitSOC(times, soc, p.Model)
	if err != nil {
		return Fit{}, 0, err
	}
	t, err := StopTime(fit)
	if err != nil {
		return fit, 0, err
	}
	return fit, t, nil
}

// DegradationModel predicts and stores a battery's stop-time.
type DegradationModel struct {
	store Store
}

func NewDegradationModel(store Store) *DegradationModel {
	return &DegradationModel{store: store}
}

// EstimateStopTime fits the CCCT history once exactly LastCcctCycle samples
// are stored. The error is non-nil only for storage failures.
func (m *DegradationModel) EstimateStopTime(ctx context.Context, batteryID int) (Outcome, error) {
	b, err := m.store.Battery(ctx, batteryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load battery %d: %w", batteryID, err)
	}
	if b.NominalCharge == 0 {
		return notApplied(OpStopTime, batteryID, fmt.Errorf("%w: nominal charge unknown", ErrInsufficientData)), nil
	}
	samples, err := m.store.CcctSamples(ctx, batteryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load ccct samples for battery %d: %w", batteryID, err)
	}

	_, t, err := PredictStopTime(samples, b.Parameters)
	if err != nil {
		return notApplied(OpStopTime, batteryID, err), nil
	}
	if err := m.store.SaveStopTime(ctx, batteryID, t); err != nil {
		return Outcome{}, fmt.Errorf("save stop time for battery %d: %w", batteryID, err)
	}
	return applied(OpStopTime, batteryID, t), nil
}
