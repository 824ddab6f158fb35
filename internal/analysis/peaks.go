package analysis

import "fmt"

// Peak describes one local maximum of a smoothed dQ/dV curve.
type Peak struct {
	Index          int     `json:"index"`
	Height         float64 `json:"height"`
	Prominence     float64 `json:"prominence"`
	LeftBase       int     `json:"left_base"`
	RightBase      int     `json:"right_base"`
	RelativeHeight float64 `json:"relative_height"`
	WidthHeight    float64 `json:"width_height"` // level the width is measured at
	Left           float64 `json:"left"`         // fractional index of the left intersection
	Right          float64 `json:"right"`        // fractional index of the right intersection
}

// Width is the distance between the intersection points, in samples.
func (p Peak) Width() float64 { return p.Right - p.Left }

// localMaxima returns indices strictly greater than both neighbours.
func localMaxima(x []float64) []int {
	var out []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] > x[i-1] && x[i] > x[i+1] {
			out = append(out, i)
		}
	}
	return out
}

// prominence walks outward from peak until the curve rises above it, and
// returns the prominence with the positions of the minima on each side.
func prominence(x []float64, peak int) (float64, int, int) {
	h := x[peak]

	leftBase, leftMin := peak, h
	for i := peak; i >= 0 && x[i] <= h; i-- {
		if x[i] < leftMin {
			leftMin, leftBase = x[i], i
		}
	}

	rightBase, rightMin := peak, h
	for i := peak; i < len(x) && x[i] <= h; i++ {
		if x[i] < rightMin {
			rightMin, rightBase = x[i], i
		}
	}

	ref := leftMin
	if rightMin > ref {
		ref = rightMin
	}
	return h - ref, leftBase, rightBase
}

// intersections finds where the horizontal line at level crosses the curve
// on each side of peak, interpolating linearly between samples.
func intersections(x []float64, peak, leftBase, rightBase int, level float64) (float64, float64) {
	i := peak
	for leftBase < i && level < x[i] {
		i--
	}
	left := float64(i)
	if x[i] < level {
		left += (level - x[i]) / (x[i+1] - x[i])
	}

	i = peak
	for i < rightBase && level < x[i] {
		i++
	}
	right := float64(i)
	if x[i] < level {
		right -= (level - x[i]) / (x[i-1] - x[i])
	}
	return left, right
}

// FindPeaks detects every local maximum of x in increasing index order and
// measures its width at a per-peak relative height of prominence/height, so
// shallow and sharp peaks are measured on equal footing. A zero-height peak
// makes the relative height undefined and yields ErrDegenerateCurve.
func FindPeaks(x []float64) ([]Peak, error) {
	idx := localMaxima(x)
	peaks := make([]Peak, 0, len(idx))
	for _, i := range idx {
		h := x[i]
		if h == 0 {
			return nil, fmt.Errorf("%w: zero-height peak at index %d", ErrDegenerateCurve, i)
		}
		prom, lb, rb := prominence(x, i)
		rel := 1 - (h-prom)/h
		level := h - prom*rel
		left, right := intersections(x, i, lb, rb, level)
		peaks = append(peaks, Peak{
			Index:          i,
			Height:         h,
			Prominence:     prom,
			LeftBase:       lb,
			RightBase:      rb,
			RelativeHeight: rel,
			WidthHeight:    level,
			Left:           left,
			Right:          right,
		})
	}
	return peaks, nil
}

// selectPeak returns peaks[n] or ErrDegenerateCurve when it does not exist.
func selectPeak(peaks []Peak, n int) (Peak, error) {
	if n < 0 || n >= len(peaks) {
		return Peak{}, fmt.Errorf("%w: peak %d requested, %d detected", ErrDegenerateCurve, n, len(peaks))
	}
	return peaks[n], nil
}
