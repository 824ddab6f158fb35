package analysis

import "math"

// kernelTruncate is the kernel half-width in standard deviations.
const kernelTruncate = 4.0

// gaussianKernel returns normalized weights for offsets -radius..radius.
func gaussianKernel(sigma float64) []float64 {
	radius := int(kernelTruncate*sigma + 0.5)
	weights := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		weights[i+radius] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// reflectIndex mirrors an out-of-range index about the sequence edges
// (d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// Smooth applies a Gaussian filter of the given width (sigma, in samples).
// The result has the same length as values. A non-positive width returns a copy.
func Smooth(values []float64, width int) []float64 {
	out := make([]float64, len(values))
	if width <= 0 || len(values) == 0 {
		copy(out, values)
		return out
	}

	kernel := gaussianKernel(float64(width))
	radius := len(kernel) / 2
	n := len(values)
	for i := range values {
		var acc float64
		for k, w := range kernel {
			acc += w * values[reflectIndex(i+k-radius, n)]
		}
		out[i] = acc
	}
	return out
}
