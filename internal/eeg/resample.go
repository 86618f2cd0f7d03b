package eeg

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Resample converts x to n samples using Fourier-domain resampling: the
// spectrum is truncated or zero-padded to the new length and transformed
// back. This matches how the training pipeline resampled recordings, which
// is why linear interpolation is not an option here.
func Resample(x []float64, n int) []float64 {
	old := len(x)
	if n == old {
		out := make([]float64, old)
		copy(out, x)
		return out
	}
	if old == 0 || n <= 0 {
		return []float64{}
	}

	fwd := fourier.NewFFT(old)
	coeffs := fwd.Coefficients(nil, x)

	next := make([]complex128, n/2+1)
	min := old
	if n < old {
		min = n
	}
	nyq := min/2 + 1
	copy(next[:nyq], coeffs[:nyq])

	// The shared Nyquist bin needs special handling when the smaller
	// length is even: it folds two symmetric bins when shrinking and
	// splits into two when growing.
	if min%2 == 0 {
		if n < old {
			next[min/2] = complex(2*real(coeffs[min/2]), 0)
		} else {
			next[min/2] *= 0.5
		}
	}

	inv := fourier.NewFFT(n)
	out := inv.Sequence(nil, next)
	// Sequence is unnormalized; dividing by the original length combines
	// the inverse-transform 1/n with the n/old amplitude correction.
	scale := 1 / float64(old)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// ResampledLength is the output sample count when converting a recording of
// n samples from rate from to rate to.
func ResampledLength(n int, from, to float64) int {
	return int(math.Round(float64(n) * to / from))
}
