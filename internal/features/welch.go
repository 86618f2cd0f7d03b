package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Welch estimates the one-sided power spectral density of x using Welch's
// method: mean-detrended, Hann-windowed segments with 50% overlap, averaged
// periodograms, density scaling. Frequencies run 0..rate/2 in steps of
// rate/nperseg. The parameters mirror the defaults the training pipeline
// used, which is what makes the band powers comparable to the fitted model.
func Welch(x []float64, rate float64, nperseg int) (freqs, psd []float64) {
	if nperseg > len(x) {
		nperseg = len(x)
	}
	if nperseg < 2 {
		return nil, nil
	}

	window := hann(nperseg)
	var winPower float64
	for _, w := range window {
		winPower += w * w
	}
	scale := 1 / (rate * winPower)

	step := nperseg - nperseg/2
	fft := fourier.NewFFT(nperseg)
	bins := nperseg/2 + 1

	psd = make([]float64, bins)
	seg := make([]float64, nperseg)
	var count int
	for start := 0; start+nperseg <= len(x); start += step {
		copy(seg, x[start:start+nperseg])
		detrend(seg)
		for i := range seg {
			seg[i] *= window[i]
		}
		coeffs := fft.Coefficients(nil, seg)
		for i, c := range coeffs {
			p := (real(c)*real(c) + imag(c)*imag(c)) * scale
			// One-sided spectrum: interior bins carry the energy of
			// their negative-frequency mirror as well.
			if i != 0 && !(nperseg%2 == 0 && i == bins-1) {
				p *= 2
			}
			psd[i] += p
		}
		count++
	}
	if count == 0 {
		return nil, nil
	}
	for i := range psd {
		psd[i] /= float64(count)
	}

	freqs = make([]float64, bins)
	for i := range freqs {
		freqs[i] = float64(i) * rate / float64(nperseg)
	}
	return freqs, psd
}

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// detrend removes the segment mean in place.
func detrend(seg []float64) {
	var mean float64
	for _, v := range seg {
		mean += v
	}
	mean /= float64(len(seg))
	for i := range seg {
		seg[i] -= mean
	}
}
