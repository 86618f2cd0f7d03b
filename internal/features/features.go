// Package features derives the fixed-order feature vector the classical
// model was fitted on: six time-domain statistics per channel followed by
// four frequency-band powers per channel. The order is part of the training
// contract; any deviation silently invalidates the model.
package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	timeStats = 6
	numBands  = 4
	// maxSegment caps the Welch segment length at min(256, windowLen/2).
	maxSegment = 256
)

// Band is a named frequency range, lower bound inclusive, upper exclusive.
type Band struct {
	Name   string
	Lo, Hi float64
}

// Bands are the clinical EEG bands the classical model was trained with,
// in feature order.
var Bands = [numBands]Band{
	{"delta", 0.5, 4},
	{"theta", 4, 8},
	{"alpha", 8, 13},
	{"beta", 13, 30},
}

// VectorLen is the feature vector length for a window with chans channels.
func VectorLen(chans int) int { return chans * (timeStats + numBands) }

// Extract computes the feature vector for one window (channels x time)
// sampled at rate Hz. Pure function of the window contents.
func Extract(window [][]float64, rate float64) []float64 {
	out := make([]float64, 0, VectorLen(len(window)))

	for _, sig := range window {
		min, max := sig[0], sig[0]
		for _, v := range sig[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		out = append(out,
			stat.Mean(sig, nil),
			stat.PopStdDev(sig, nil),
			max,
			min,
			max-min,
			lineLength(sig),
		)
	}

	for _, sig := range window {
		nperseg := len(sig) / 2
		if nperseg > maxSegment {
			nperseg = maxSegment
		}
		freqs, psd := Welch(sig, rate, nperseg)
		for _, b := range Bands {
			out = append(out, bandPower(freqs, psd, b))
		}
	}

	return out
}

// lineLength is the sum of absolute first differences, a cheap measure of
// signal complexity that discriminates well on seizure activity.
func lineLength(sig []float64) float64 {
	var sum float64
	for i := 1; i < len(sig); i++ {
		sum += math.Abs(sig[i] - sig[i-1])
	}
	return sum
}

// bandPower is the mean PSD value over the band. An empty band yields 0.
func bandPower(freqs, psd []float64, b Band) float64 {
	var sum float64
	var n int
	for i, f := range freqs {
		if f >= b.Lo && f < b.Hi {
			sum += psd[i]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
