package eeg

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Preprocessor turns a raw Signal into model-ready windows. The zero value is
// not usable; construct with NewPreprocessor.
type Preprocessor struct {
	rate    float64
	chans   int
	samples int
}

// NewPreprocessor returns a preprocessor bound to the training contract
// (200 Hz, 18 channels, 2000-sample windows).
func NewPreprocessor() Preprocessor {
	return Preprocessor{rate: TargetRate, chans: TargetChannels, samples: WindowSamples}
}

// Windows runs the full preprocessing chain and returns the extracted
// windows, shape (n, chans, samples). A recording shorter than one window
// yields an empty slice; callers decide whether that is an error.
func (p Preprocessor) Windows(s Signal) [][][]float64 {
	data := s.Data
	if s.Rate != p.rate {
		data = resampleAll(data, ResampledLength(s.Samples(), s.Rate, p.rate))
	}
	data = fitChannels(data, p.chans)
	normalize(data)
	return segment(data, p.samples)
}

func resampleAll(data [][]float64, n int) [][]float64 {
	out := make([][]float64, len(data))
	for i, ch := range data {
		out[i] = Resample(ch, n)
	}
	return out
}

// fitChannels forces the channel count to target: a systematic down-sample of
// channel identities over evenly spaced indices when there are too many, zero
// padding when there are too few.
func fitChannels(data [][]float64, target int) [][]float64 {
	n := len(data)
	if n == target {
		return data
	}
	out := make([][]float64, target)
	if n > target {
		for i, idx := range SelectIndices(n, target) {
			out[i] = data[idx]
		}
		return out
	}
	copy(out, data)
	width := len(data[0])
	for i := n; i < target; i++ {
		out[i] = make([]float64, width)
	}
	return out
}

// SelectIndices spans [0, n-1] inclusive with target evenly spaced positions
// rounded to the nearest integer.
func SelectIndices(n, target int) []int {
	idx := make([]int, target)
	if target == 1 {
		return idx
	}
	step := float64(n-1) / float64(target-1)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}

// normalize z-scores each channel in place. Constant channels (zero standard
// deviation) divide by 1 and come out all zero.
func normalize(data [][]float64) {
	for _, ch := range data {
		mean := stat.Mean(ch, nil)
		std := stat.PopStdDev(ch, nil)
		if std == 0 {
			std = 1
		}
		for i := range ch {
			ch[i] = (ch[i] - mean) / std
		}
	}
}

// segment cuts data into windows of length size with 50% overlap. The final
// partial window is dropped.
func segment(data [][]float64, size int) [][][]float64 {
	total := len(data[0])
	step := size / 2
	var windows [][][]float64
	for start := 0; start+size <= total; start += step {
		win := make([][]float64, len(data))
		for c, ch := range data {
			win[c] = ch[start : start+size]
		}
		windows = append(windows, win)
	}
	return windows
}
