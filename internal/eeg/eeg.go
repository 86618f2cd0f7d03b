// Package eeg implements the signal preprocessing stage shared by both
// predictors: resampling to the training rate, fitting the channel count,
// per-channel z-score normalization and overlapping windowing.
//
// The constants below are part of the training-time contract of the loaded
// models. Changing any of them silently invalidates predictions.
package eeg

import (
	"fmt"
)

const (
	// TargetRate is the sampling frequency (Hz) both models were trained on.
	TargetRate = 200.0
	// TargetChannels is the channel count both models expect.
	TargetChannels = 18
	// WindowSeconds is the duration of one inference window.
	WindowSeconds = 10.0
	// WindowSamples is the window length in samples at TargetRate.
	WindowSamples = int(WindowSeconds * TargetRate) // 2000
	// DefaultRate is assumed when a request does not carry a sampling
	// frequency. Compatibility fallback, callers should always supply fs.
	DefaultRate = 250.0
)

// Signal is a raw multichannel recording, channels x time.
type Signal struct {
	Data [][]float64
	Rate float64
}

// NewSignal validates request data and builds a Signal. A 1-D input becomes a
// single channel. When the first dimension is larger than the second the data
// is assumed to be time x channels and transposed. A zero rate falls back to
// DefaultRate.
func NewSignal(data [][]float64, rate float64) (Signal, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return Signal{}, fmt.Errorf("signal data is empty")
	}
	width := len(data[0])
	for i, row := range data {
		if len(row) != width {
			return Signal{}, fmt.Errorf("ragged signal data: row %d has %d samples, want %d", i, len(row), width)
		}
	}
	if len(data) > width {
		// Probably time x channels.
		data = transpose(data)
	}
	if rate <= 0 {
		rate = DefaultRate
	}
	return Signal{Data: data, Rate: rate}, nil
}

// Channels returns the channel count.
func (s Signal) Channels() int { return len(s.Data) }

// Samples returns the time-axis length.
func (s Signal) Samples() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

func transpose(data [][]float64) [][]float64 {
	rows, cols := len(data), len(data[0])
	out := make([][]float64, cols)
	for i := range out {
		out[i] = make([]float64, rows)
		for j := 0; j < rows; j++ {
			out[i][j] = data[j][i]
		}
	}
	return out
}
