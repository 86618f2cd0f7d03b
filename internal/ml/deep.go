package ml

import (
	"fmt"
	"math"
	"time"

	"eegscan/internal/eeg"
	"eegscan/internal/model"
)

// DeepPredictor runs the sequence model on preprocessed windows. The model
// itself is opaque; this type owns preprocessing, temperature-scaled softmax
// and window aggregation.
type DeepPredictor struct {
	runtime     model.Runtime
	pre         eeg.Preprocessor
	temperature float64
	metrics     MetricsInterface
}

// NewDeepPredictor wraps an opaque runtime. temperature <= 0 means 1.0.
func NewDeepPredictor(rt model.Runtime, temperature float64, metrics MetricsInterface) *DeepPredictor {
	if temperature <= 0 {
		temperature = 1.0
	}
	return &DeepPredictor{
		runtime:     rt,
		pre:         eeg.NewPreprocessor(),
		temperature: temperature,
		metrics:     metrics,
	}
}

// Loaded reports whether the underlying runtime has weights.
func (p *DeepPredictor) Loaded() bool {
	return p != nil && p.runtime != nil && p.runtime.Loaded()
}

// Predict classifies a recording. All failures come back as *ModelError;
// nothing panics across this boundary.
func (p *DeepPredictor) Predict(s eeg.Signal) (*Verdict, *ModelError) {
	return p.PredictWithTemperature(s, p.temperature)
}

// PredictWithTemperature classifies with a per-request softmax temperature.
func (p *DeepPredictor) PredictWithTemperature(s eeg.Signal, temperature float64) (verdict *Verdict, mErr *ModelError) {
	if !p.Loaded() {
		return nil, notLoaded()
	}
	if temperature <= 0 {
		temperature = p.temperature
	}

	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.LatencyObserve(time.Since(start).Seconds())
			if mErr != nil {
				p.metrics.FailuresInc()
			} else {
				p.metrics.PredictionsInc()
			}
		}
	}()

	windows := p.pre.Windows(s)
	if len(windows) == 0 {
		return nil, &ModelError{Kind: ErrEmptyWindows, Message: "No valid windows extracted"}
	}
	if p.metrics != nil {
		p.metrics.WindowsObserve(float64(len(windows)))
	}

	logits, err := p.runtime.Forward(windows)
	if err != nil {
		return nil, inferenceError(err)
	}

	perWindow := make([][]float64, len(logits))
	for i, row := range logits {
		if len(row) != NumClasses {
			return nil, inferenceError(fmt.Errorf("model produced %d logits, want %d", len(row), NumClasses))
		}
		perWindow[i] = softmax(row, temperature)
	}

	v := verdictFrom(aggregate(perWindow), classNames(), "deep_learning", SemanticsProbability, len(windows))
	v.Temperature = temperature
	return v, nil
}

// softmax applies a temperature-scaled softmax. Division by the temperature
// happens before exponentiation; temperature 1 is a no-op.
func softmax(logits []float64, temperature float64) []float64 {
	scaled := make([]float64, len(logits))
	max := math.Inf(-1)
	for i, l := range logits {
		scaled[i] = l / temperature
		if scaled[i] > max {
			max = scaled[i]
		}
	}
	var sum float64
	for i := range scaled {
		scaled[i] = math.Exp(scaled[i] - max)
		sum += scaled[i]
	}
	for i := range scaled {
		scaled[i] /= sum
	}
	return scaled
}
