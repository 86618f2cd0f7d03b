package ml

import (
	"fmt"
	"sync"
)

// stubRuntime is an in-process Runtime for tests: fixed logits per window or
// a canned error.
type stubRuntime struct {
	loaded bool
	logits []float64 // one row, repeated per window
	err    error
}

func (r *stubRuntime) Loaded() bool { return r != nil && r.loaded }

func (r *stubRuntime) Forward(batch [][][]float64) ([][]float64, error) {
	if !r.Loaded() {
		return nil, fmt.Errorf("stub runtime not loaded")
	}
	if r.err != nil {
		return nil, r.err
	}
	out := make([][]float64, len(batch))
	for i := range out {
		row := make([]float64, len(r.logits))
		copy(row, r.logits)
		out[i] = row
	}
	return out, nil
}

// MockMetrics implements MetricsInterface for tests.
type MockMetrics struct {
	mu          sync.Mutex
	predictions int
	failures    int
	latencies   int
	windows     []float64
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) FailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) LatencyObserve(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func (m *MockMetrics) WindowsObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, v)
}

func (m *MockMetrics) Predictions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions
}

func (m *MockMetrics) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}
