package metrics

// Wrapper adapts Metrics to the small interface the ml package consumes,
// which avoids a prometheus dependency inside the prediction pipeline.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc() {
	w.m.Predictions.Inc()
}

func (w *Wrapper) FailuresInc() {
	w.m.Failures.Inc()
}

func (w *Wrapper) LatencyObserve(v float64) {
	w.m.PredictLatency.Observe(v)
}

func (w *Wrapper) WindowsObserve(v float64) {
	w.m.WindowsPerSignal.Observe(v)
}
