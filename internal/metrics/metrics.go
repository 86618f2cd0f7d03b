// Package metrics provides Prometheus metrics for the EEG analysis service:
// prediction throughput and latency, window counts per request, model
// availability and streaming session gauges, exposed on the metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Prediction pipeline
	Predictions      prometheus.Counter   // Total predictions completed across both models
	Failures         prometheus.Counter   // Total pipeline failures converted to error records
	PredictLatency   prometheus.Histogram // Per-model prediction latency in seconds
	WindowsPerSignal prometheus.Histogram // Windows extracted per recording

	// Model availability
	DeepModelLoaded      prometheus.Gauge // 1 when the deep model is loaded
	ClassicalModelLoaded prometheus.Gauge // 1 when the forest artifact is loaded

	// Serving
	RequestsTotal  prometheus.Counter // HTTP prediction requests received
	StreamSessions prometheus.Gauge   // Active websocket streaming sessions
	ErrorsTotal    prometheus.Counter // Request-level errors (bad payloads, ...)
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, which keeps tests
// isolated from the global state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "eeg_predictions_total",
			Help: "Total predictions completed across both models",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "eeg_prediction_failures_total",
			Help: "Total pipeline failures converted to error records",
		}),
		PredictLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eeg_predict_latency_seconds",
			Help:    "Per-model prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		WindowsPerSignal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eeg_windows_per_signal",
			Help:    "Windows extracted per recording",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
		}),
		DeepModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eeg_deep_model_loaded",
			Help: "Whether the deep model is loaded (1) or absent (0)",
		}),
		ClassicalModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eeg_classical_model_loaded",
			Help: "Whether the forest artifact is loaded (1) or absent (0)",
		}),
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "eeg_requests_total",
			Help: "HTTP prediction requests received",
		}),
		StreamSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eeg_stream_sessions",
			Help: "Active websocket streaming sessions",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "eeg_errors_total",
			Help: "Request-level errors",
		}),
	}
}
