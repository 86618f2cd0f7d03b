package ml

// MetricsInterface defines the metrics hooks the predictors report to.
// Implementations must be safe for concurrent use; a nil interface disables
// reporting.
type MetricsInterface interface {
	PredictionsInc()
	FailuresInc()
	LatencyObserve(float64)
	WindowsObserve(float64)
}
