package ml

import "fmt"

// Ensemble is the reconciled verdict of the two models.
type Ensemble struct {
	BiotPrediction     string  `json:"biot_prediction"`
	BiotConfidence     float64 `json:"biot_confidence"`
	RFPrediction       string  `json:"rf_prediction"`
	RFConfidence       float64 `json:"rf_confidence"`
	EnsemblePrediction string  `json:"ensemble_prediction"`
	EnsembleConfidence float64 `json:"ensemble_confidence"`
	Agreement          bool    `json:"agreement"`
	ConfidenceSource   string  `json:"confidence_source"`
}

// Reconcile combines the deep and classical verdicts. Matching labels
// (including both "unknown") average the confidences; otherwise the model
// with the strictly higher confidence wins, and an exact tie goes to the
// classical model.
func Reconcile(deep, classical *Verdict) *Ensemble {
	e := &Ensemble{
		BiotPrediction: deep.Prediction,
		BiotConfidence: deep.Confidence,
		RFPrediction:   classical.Prediction,
		RFConfidence:   classical.Confidence,
	}

	switch {
	case deep.Prediction == classical.Prediction:
		e.Agreement = true
		e.EnsemblePrediction = deep.Prediction
		e.EnsembleConfidence = round4((deep.Confidence + classical.Confidence) / 2)
		e.ConfidenceSource = "Both models agree"
	case deep.Confidence > classical.Confidence:
		e.EnsemblePrediction = deep.Prediction
		e.EnsembleConfidence = deep.Confidence
		e.ConfidenceSource = fmt.Sprintf("BIOT (%.2f%%) > RF (%.2f%%)", deep.Confidence*100, classical.Confidence*100)
	default:
		// Ties land here on purpose: classical wins exact ties.
		e.EnsemblePrediction = classical.Prediction
		e.EnsembleConfidence = classical.Confidence
		e.ConfidenceSource = fmt.Sprintf("RF (%.2f%%) > BIOT (%.2f%%)", classical.Confidence*100, deep.Confidence*100)
	}
	return e
}
