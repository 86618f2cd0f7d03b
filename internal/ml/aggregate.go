package ml

import "math"

// Confidence semantics tags. Probability-averaged confidences and vote
// fractions share the 0-1 scale but are not otherwise comparable, so every
// verdict names which one it carries.
const (
	SemanticsProbability = "probability"
	SemanticsVote        = "vote_fraction"
)

// Verdict is one model's answer for a whole recording.
type Verdict struct {
	Prediction          string             `json:"prediction"`
	Confidence          float64            `json:"confidence"`
	BelowThreshold      bool               `json:"below_threshold"`
	Probabilities       map[string]float64 `json:"all_probabilities"`
	ModelType           string             `json:"model_type"`
	ConfidenceSemantics string             `json:"confidence_semantics"`
	Windows             int                `json:"n_windows"`
	Temperature         float64            `json:"temperature,omitempty"`
}

// aggregate averages per-window distributions arithmetically, every window
// weighted the same, and returns the averaged distribution.
func aggregate(perWindow [][]float64) []float64 {
	avg := make([]float64, len(perWindow[0]))
	for _, probs := range perWindow {
		for i, p := range probs {
			avg[i] += p
		}
	}
	for i := range avg {
		avg[i] /= float64(len(perWindow))
	}
	return avg
}

// verdictFrom turns an averaged distribution into a Verdict. names runs
// parallel to dist. The threshold override changes the label only; the
// numeric confidence and full distribution are reported regardless.
func verdictFrom(dist []float64, names []string, modelType, semantics string, windows int) *Verdict {
	best := 0
	for i, p := range dist {
		if p > dist[best] {
			best = i
		}
	}
	// Threshold on the raw value; rounding is presentation only.
	below := dist[best] < ConfidenceThreshold
	confidence := round4(dist[best])

	prediction := names[best]
	if below {
		prediction = Unknown
	}

	probs := make(map[string]float64, len(dist))
	for i, p := range dist {
		probs[names[i]] = round4(p)
	}

	return &Verdict{
		Prediction:          prediction,
		Confidence:          confidence,
		BelowThreshold:      below,
		Probabilities:       probs,
		ModelType:           modelType,
		ConfidenceSemantics: semantics,
		Windows:             windows,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// classNames returns the canonical class names in label order.
func classNames() []string {
	names := make([]string, NumClasses)
	for i := range names {
		names[i] = Classes[i]
	}
	return names
}
