package ml

import (
	"time"

	"eegscan/internal/eeg"
	"eegscan/internal/features"
	"eegscan/internal/model"
)

// ClassicalPredictor runs the random forest on per-window feature vectors.
// When the artifact carries probability estimates the aggregation matches
// the deep path (probability averaging); otherwise it falls back to a
// majority vote across windows, whose confidence is a vote fraction, not a
// probability.
type ClassicalPredictor struct {
	forest  *model.Forest
	pre     eeg.Preprocessor
	metrics MetricsInterface
}

// NewClassicalPredictor wraps a loaded forest. A nil forest yields a
// predictor that reports not-loaded.
func NewClassicalPredictor(forest *model.Forest, metrics MetricsInterface) *ClassicalPredictor {
	return &ClassicalPredictor{
		forest:  forest,
		pre:     eeg.NewPreprocessor(),
		metrics: metrics,
	}
}

// Loaded reports whether a forest artifact is present.
func (p *ClassicalPredictor) Loaded() bool {
	return p != nil && p.forest != nil
}

// Predict classifies a recording.
func (p *ClassicalPredictor) Predict(s eeg.Signal) (verdict *Verdict, mErr *ModelError) {
	if !p.Loaded() {
		return nil, notLoaded()
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
		return nil, &ModelError{Kind: ErrEmptyWindows, Message: "No valid windows"}
	}
	if p.metrics != nil {
		p.metrics.WindowsObserve(float64(len(windows)))
	}

	vectors := make([][]float64, len(windows))
	for i, win := range windows {
		vectors[i] = features.Extract(win, eeg.TargetRate)
	}

	if p.forest.HasProba() {
		return p.predictProba(vectors)
	}
	return p.predictVote(vectors)
}

func (p *ClassicalPredictor) predictProba(vectors [][]float64) (*Verdict, *ModelError) {
	perWindow := make([][]float64, len(vectors))
	for i, vec := range vectors {
		probs, err := p.forest.PredictProba(vec)
		if err != nil {
			return nil, inferenceError(err)
		}
		perWindow[i] = probs
	}

	// The distribution follows the artifact's class order, which may be a
	// subset or permutation of the canonical labels.
	names := make([]string, len(p.forest.Classes()))
	for i, label := range p.forest.Classes() {
		names[i] = ClassName(label)
	}

	return verdictFrom(aggregate(perWindow), names, "classical_ml", SemanticsProbability, len(vectors)), nil
}

// predictVote implements the fallback for artifacts without probability
// estimates: the modal label wins and confidence is its vote fraction.
func (p *ClassicalPredictor) predictVote(vectors [][]float64) (*Verdict, *ModelError) {
	votes := make(map[int]int)
	for _, vec := range vectors {
		label, err := p.forest.Predict(vec)
		if err != nil {
			return nil, inferenceError(err)
		}
		votes[label]++
	}

	modal, modalCount := 0, -1
	for label, count := range votes {
		if count > modalCount || (count == modalCount && label < modal) {
			modal, modalCount = label, count
		}
	}

	confidence := float64(modalCount) / float64(len(vectors))
	below := confidence < ConfidenceThreshold
	prediction := ClassName(modal)
	if below {
		prediction = Unknown
	}

	return &Verdict{
		Prediction:          prediction,
		Confidence:          round4(confidence),
		BelowThreshold:      below,
		Probabilities:       map[string]float64{ClassName(modal): 1.0},
		ModelType:           "classical_ml",
		ConfidenceSemantics: SemanticsVote,
		Windows:             len(vectors),
	}, nil
}
