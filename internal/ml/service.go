package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"eegscan/internal/eeg"
	"eegscan/internal/model"

	"github.com/rs/zerolog/log"
)

// Artifact file names inside the models directory.
const (
	BiotWeightsFile    = "eeg_biot.onnx"
	ForestArtifactFile = "eeg_rf_model.json"
)

// Config carries what the Service needs at construction.
type Config struct {
	ModelsDir        string
	Temperature      float64
	InferenceTimeout time.Duration
	Metrics          MetricsInterface
}

// Service owns both predictors for the process lifetime. Models load once
// here; a missing or corrupt artifact leaves that predictor permanently
// absent (degraded mode) and is never retried. The service is stateless per
// request and safe for concurrent use.
type Service struct {
	deep      *DeepPredictor
	classical *ClassicalPredictor
}

// NewService loads both artifacts from cfg.ModelsDir.
func NewService(cfg Config) *Service {
	s := &Service{}

	rt := model.NewONNXRuntime(filepath.Join(cfg.ModelsDir, BiotWeightsFile), cfg.InferenceTimeout)
	if rt.Loaded() {
		s.deep = NewDeepPredictor(rt, cfg.Temperature, cfg.Metrics)
	}

	forestPath := filepath.Join(cfg.ModelsDir, ForestArtifactFile)
	if _, err := os.Stat(forestPath); err == nil {
		forest, err := model.LoadForest(forestPath)
		if err != nil {
			log.Warn().Err(err).Str("path", forestPath).Msg("forest artifact failed to load, classical predictor disabled")
		} else {
			s.classical = NewClassicalPredictor(forest, cfg.Metrics)
			log.Info().Str("path", forestPath).Int("trees", forest.NumTrees()).Bool("proba", forest.HasProba()).Msg("forest artifact loaded")
		}
	} else {
		log.Warn().Str("path", forestPath).Msg("forest artifact not found, classical predictor disabled")
	}

	return s
}

// NewServiceWith wires explicit predictors; used by tests and by callers
// that manage artifact loading themselves.
func NewServiceWith(deep *DeepPredictor, classical *ClassicalPredictor) *Service {
	return &Service{deep: deep, classical: classical}
}

// DeepLoaded reports deep-model availability.
func (s *Service) DeepLoaded() bool { return s.deep.Loaded() }

// ClassicalLoaded reports forest availability.
func (s *Service) ClassicalLoaded() bool { return s.classical.Loaded() }

// Outcome is one model's slot in a prediction result: either a verdict or a
// structured error, never both.
type Outcome struct {
	Verdict *Verdict
	Err     *ModelError
}

// MarshalJSON keeps the wire contract: a failed outcome serializes as
// {"error": ..., "prediction": null, "confidence": 0}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(struct {
			Error      string  `json:"error"`
			Prediction *string `json:"prediction"`
			Confidence float64 `json:"confidence"`
		}{Error: o.Err.Message})
	}
	return json.Marshal(o.Verdict)
}

// Result maps model names to outcomes. Comparison is present only when both
// models produced a verdict.
type Result struct {
	Biot         *Outcome  `json:"biot,omitempty"`
	RandomForest *Outcome  `json:"random_forest,omitempty"`
	Comparison   *Ensemble `json:"comparison,omitempty"`
}

// Predict runs every loaded predictor on the request data and reconciles
// the verdicts. data orientation and a missing fs are resolved by
// eeg.NewSignal; temperature <= 0 uses the configured default.
func (s *Service) Predict(data [][]float64, fs, temperature float64) *Result {
	res := &Result{}

	sig, err := eeg.NewSignal(data, fs)
	if err != nil {
		// Same malformed input, same structured answer from each side.
		if s.deep.Loaded() {
			res.Biot = &Outcome{Err: inferenceError(err)}
		}
		if s.classical.Loaded() {
			res.RandomForest = &Outcome{Err: inferenceError(err)}
		}
		return res
	}

	if s.deep.Loaded() {
		verdict, mErr := s.deep.PredictWithTemperature(sig, temperature)
		res.Biot = &Outcome{Verdict: verdict, Err: mErr}
	}
	if s.classical.Loaded() {
		verdict, mErr := s.classical.Predict(sig)
		res.RandomForest = &Outcome{Verdict: verdict, Err: mErr}
	}

	if res.Biot != nil && res.Biot.Verdict != nil && res.RandomForest != nil && res.RandomForest.Verdict != nil {
		res.Comparison = Reconcile(res.Biot.Verdict, res.RandomForest.Verdict)
	}
	return res
}
