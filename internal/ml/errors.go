package ml

// ErrorKind classifies pipeline failures. Every failure becomes a structured
// result record; nothing from the pipeline escapes as a panic.
type ErrorKind int

const (
	// ErrNotLoaded: the predictor was invoked without a loaded model.
	ErrNotLoaded ErrorKind = iota
	// ErrEmptyWindows: the recording was shorter than one window after
	// preprocessing.
	ErrEmptyWindows
	// ErrInference: preprocessing or inference failed (malformed shape,
	// runtime fault, ...).
	ErrInference
)

// ModelError is the failure variant of a prediction outcome.
type ModelError struct {
	Kind    ErrorKind
	Message string
}

func (e *ModelError) Error() string { return e.Message }

func notLoaded() *ModelError {
	return &ModelError{Kind: ErrNotLoaded, Message: "Model not loaded"}
}

func inferenceError(err error) *ModelError {
	return &ModelError{Kind: ErrInference, Message: err.Error()}
}
