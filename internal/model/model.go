// Package model wraps the two pretrained artifacts the service depends on.
// The deep sequence model is opaque: a batch of windows goes in, one row of
// logits per window comes out, and everything about the architecture stays
// behind the Runtime interface. The classical model is a serialized random
// forest evaluated in-process.
//
// Both artifacts are loaded once at startup and are read-only afterwards, so
// they are safe for unsynchronized concurrent use.
package model

// Runtime is the opaque deep-model contract.
type Runtime interface {
	// Loaded reports whether the weights were loaded successfully. A
	// runtime that failed to load stays unavailable for the process
	// lifetime; it is never retried.
	Loaded() bool

	// Forward runs one batch (windows x channels x samples) through the
	// model and returns one logit row per window.
	Forward(batch [][][]float64) ([][]float64, error)
}
