package inference

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrModelUnavailable is returned when no model was loaded
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInferenceFailure is returned when the model cannot score a vector
	ErrInferenceFailure = errors.New("inference failure")
)

// Regressor is a trained model producing one number per feature vector
type Regressor interface {
	NumFeatures() int
	Predict(x []float64) (float64, error)
}

// Engine guards a Regressor with the input-width contract. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	model Regressor
}

// NewEngine wraps model. A nil model yields an engine that always fails with
// ErrModelUnavailable.
func NewEngine(model Regressor) *Engine {
	return &Engine{model: model}
}

// NumFeatures returns the input width the model expects, or 0 without a model
func (e *Engine) NumFeatures() int {
	if e == nil || e.model == nil {
		return 0
	}
	return e.model.NumFeatures()
}

// Predict scores x. It never substitutes a default: width mismatches,
// model errors and non-finite outputs are reported as ErrInferenceFailure.
func (e *Engine) Predict(x []float64) (float64, error) {
	if e == nil || e.model == nil {
		return 0, ErrModelUnavailable
	}

	if want := e.model.NumFeatures(); len(x) != want {
		return 0, fmt.Errorf("%w: vector has %d features, model expects %d", ErrInferenceFailure, len(x), want)
	}

	y, err := e.model.Predict(x)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInferenceFailure, err)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: model returned %v", ErrInferenceFailure, y)
	}

	return y, nil
}
