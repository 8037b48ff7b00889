package pipeline

import (
	"errors"
	"fmt"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/artifact"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/utils"
)

// ErrServiceUnavailable is returned when no pipeline was loaded
var ErrServiceUnavailable = errors.New("prediction service unavailable")

// Observer receives the field-level fallbacks of every prediction
type Observer interface {
	Observe(a features.Anomaly)
}

// Options configures a pipeline
type Options struct {
	CurrencySymbol string
	Observer       Observer
	Version        string
}

// Result is one prediction
type Result struct {
	Value     float64
	Formatted string
	Vector    []float64
	Anomalies []features.Anomaly
}

// Pipeline is an immutable inference context: schema, encoder bank and model
// from one training run. It is safe for concurrent use.
type Pipeline struct {
	schema   *features.Schema
	bank     *features.Bank
	builder  *features.Builder
	engine   *inference.Engine
	symbol   string
	observer Observer
	version  string
}

// New assembles a pipeline. The model's input width is checked per request by
// the engine, so a mismatched model surfaces as ErrInferenceFailure.
func New(schema *features.Schema, bank *features.Bank, model inference.Regressor, opts Options) (*Pipeline, error) {
	builder, err := features.NewBuilder(schema, bank)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, inference.ErrModelUnavailable
	}

	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = utils.DefaultCurrencySymbol
	}

	return &Pipeline{
		schema:   schema,
		bank:     bank,
		builder:  builder,
		engine:   inference.NewEngine(model),
		symbol:   symbol,
		observer: opts.Observer,
		version:  opts.Version,
	}, nil
}

// FromBundle builds a pipeline from a loaded artifact bundle
func FromBundle(b *artifact.Bundle, opts Options) (*Pipeline, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: no bundle", artifact.ErrArtifactMissing)
	}

	bank, err := features.NewBank(b.Encoders)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", artifact.ErrArtifactMismatch, err)
	}
	schema, err := features.NewSchema(b.Metadata.FeatureNames, bank, b.Metadata.SizeFeature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", artifact.ErrArtifactMismatch, err)
	}
	if b.Model == nil {
		return nil, inference.ErrModelUnavailable
	}

	if opts.Version == "" {
		opts.Version = b.Version()
	}
	return New(schema, bank, b.Model, opts)
}

// Predict runs encode -> infer -> format for one request
func (p *Pipeline) Predict(rec features.Record) (*Result, error) {
	if p == nil {
		return nil, ErrServiceUnavailable
	}

	vec, anomalies := p.builder.Build(rec)
	if p.observer != nil {
		for _, a := range anomalies {
			p.observer.Observe(a)
		}
	}

	value, err := p.engine.Predict(vec)
	if err != nil {
		return nil, err
	}

	return &Result{
		Value:     value,
		Formatted: utils.FormatCurrency(p.symbol, value),
		Vector:    vec,
		Anomalies: anomalies,
	}, nil
}

// KnownCategories returns the trained classes of a categorical feature
func (p *Pipeline) KnownCategories(feature string) []string {
	if p == nil {
		return nil
	}
	return p.bank.KnownCategories(feature)
}

// Version returns the training run id
func (p *Pipeline) Version() string {
	if p == nil {
		return ""
	}
	return p.version
}

// Schema returns the ordered feature names
func (p *Pipeline) Schema() []string {
	if p == nil {
		return nil
	}
	return p.schema.Names()
}
