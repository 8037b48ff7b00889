package training

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/artifact"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
)

// Options configures one training run
type Options struct {
	Preprocess PreprocessOptions
	Forest     ForestOptions
	TestSize   float64
	// Now stamps the run; defaults to time.Now
	Now func() time.Time
}

// DefaultOptions returns the production training settings
func DefaultOptions() Options {
	return Options{
		Preprocess: DefaultPreprocessOptions(),
		Forest:     DefaultForestOptions(),
		TestSize:   0.2,
	}
}

// Trainer turns a raw dataset into a versioned artifact bundle
type Trainer struct {
	opts Options
	log  *logger.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(opts Options, log *logger.Logger) *Trainer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Trainer{
		opts: opts,
		log:  log.With("service", "Trainer"),
	}
}

// Train cleans ds, encodes it with the serving feature builder, fits the
// forest on the training split and scores it on the rest.
func (t *Trainer) Train(ctx context.Context, ds *Dataset) (*artifact.Bundle, error) {
	prep, err := Preprocess(ds, t.opts.Preprocess)
	if err != nil {
		return nil, err
	}
	t.log.Info("Preprocessed dataset",
		"rows", prep.Rows,
		"dropped", prep.Dropped,
		"target", prep.TargetColumn,
		"features", prep.FeatureNames,
	)

	x, err := Encode(prep)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := Split(len(x), t.opts.TestSize, t.opts.Forest.Seed)
	start := time.Now()
	forest, err := FitForest(ctx, pick(x, trainIdx), pick(prep.Targets, trainIdx), t.opts.Forest)
	if err != nil {
		return nil, fmt.Errorf("failed to fit forest: %w", err)
	}
	metrics, err := Evaluate(forest, pick(x, testIdx), pick(prep.Targets, testIdx))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate forest: %w", err)
	}
	t.log.Info("Trained forest",
		"trees", len(forest.Trees),
		"train_rows", len(trainIdx),
		"test_rows", len(testIdx),
		"mae", metrics.MAE,
		"r2", metrics.R2,
		"elapsed", time.Since(start).String(),
	)

	ceiling := prep.PriceCeiling
	if math.IsInf(ceiling, 0) {
		ceiling = 0
	}

	trainedAt := t.opts.Now().UTC()
	version := artifact.NewVersion(trainedAt)
	return &artifact.Bundle{
		Metadata: artifact.Metadata{
			Version:         version,
			FeatureNames:    prep.FeatureNames,
			TargetColumn:    prep.TargetColumn,
			SizeFeature:     prep.SizeFeature,
			NumericFill:     prep.NumericFill,
			CategoricalFill: prep.CategoricalFill,
			Training: &artifact.TrainingReport{
				Rows:         prep.Rows,
				DroppedRows:  prep.Dropped,
				TrainRows:    len(trainIdx),
				TestRows:     len(testIdx),
				Trees:        t.opts.Forest.Trees,
				MaxDepth:     t.opts.Forest.MaxDepth,
				MinLeaf:      t.opts.Forest.MinLeaf,
				Seed:         t.opts.Forest.Seed,
				MAE:          metrics.MAE,
				R2:           metrics.R2,
				PriceCeiling: ceiling,
			},
			TrainedAt: trainedAt,
		},
		Model:           forest,
		Encoders:        prep.Classes,
		NeighborhoodMap: BuildNeighborhoodMap(ds, "city", "neighborhood"),
	}, nil
}

// Encode builds the feature matrix with the same builder the service uses
func Encode(prep *Prepared) ([][]float64, error) {
	bank, err := features.NewBank(prep.Classes)
	if err != nil {
		return nil, fmt.Errorf("failed to fit encoders: %w", err)
	}
	schema, err := features.NewSchema(prep.FeatureNames, bank, prep.SizeFeature)
	if err != nil {
		return nil, err
	}
	builder, err := features.NewBuilder(schema, bank)
	if err != nil {
		return nil, err
	}

	x := make([][]float64, len(prep.Records))
	for i, rec := range prep.Records {
		vec, anomalies := builder.Build(rec)
		if len(anomalies) > 0 {
			return nil, fmt.Errorf("row %d: %s %q is %s", i, anomalies[0].Feature, anomalies[0].Value, anomalies[0].Kind)
		}
		x[i] = vec
	}
	return x, nil
}
