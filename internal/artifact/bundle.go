package artifact

import (
	"crypto/rand"
	"errors"
	"path/filepath"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrArtifactMissing is returned when a required artifact file is absent
	ErrArtifactMissing = errors.New("artifact missing")
	// ErrArtifactMismatch is returned when artifacts are unreadable or disagree
	ErrArtifactMismatch = errors.New("artifact mismatch")
)

// File names inside a model directory
const (
	ModelFile           = "model.json"
	EncodersFile        = "label_encoders.json"
	MetadataFile        = "metadata.json"
	NeighborhoodMapFile = "city_neighborhood_map.json"
)

// Paths locates each artifact file
type Paths struct {
	Model           string
	Encoders        string
	Metadata        string
	NeighborhoodMap string
}

// DefaultPaths returns the standard file layout under dir
func DefaultPaths(dir string) Paths {
	return Paths{
		Model:           filepath.Join(dir, ModelFile),
		Encoders:        filepath.Join(dir, EncodersFile),
		Metadata:        filepath.Join(dir, MetadataFile),
		NeighborhoodMap: filepath.Join(dir, NeighborhoodMapFile),
	}
}

// TrainingReport holds the evaluation of one training run
type TrainingReport struct {
	Rows         int     `json:"rows"`
	DroppedRows  int     `json:"dropped_rows"`
	TrainRows    int     `json:"train_rows"`
	TestRows     int     `json:"test_rows"`
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	MinLeaf      int     `json:"min_leaf"`
	Seed         int64   `json:"seed"`
	MAE          float64 `json:"mae"`
	R2           float64 `json:"r2"`
	PriceCeiling float64 `json:"price_ceiling"`
}

// Metadata declares the feature schema and the frozen preprocessing
// statistics of a training run.
type Metadata struct {
	Version         string             `json:"version"`
	FeatureNames    []string           `json:"feature_names"`
	TargetColumn    string             `json:"target_column"`
	SizeFeature     string             `json:"size_feature"`
	NumericFill     map[string]float64 `json:"numeric_fill,omitempty"`
	CategoricalFill map[string]string  `json:"categorical_fill,omitempty"`
	Training        *TrainingReport    `json:"training,omitempty"`
	TrainedAt       time.Time          `json:"trained_at"`
}

// Bundle is one versioned set of model, encoders and metadata
type Bundle struct {
	Metadata Metadata
	Model    *inference.Forest
	// Encoders maps categorical feature name to its ordered classes
	Encoders map[string][]string
	// NeighborhoodMap maps city to its known neighborhoods; UI only
	NeighborhoodMap map[string][]string
}

// Version returns the training run id shared by every file in the bundle
func (b *Bundle) Version() string {
	return b.Metadata.Version
}

// NewVersion returns a fresh, time-ordered training run id
func NewVersion(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// encodersFile is the on-disk shape of label_encoders.json
type encodersFile struct {
	Version  string              `json:"version"`
	Encoders map[string][]string `json:"encoders"`
}
