package training

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/artifact"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/pipeline"
)

func listingsCSV() string {
	cities := []string{"Mumbai", "Delhi", "Pune"}
	hoods := map[string][]string{
		"Mumbai": {"Bandra", "Andheri"},
		"Delhi":  {"Saket", "Dwarka"},
		"Pune":   {"Baner", "Kothrud"},
	}
	types := []string{"Apartment", "Villa"}

	var b strings.Builder
	b.WriteString("url,city,neighborhood,beds,baths,size,type,price,date\n")
	for i := 0; i < 60; i++ {
		city := cities[i%3]
		typ := types[i%2]
		size := 500 + 25*i
		sizeText := fmt.Sprintf("%d sqft", size)
		if i%5 == 0 {
			sizeText = fmt.Sprintf("%d-%d sqft", size-50, size+50)
		}
		price := 200000 + size*4000
		if typ == "Villa" {
			price += 1500000
		}
		beds := fmt.Sprint(1 + i%4)
		if i%7 == 0 {
			beds = ""
		}
		fmt.Fprintf(&b, "https://example.com/%d,%s,%s,%s,%d,%s,%s,%d,2025-01-%02d\n",
			i, city, hoods[city][i%2], beds, 1+i%3, sizeText, typ, price, 1+i%28)
	}
	return b.String()
}

func TestTrainer_Train(t *testing.T) {
	ds := mustRead(t, listingsCSV())
	opts := DefaultOptions()
	opts.Forest = ForestOptions{Trees: 5, MaxDepth: 8, MinLeaf: 1, Seed: 11}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	opts.Now = func() time.Time { return fixed }

	bundle, err := NewTrainer(opts, logger.NewNop()).Train(context.Background(), ds)
	if err != nil {
		t.Fatalf("Train() error: %v", err)
	}

	meta := bundle.Metadata
	wantFeatures := []string{"city", "neighborhood", "beds", "baths", "size", "type"}
	if !reflect.DeepEqual(meta.FeatureNames, wantFeatures) {
		t.Errorf("FeatureNames = %v, want %v", meta.FeatureNames, wantFeatures)
	}
	if meta.TargetColumn != "price" || meta.SizeFeature != "size" {
		t.Errorf("target = %q, size = %q", meta.TargetColumn, meta.SizeFeature)
	}
	if len(meta.Version) != 26 || !meta.TrainedAt.Equal(fixed) {
		t.Errorf("version = %q, trained_at = %v", meta.Version, meta.TrainedAt)
	}
	if !reflect.DeepEqual(bundle.Encoders["city"], []string{"Delhi", "Mumbai", "Pune"}) {
		t.Errorf("city classes = %v", bundle.Encoders["city"])
	}
	if _, ok := meta.NumericFill["beds"]; !ok {
		t.Errorf("beds fill not frozen: %v", meta.NumericFill)
	}

	report := meta.Training
	if report == nil {
		t.Fatal("Training report missing")
	}
	if report.TrainRows+report.TestRows != report.Rows-report.DroppedRows || report.TestRows == 0 {
		t.Errorf("report = %+v", report)
	}
	if !reflect.DeepEqual(bundle.NeighborhoodMap["Pune"], []string{"Baner", "Kothrud"}) {
		t.Errorf("NeighborhoodMap = %v", bundle.NeighborhoodMap)
	}
	if err := bundle.Validate(); err != nil {
		t.Fatalf("trained bundle should validate: %v", err)
	}
}

// The vector the service builds for a training row must be the row the
// forest was trained on.
func TestTrainer_ServingMatchesTraining(t *testing.T) {
	ds := mustRead(t, listingsCSV())
	opts := DefaultOptions()
	opts.Forest = ForestOptions{Trees: 4, MaxDepth: 6, Seed: 5}

	bundle, err := NewTrainer(opts, logger.NewNop()).Train(context.Background(), ds)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := artifact.Save(dir, bundle); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := artifact.Load(artifact.DefaultPaths(dir))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	p, err := pipeline.FromBundle(loaded, pipeline.Options{})
	if err != nil {
		t.Fatalf("FromBundle() error: %v", err)
	}

	prep, err := Preprocess(ds, opts.Preprocess)
	if err != nil {
		t.Fatal(err)
	}
	x, err := Encode(prep)
	if err != nil {
		t.Fatal(err)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range prep.Targets {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	for i, rec := range prep.Records {
		res, err := p.Predict(rec)
		if err != nil {
			t.Fatalf("row %d: Predict() error: %v", i, err)
		}
		if !reflect.DeepEqual(res.Vector, x[i]) {
			t.Fatalf("row %d: serving vector %v, training vector %v", i, res.Vector, x[i])
		}
		if len(res.Anomalies) != 0 {
			t.Errorf("row %d: unexpected anomalies %v", i, res.Anomalies)
		}
		if res.Value < lo || res.Value > hi {
			t.Errorf("row %d: prediction %v outside training range [%v, %v]", i, res.Value, lo, hi)
		}
	}
}
