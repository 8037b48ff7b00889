package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/artifact"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/training"
)

func main() {
	defaults := training.DefaultOptions()

	dataPath := flag.String("data", "real_estate_dataset.csv", "path to the listings CSV")
	outDir := flag.String("out", getEnv("MODEL_DIR", "models"), "directory to write the artifact bundle to")
	trees := flag.Int("trees", defaults.Forest.Trees, "number of trees")
	maxDepth := flag.Int("max-depth", defaults.Forest.MaxDepth, "maximum tree depth")
	minLeaf := flag.Int("min-leaf", defaults.Forest.MinLeaf, "minimum rows per leaf")
	seed := flag.Int64("seed", defaults.Forest.Seed, "random seed for bootstrap and split")
	testSize := flag.Float64("test-size", defaults.TestSize, "fraction of rows held out for evaluation")
	minPrice := flag.Float64("min-price", defaults.Preprocess.MinPrice, "drop rows priced below this")
	logLevel := flag.String("log-level", getEnv("LOG_LEVEL", "info"), "log level")
	flag.Parse()

	appLog, err := logger.New(*logLevel, "console")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := training.LoadCSV(*dataPath)
	if err != nil {
		appLog.Fatal("Failed to load dataset", "path", *dataPath, "error", err)
	}
	appLog.Info("📂 Loaded dataset", "path", *dataPath, "rows", ds.Len(), "columns", ds.Columns)

	opts := defaults
	opts.Forest.Trees = *trees
	opts.Forest.MaxDepth = *maxDepth
	opts.Forest.MinLeaf = *minLeaf
	opts.Forest.Seed = *seed
	opts.TestSize = *testSize
	opts.Preprocess.MinPrice = *minPrice

	bundle, err := training.NewTrainer(opts, appLog).Train(ctx, ds)
	if err != nil {
		appLog.Fatal("Training failed", "error", err)
	}

	if err := artifact.Save(*outDir, bundle); err != nil {
		appLog.Fatal("Failed to save artifacts", "dir", *outDir, "error", err)
	}

	report := bundle.Metadata.Training
	appLog.Info("✅ Training complete",
		"version", bundle.Version(),
		"dir", *outDir,
		"mae", report.MAE,
		"r2", report.R2,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
