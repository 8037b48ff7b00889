package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/artifact"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/config"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/events"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/handler"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/middleware"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/pipeline"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/repository"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("Lumina Analytics", "version", Version, "build_time", BuildTime, "git_commit", GitCommit)
	if cfg.UsingDefaultSecret() {
		appLog.Warn("⚠️  SECRET_KEY is not set, tokens are signed with the built-in development key")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.New(cfg.Database.URL, cfg.Database.MaxConnections, cfg.Database.MaxIdleConnections)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		appLog.Fatal("Failed to migrate database", "error", err)
	}
	appLog.Info("✅ Connected to database", "driver", repo.Driver(), "pgvector", repo.VectorColumn())

	// Event publishing
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			appLog.Warn("⚠️  NATS unavailable, prediction events are disabled", "url", cfg.Events.NATSURL, "error", err)
		} else {
			publisher = natsPublisher
			appLog.Info("✅ Publishing events to NATS", "subject", natsPublisher.CompletedSubject())
		}
	}
	defer publisher.Close()

	// Load the model bundle and build the inference pipeline
	paths := artifact.Paths{
		Model:           cfg.Artifacts.ModelPath,
		Encoders:        cfg.Artifacts.EncodersPath,
		Metadata:        cfg.Artifacts.MetadataPath,
		NeighborhoodMap: cfg.Artifacts.NeighborhoodMapPath,
	}

	var (
		predictor     *pipeline.Pipeline
		neighborhoods map[string][]string
		modelVersion  string
	)
	bundle, err := artifact.Load(paths)
	if err == nil {
		modelVersion = bundle.Version()
		neighborhoods = bundle.NeighborhoodMap
	}
	drift := service.NewDriftMonitor(modelVersion, publisher, appLog)
	if err == nil {
		predictor, err = pipeline.FromBundle(bundle, pipeline.Options{
			CurrencySymbol: cfg.Prediction.CurrencySymbol,
			Observer:       drift,
		})
	}
	if err != nil {
		if cfg.Artifacts.Required {
			appLog.Fatal("Failed to load model artifacts", "dir", cfg.Artifacts.ModelDir, "error", err)
		}
		appLog.Warn("⚠️  Model artifacts unavailable, /predict will return 503", "dir", cfg.Artifacts.ModelDir, "error", err)
	} else {
		appLog.Info("✅ Model loaded",
			"version", modelVersion,
			"features", predictor.Schema(),
			"trees", len(bundle.Model.Trees),
		)
	}

	// Initialize services
	predictionService := service.NewPredictionService(predictor, repo, service.PredictionServiceOptions{
		Publisher:       publisher,
		Drift:           drift,
		NeighborhoodMap: neighborhoods,
		HistoryLimit:    cfg.Prediction.HistoryLimit,
	}, appLog)

	var verifier service.IdentityVerifier
	if cfg.Auth.GoogleClientID != "" {
		verifier = service.NewGoogleVerifier(cfg.Auth.GoogleClientID, cfg.Auth.GoogleCertsURL, appLog)
	} else {
		appLog.Warn("⚠️  GOOGLE_CLIENT_ID is not set, Google login is disabled")
	}

	authService, err := service.NewAuthService(repo, service.AuthOptions{
		SecretKey: cfg.Auth.SecretKey,
		Algorithm: cfg.Auth.Algorithm,
		TokenTTL:  cfg.Auth.TokenTTL,
	}, verifier, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize auth service", "error", err)
	}

	appLog.Info("✅ Services initialized")

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLog))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if cfg.Server.AllowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	handler.RegisterRoutes(router, handler.Routes{
		Prediction: handler.NewPredictionHandler(predictionService),
		Auth:       handler.NewAuthHandler(authService),
		System: handler.NewSystemHandler(handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		}, predictionService, drift, repo),
		Guard: middleware.NewAuthMiddleware(authService),
	})

	// Serve the frontend build, if configured
	setupStaticFiles(router, cfg.Server.StaticDir, appLog)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		appLog.Info("🚀 Starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	snapshot := drift.Snapshot()
	appLog.Info("✅ Server stopped",
		"predictions_served", snapshot.PredictionsServed,
		"predictions_failed", snapshot.PredictionsFailed,
	)
}
