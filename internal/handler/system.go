package handler

import (
	"net/http"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/service"

	"github.com/gin-gonic/gin"
)

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Pinger checks a dependency
type Pinger interface {
	Ping() error
}

// SystemHandler serves health, version and drift metrics
type SystemHandler struct {
	build             BuildInfo
	predictionService *service.PredictionService
	drift             *service.DriftMonitor
	db                Pinger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(build BuildInfo, predictionService *service.PredictionService, drift *service.DriftMonitor, db Pinger) *SystemHandler {
	return &SystemHandler{
		build:             build,
		predictionService: predictionService,
		drift:             drift,
		db:                db,
	}
}

// Health handles GET /health. It reports degraded (503) when no model is
// loaded or the database does not answer.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	database := "ok"
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			database = "unreachable"
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	if !h.predictionService.Ready() {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":        status,
		"service":       "lumina-analytics",
		"model_loaded":  h.predictionService.Ready(),
		"model_version": h.predictionService.ModelVersion(),
		"database":      database,
		"version":       h.build.Version,
	})
}

// Version handles GET /version
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":       h.build.Version,
		"build_time":    h.build.BuildTime,
		"git_commit":    h.build.GitCommit,
		"model_version": h.predictionService.ModelVersion(),
	})
}

// Metrics handles GET /metrics
func (h *SystemHandler) Metrics(c *gin.Context) {
	if h.drift == nil {
		c.JSON(http.StatusOK, service.DriftSnapshot{})
		return
	}
	c.JSON(http.StatusOK, h.drift.Snapshot())
}
