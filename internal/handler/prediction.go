package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/inference"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/middleware"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/model"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/pipeline"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/service"

	"github.com/gin-gonic/gin"
)

// PredictionHandler handles prediction and history HTTP requests
type PredictionHandler struct {
	predictionService *service.PredictionService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
	}
}

// Predict handles POST /predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp, err := h.predictionService.Predict(
		c.Request.Context(),
		middleware.CurrentUser(c),
		&req,
		middleware.GetRequestID(c),
	)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrServiceUnavailable), errors.Is(err, inference.ErrModelUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Model is not loaded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /history
func (h *PredictionHandler) History(c *gin.Context) {
	items, err := h.predictionService.History(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// HistoryDetail handles GET /history/:id
func (h *PredictionHandler) HistoryDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prediction id"})
		return
	}

	detail, err := h.predictionService.HistoryDetail(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prediction: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Options handles GET /options
func (h *PredictionHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionService.Options())
}
