package handler

import (
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Routes bundles everything RegisterRoutes mounts
type Routes struct {
	Prediction *PredictionHandler
	Auth       *AuthHandler
	System     *SystemHandler
	Guard      *middleware.AuthMiddleware
}

// RegisterRoutes mounts the public API on r
func RegisterRoutes(r gin.IRouter, h Routes) {
	// System endpoints
	r.GET("/health", h.System.Health)
	r.GET("/version", h.System.Version)
	r.GET("/metrics", h.System.Metrics)

	// Auth endpoints
	r.POST("/register", h.Auth.Register)
	r.POST("/token", h.Auth.Token)
	r.POST("/google-login", h.Auth.GoogleLogin)
	r.GET("/me", h.Guard.RequireAuth(), h.Auth.Me)

	// Prediction endpoints
	r.POST("/predict", h.Guard.OptionalAuth(), h.Prediction.Predict)
	r.GET("/options", h.Prediction.Options)
	r.GET("/history", h.Guard.RequireAuth(), h.Prediction.History)
	r.GET("/history/:id", h.Guard.RequireAuth(), h.Prediction.HistoryDetail)
}
