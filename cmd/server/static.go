package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"

	"github.com/gin-gonic/gin"
)

// apiPrefixes are never answered with the SPA index
var apiPrefixes = []string{"/predict", "/history", "/options", "/register", "/token", "/google-login", "/me", "/health", "/version", "/metrics"}

// setupStaticFiles serves a built frontend from dir, falling back to
// index.html for client-side routes. An empty dir serves nothing.
func setupStaticFiles(router *gin.Engine, dir string, log *logger.Logger) {
	if dir == "" {
		log.Info("🔧 STATIC_DIR is not set, frontend should be served separately")
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		})
		return
	}

	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		log.Warn("⚠️  Frontend index.html not found", "dir", dir, "error", err)
	} else {
		log.Info("📦 Serving frontend assets", "dir", dir)
	}

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if isAPIPath(urlPath) || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		cleanPath := path.Clean("/" + urlPath)
		if cleanPath != "/" {
			file := filepath.Join(dir, filepath.FromSlash(cleanPath[1:]))
			if stat, err := os.Stat(file); err == nil && !stat.IsDir() {
				c.File(file)
				return
			}
		}

		// SPA routing
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.File(index)
	})
}

func isAPIPath(p string) bool {
	for _, prefix := range apiPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
