package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 5 * time.Second

type serviceHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Aggregate reachability of every backing store. Unhealthy components are
	// reported individually rather than short-circuiting the response.
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		services := gin.H{}
		healthy := true

		if err := deps.DB.Ping(ctx); err != nil {
			healthy = false
			services["postgres"] = serviceHealth{Status: "unhealthy", Error: err.Error()}
		} else {
			services["postgres"] = serviceHealth{Status: "healthy"}
		}

		if err := checkObjectStore(ctx, deps); err != nil {
			healthy = false
			services["objectstore"] = serviceHealth{Status: "unhealthy", Error: err.Error()}
		} else {
			services["objectstore"] = serviceHealth{Status: "healthy"}
		}

		status := "healthy"
		code := http.StatusOK
		if !healthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  services,
		})
	})
}

func checkObjectStore(ctx context.Context, deps Dependencies) error {
	_, err := deps.ObjectStore.BucketExists(ctx, deps.Config.MinIO.Bucket)
	return err
}
