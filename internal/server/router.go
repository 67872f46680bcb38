package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"github.com/platformwatch/evidence/internal/config"
	"github.com/platformwatch/evidence/internal/evidence"
	"github.com/platformwatch/evidence/internal/metrics"
	"github.com/platformwatch/evidence/internal/report"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config          config.Config
	DB              *pgxpool.Pool
	ObjectStore     *minio.Client
	EvidenceService *evidence.Service
	ReportService   *report.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	metrics.InitMetrics()
	router.Use(metrics.Middleware())
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	registerHealthRoutes(router, deps)

	if deps.EvidenceService != nil {
		evidence.RegisterRoutes(router, deps.EvidenceService)
	}

	api := router.Group("/v1")
	if deps.ReportService != nil && deps.EvidenceService != nil {
		report.RegisterRoutes(api, deps.ReportService, deps.EvidenceService)
	}

	return router
}
