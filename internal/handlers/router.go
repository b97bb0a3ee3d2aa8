package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/infrastructure/auth"
	"github.com/nvtienanh/metagate/internal/infrastructure/logger"
	"github.com/nvtienanh/metagate/internal/infrastructure/metrics"
	"github.com/nvtienanh/metagate/internal/repositories"
	"go.uber.org/zap"
)

// RouterConfig carries the dependencies of the HTTP surface.
type RouterConfig struct {
	Logger          *zap.Logger
	JWTService      *auth.JWTService
	PermissionRepo  repositories.PermissionRepository
	MetadataHandler *MetadataHandler
	EntityHandler   *EntityHandler
	HealthHandler   *HealthHandler

	// Optional metrics sinks
	Collector *metrics.Collector
	Exporter  *metrics.PrometheusExporter
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(cfg *RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(logger.RequestID())
	router.Use(logger.GinMiddleware(cfg.Logger))
	router.Use(logger.Recovery(cfg.Logger))
	if cfg.Collector != nil {
		router.Use(metrics.GinMiddleware(cfg.Collector, cfg.Exporter))
	}

	router.GET("/healthz", cfg.HealthHandler.Healthz)

	api := router.Group("/api/v1")
	api.Use(RequesterMiddleware(cfg.JWTService, cfg.PermissionRepo))
	{
		api.POST("/:class", cfg.EntityHandler.Register)
		api.DELETE("/:class/:id", cfg.EntityHandler.Remove)

		api.GET("/:class/:id/metadata", cfg.MetadataHandler.Get(entities.PartitionPublic))
		api.POST("/:class/:id/metadata", cfg.MetadataHandler.Update(entities.PartitionPublic))
		api.DELETE("/:class/:id/metadata", cfg.MetadataHandler.Delete(entities.PartitionPublic))

		api.GET("/:class/:id/private-metadata", cfg.MetadataHandler.Get(entities.PartitionPrivate))
		api.POST("/:class/:id/private-metadata", cfg.MetadataHandler.Update(entities.PartitionPrivate))
		api.DELETE("/:class/:id/private-metadata", cfg.MetadataHandler.Delete(entities.PartitionPrivate))
	}

	return router
}
