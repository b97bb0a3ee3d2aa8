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
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nvtienanh/metagate/internal/handlers"
	"github.com/nvtienanh/metagate/internal/infrastructure/auth"
	"github.com/nvtienanh/metagate/internal/infrastructure/config"
	"github.com/nvtienanh/metagate/internal/infrastructure/database"
	"github.com/nvtienanh/metagate/internal/infrastructure/logger"
	"github.com/nvtienanh/metagate/internal/infrastructure/metrics"
	"github.com/nvtienanh/metagate/internal/repositories/postgres"
	"github.com/nvtienanh/metagate/internal/services"
	"github.com/nvtienanh/metagate/internal/services/visibility"
	"github.com/nvtienanh/metagate/pkg/cache/memorycache"
)

const defaultEnv = "dev"

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pg.Close()

	zapLogger.Info("Connected to database",
		zap.String("user", cfg.Database.User),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database))

	// Initialize repositories
	entityRepo := postgres.NewPostgresEntityRepository(pg.DB)
	permissionRepo := postgres.NewPostgresPermissionRepository(pg.DB)

	// Initialize metrics
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter(collector)
	recorder := metrics.NewDecisionRecorder(collector, exporter)

	// Initialize services
	evaluator := visibility.NewEvaluator()

	var metadataService *services.MetadataService
	if cfg.Cache.Enabled {
		snapshotCache := memorycache.New(&memorycache.Config{
			MaxEntries: cfg.Cache.MaxEntries,
			DefaultTTL: time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		})
		defer snapshotCache.Close()
		collector.SetCache(snapshotCache)

		metadataService = services.NewMetadataServiceWithCache(
			entityRepo,
			evaluator,
			snapshotCache,
			time.Duration(cfg.Cache.TTLMinutes)*time.Minute,
		)
	} else {
		metadataService = services.NewMetadataService(entityRepo, evaluator)
	}
	metadataService.SetDecisionRecorder(recorder)

	entityService := services.NewEntityService(entityRepo)
	jwtService := auth.NewJWTService(&cfg.Auth)

	// Assemble HTTP surface
	router := handlers.NewRouter(&handlers.RouterConfig{
		Logger:          zapLogger,
		JWTService:      jwtService,
		PermissionRepo:  permissionRepo,
		MetadataHandler: handlers.NewMetadataHandler(metadataService),
		EntityHandler:   handlers.NewEntityHandler(entityService),
		HealthHandler:   handlers.NewHealthHandler(pg),
		Collector:       collector,
		Exporter:        exporter,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Metrics endpoint runs on its own port
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	// Refresh exported gauges periodically
	gaugeTicker := time.NewTicker(10 * time.Second)
	defer gaugeTicker.Stop()
	go func() {
		for range gaugeTicker.C {
			exporter.Update()
		}
	}()

	serverErrors := make(chan error, 2)
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		zapLogger.Info("Metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		zapLogger.Fatal("Server error", zap.Error(err))
	case sig := <-sigChan:
		zapLogger.Info("Received signal, initiating graceful shutdown", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Warn("HTTP server shutdown error", zap.Error(err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			zapLogger.Warn("Metrics server shutdown error", zap.Error(err))
		}

		if err := pg.Close(); err != nil {
			zapLogger.Warn("Error closing database connection", zap.Error(err))
		}

		zapLogger.Info("Shutdown complete")
	}
}
