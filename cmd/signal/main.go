package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videonet/internal/core/services"
	httphandlers "videonet/internal/handlers/http"
	"videonet/internal/infrastructure/analysis"
	"videonet/internal/infrastructure/middleware"
	"videonet/internal/infrastructure/monitoring"
	signalws "videonet/internal/infrastructure/signal"
	"videonet/pkg/config"
	"videonet/pkg/logger"
	"videonet/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "videonet-signal",
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Core signaling state
	registry := services.NewRegistry()
	quality := services.NewQuality()

	collector := monitoring.NewPrometheusCollector()
	hub := signalws.NewHub(cfg.Signal.SendBuffer, collector, log)
	presence := services.NewPresence(registry, hub, log)

	wsServer := signalws.NewWebSocketServer(registry, presence, quality, hub, collector, log)
	wsServer.SetPingInterval(cfg.Signal.PingInterval)
	wsServer.SetPongTimeout(cfg.Signal.PongTimeout)
	wsServer.SetMaxMessageSize(cfg.Signal.MaxMessageSize)

	// Asset store
	assets, err := services.NewAssetStore(cfg.Storage.UploadDir, log)
	if err != nil {
		log.Fatalw("failed to initialize asset store", "error", err)
	}

	// HTTP handlers
	fileHandler := httphandlers.NewFileHandler(assets, collector)
	roomHandler := httphandlers.NewRoomHandler(registry, presence, quality)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	router.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	fileHandler.SetupRoutes(router)
	roomHandler.SetupRoutes(router)

	if cfg.Analysis.Enabled {
		analysisClient := analysis.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout, log)
		httphandlers.NewAnalysisHandler(analysisClient).SetupRoutes(router)
		log.Infow("analysis proxy enabled", "base_url", cfg.Analysis.BaseURL)
	}

	// Health check endpoints
	router.GET("/health", gin.WrapF(wsServer.HealthCheck))

	router.GET("/ready", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ready",
			"timestamp":   time.Now(),
			"uptime":      time.Since(startTime).String(),
			"connections": registry.Count(),
			"rooms":       presence.RoomCount(),
		})
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting VideoNet signaling server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down VideoNet signaling server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("tracer shutdown error", "error", err)
	}

	log.Info("Shutdown complete")
}
