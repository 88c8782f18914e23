package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"model-mirror-service/internal/adapters/primary/http/handlers"
	"model-mirror-service/internal/adapters/primary/http/middleware"
	"model-mirror-service/internal/adapters/secondary/awsclient"
	"model-mirror-service/internal/config"
	"model-mirror-service/internal/core/services"
	"model-mirror-service/internal/logger"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logger.Init(logger.Options{Level: cfg.Logger.Level, Format: cfg.Logger.Format, File: cfg.Logger.File}); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Engine identity, used for STS and the destination bucket only
	awsCfg, err := awsclient.LoadEngineConfig(context.Background(), cfg.AWS.Region)
	if err != nil {
		log.Fatalf("%v", err)
	}

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	broker := awsclient.NewCredentialBroker(awsCfg)
	sources := awsclient.NewSourceAccountFactory(awsCfg)
	dest := awsclient.NewDestinationStore(awsCfg, cfg.AWS.DestinationBucket)
	log.WithField("bucket", cfg.AWS.DestinationBucket).Info("destination store configured")

	// Core Services (Application Layer)
	scanner := services.NewCatalogScanner(services.ScanConfig{
		BucketPrefix: cfg.Source.BucketPrefix,
		KeyPrefix:    cfg.Source.KeyPrefix,
		KeySuffix:    cfg.Source.KeySuffix,
	})
	resolver := services.NewModelInfoResolver(cfg.Source.NameHyperParameter)
	executor := services.NewTransferExecutor(cfg.Transfer.StagingDir)
	mirrorSvc := services.NewMirrorService(broker, sources, dest, scanner, resolver, executor, services.MirrorOptions{
		SessionPrefix:      cfg.AWS.SessionNamePrefix,
		ResolveConcurrency: cfg.Source.ResolveConcurrency,
	})

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(mirrorSvc, cfg.Source.DefaultRegion)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	if len(cfg.Server.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/", middleware.APIKey(cfg.Server.APIKey), middleware.Timeout(cfg.Server.RequestTimeout))
	h.RegisterRoutes(api)

	if cfg.Server.APIKey == "" {
		log.Warn("API_KEY not set, requests are not authenticated")
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	// in-flight transfers may still be staging a bundle
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
