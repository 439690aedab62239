package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChaseRain/coverstudio/internal/api"
	"github.com/ChaseRain/coverstudio/internal/infra/config"
	"github.com/ChaseRain/coverstudio/internal/infra/httpclient"
	"github.com/ChaseRain/coverstudio/internal/infra/limiter"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/export"
	"github.com/ChaseRain/coverstudio/internal/service/imagegen"
	"github.com/ChaseRain/coverstudio/internal/service/orchestrator"
	"github.com/ChaseRain/coverstudio/internal/service/storage"
	"github.com/ChaseRain/coverstudio/internal/service/studio"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	// Init HTTP client
	httpClient := httpclient.New(httpclient.Options{
		Timeout:    time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.HTTPClient.MaxRetries,
	})

	// Init limiter
	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)

	// Init services
	generator, err := imagegen.NewBackend(cfg.ImageGen.Backend, cfg.ImageGen.BaseURL, cfg.ImageGen.KeySource(), httpClient, zapLogger)
	if err != nil {
		log.Fatalf("failed to init image generator: %v", err)
	}
	storageSvc, err := storage.New(storage.Options{
		Type:     cfg.Storage.Type,
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
		S3: storage.S3Options{
			Endpoint:        cfg.Storage.S3.Endpoint,
			Region:          cfg.Storage.S3.Region,
			Bucket:          cfg.Storage.S3.Bucket,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			PublicURL:       cfg.Storage.S3.PublicURL,
			PathStyle:       cfg.Storage.S3.PathStyle,
			Prefix:          cfg.Storage.S3.Prefix,
		},
	}, zapLogger)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	exporter := export.New(storageSvc, cfg.Export.Brand, zapLogger)

	// Init orchestrator and studio
	orch := orchestrator.New(generator, lim, zapLogger, orchestrator.Options{
		Model:        cfg.ImageGen.Model,
		DefaultTitle: cfg.Studio.DefaultTitle,
	})
	ctrl := studio.NewController(orch, cfg.Studio.HistoryCapacity, zapLogger)

	// Init router
	routerOpts := api.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Storage.Type == storage.TypeLocal {
		routerOpts.FilesURL = cfg.Storage.BaseURL
		routerOpts.FilesPath = cfg.Storage.BasePath
	}
	router := api.NewRouter(ctrl, exporter, zapLogger, routerOpts)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr, "backend", cfg.ImageGen.Backend, "storage", cfg.Storage.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
