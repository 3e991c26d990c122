// @title portools API
// @version 1.0
// @description Upload portfolios of lots and read their derived cost summaries.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/portools/config"
	"github.com/epeers/portools/internal/app"
	"github.com/epeers/portools/internal/cache"
	"github.com/epeers/portools/internal/handlers"
	"github.com/epeers/portools/internal/logging"
	"github.com/epeers/portools/internal/services"
	"github.com/epeers/portools/internal/stream"
	"github.com/epeers/portools/internal/summary"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize stores
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to stores: %v", err)
	}
	defer stores.Close(context.Background())

	table, err := cfg.AssetClassTable()
	if err != nil {
		log.Fatalf("Failed to load asset classes: %v", err)
	}

	// The memory backend has no external change feed, so the pipeline runs here
	pipelineDone := make(chan error, 1)
	if stores.Log != nil {
		pipeline := stream.New(stream.Config{
			ConsumerID: cfg.ConsumerID,
			Views:      summary.DefaultViews(table),
		}, stores.Checkpoints, stores.Summaries, stores.Opener)
		go func() { pipelineDone <- pipeline.Run(ctx) }()
	}

	// Initialize services and handlers
	memCache := cache.NewMemoryCache(cfg.SummaryCacheTTL)
	portfolioSvc := services.NewPortfolioService(stores.Portfolios, stores.Summaries, memCache, table, cfg.MaxNumLots)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioSvc)
	router := handlers.NewRouter(portfolioHandler, cfg.MaxFileSize)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-pipelineDone:
		log.Errorf("In-process pipeline stopped: %v", err)
		exitCode = 1
	}
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		exitCode = 1
	}

	log.Info("Server exited")
	if exitCode != 0 {
		stores.Close(context.Background())
		os.Exit(exitCode)
	}
}
