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
	"github.com/epeers/portools/internal/logging"
	"github.com/epeers/portools/internal/stream"
	"github.com/epeers/portools/internal/summary"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code; non-zero asks the supervisor for a restart
func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		return 1
	}
	if err := logging.Setup(cfg.LogLevel); err != nil {
		log.Errorf("Failed to configure logging: %v", err)
		return 1
	}
	if cfg.SinkBackend == config.BackendMemory {
		log.Error("The memory backend runs its pipeline inside portools-service; use mongo or postgres here")
		return 1
	}
	table, err := cfg.AssetClassTable()
	if err != nil {
		log.Errorf("Failed to load asset classes: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Errorf("Failed to connect to stores: %v", err)
		return 1
	}
	defer stores.Close(context.Background())

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
	go func() {
		log.Infof("Serving metrics on port %s", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	pipeline := stream.New(stream.Config{
		ConsumerID: cfg.ConsumerID,
		Views:      summary.DefaultViews(table),
	}, stores.Checkpoints, stores.Summaries, stores.Opener)

	log.WithFields(log.Fields{"consumer": cfg.ConsumerID, "asset_classes": table.Len()}).Info("Starting pipeline")
	if err := pipeline.Run(ctx); err != nil {
		log.Errorf("Pipeline stopped: %v", err)
		return 1
	}
	log.Info("Pipeline exited")
	return 0
}
