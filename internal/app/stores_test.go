package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/epeers/portools/config"
	"github.com/epeers/portools/internal/app"
	"github.com/epeers/portools/internal/models"
)

func TestOpenStores_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{SinkBackend: config.BackendMemory, FeedMaxAwait: time.Second}

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer stores.Close(ctx)

	if stores.Log == nil {
		t.Fatal("expected an in-process change log")
	}
	if err := stores.Portfolios.PutPortfolio(ctx, &models.Portfolio{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stores.Log.Len() != 1 {
		t.Errorf("expected the write to reach the change log, got %d entries", stores.Log.Len())
	}
}
