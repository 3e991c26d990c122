package repository

import (
	"context"
	"errors"

	"github.com/epeers/portools/internal/models"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrSummaryNotFound   = errors.New("summary not found")
)

// PortfolioRepository stores the portfolios written by the ingestion API.
// Writes made through it are what the change feed reports.
type PortfolioRepository interface {
	PutPortfolio(ctx context.Context, p *models.Portfolio) error
	GetPortfolio(ctx context.Context, id uint32) (*models.Portfolio, error)
}

// SummaryRepository stores derived views keyed by (portfolio id, view).
// PutSummary overwrites unconditionally; the last writer wins.
type SummaryRepository interface {
	PutSummary(ctx context.Context, doc *models.SummaryDocument) error
	GetSummary(ctx context.Context, id uint32, view models.ViewKind) (*models.SummaryDocument, error)
}

// CheckpointRepository stores one resume token per consumer id.
// Implementations use the strongest read and write consistency the backend offers.
type CheckpointRepository interface {
	GetCheckpoint(ctx context.Context, consumerID string) (models.ResumeToken, error)
	PutCheckpoint(ctx context.Context, consumerID string, token models.ResumeToken) error
}
