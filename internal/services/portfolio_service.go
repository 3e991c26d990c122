package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portools/internal/cache"
	"github.com/epeers/portools/internal/metrics"
	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/repository"
	"github.com/epeers/portools/internal/summary"
	log "github.com/sirupsen/logrus"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrSummaryNotFound   = errors.New("summary not found")
	ErrUnknownView       = errors.New("unknown view")
	ErrTooManyLots       = errors.New("too many lots")
)

// PortfolioService handles portfolio uploads and reads of derived views
type PortfolioService struct {
	portfolioRepo repository.PortfolioRepository
	summaryRepo   repository.SummaryRepository
	cache         *cache.MemoryCache
	classes       summary.AssetClassTable
	maxNumLots    int
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(portfolioRepo repository.PortfolioRepository, summaryRepo repository.SummaryRepository, memCache *cache.MemoryCache, classes summary.AssetClassTable, maxNumLots int) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		summaryRepo:   summaryRepo,
		cache:         memCache,
		classes:       classes,
		maxNumLots:    maxNumLots,
	}
}

// PutPortfolio replaces the portfolio stored under id with lots.
// The derived views catch up asynchronously through the change feed.
// Symbols the asset class table does not know are reported as warnings on ctx.
func (s *PortfolioService) PutPortfolio(ctx context.Context, id uint32, lots []models.Lot) (*models.Portfolio, error) {
	defer metrics.TrackTime("put_portfolio", time.Now())

	if len(lots) > s.maxNumLots {
		return nil, fmt.Errorf("%w: %d lots exceeds the limit of %d", ErrTooManyLots, len(lots), s.maxNumLots)
	}
	p := &models.Portfolio{ID: id, Lots: lots}
	if err := s.portfolioRepo.PutPortfolio(ctx, p); err != nil {
		return nil, err
	}
	s.cache.InvalidatePortfolio(id)
	s.warnUnknownAssetClasses(ctx, lots)
	log.WithFields(log.Fields{"portfolio_id": id, "num_lots": len(lots)}).Info("portfolio stored")
	return p, nil
}

func (s *PortfolioService) warnUnknownAssetClasses(ctx context.Context, lots []models.Lot) {
	seen := make(map[string]struct{})
	for _, lot := range lots {
		symbol := summary.BySymbol(lot)
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		if s.classes.GetAssetClass(symbol) == models.AssetClassUnknown {
			AddWarning(ctx, models.Warning{
				Code:    models.WarnUnknownAssetClass,
				Message: fmt.Sprintf("%s has no asset class and is summarized under %s", symbol, models.AssetClassUnknown),
			})
		}
	}
}

// GetPortfolio retrieves a portfolio by ID
func (s *PortfolioService) GetPortfolio(ctx context.Context, id uint32) (*models.Portfolio, error) {
	p, err := s.portfolioRepo.GetPortfolio(ctx, id)
	if errors.Is(err, repository.ErrPortfolioNotFound) {
		return nil, ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetSummary reads one derived view through the cache
func (s *PortfolioService) GetSummary(ctx context.Context, id uint32, viewName string) (*models.SummaryDocument, error) {
	view, ok := models.ParseViewKind(viewName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, viewName)
	}
	if doc, ok := s.cache.GetSummary(id, view); ok {
		return doc, nil
	}

	doc, err := s.summaryRepo.GetSummary(ctx, id, view)
	if errors.Is(err, repository.ErrSummaryNotFound) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cache.SetSummary(doc)
	return doc, nil
}
