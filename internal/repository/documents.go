package repository

import (
	"fmt"
	"math"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/shopspring/decimal"
)

const documentDateFormat = "2006-01-02"

// PortfolioDocument is the stored shape of a portfolio. Amounts are kept as
// decimal strings so no precision is lost in the round trip.
type PortfolioDocument struct {
	ID   int64         `bson:"id"`
	Lots []LotDocument `bson:"lots"`
}

type LotDocument struct {
	Account      string           `bson:"account"`
	Symbol       string           `bson:"symbol"`
	DateAcquired string           `bson:"date_acquired"`
	Quantity     string           `bson:"quantity"`
	CostBasis    CurrencyDocument `bson:"cost_basis"`
}

type CurrencyDocument struct {
	Amount string `bson:"amount"`
	Unit   string `bson:"unit"`
}

type groupSummaryDocument struct {
	Cost CurrencyDocument `bson:"cost"`
}

type summaryDocument struct {
	ID             int64                           `bson:"id"`
	View           string                          `bson:"view"`
	GroupToSummary map[string]groupSummaryDocument `bson:"group_to_summary"`
}

// NewPortfolioDocument converts a portfolio to its stored shape
func NewPortfolioDocument(p *models.Portfolio) *PortfolioDocument {
	lots := make([]LotDocument, 0, len(p.Lots))
	for _, l := range p.Lots {
		lots = append(lots, LotDocument{
			Account:      l.Account(),
			Symbol:       l.Symbol(),
			DateAcquired: l.DateAcquired().Format(documentDateFormat),
			Quantity:     l.Quantity().String(),
			CostBasis:    newCurrencyDocument(l.CostBasis()),
		})
	}
	return &PortfolioDocument{ID: int64(p.ID), Lots: lots}
}

// ToModel rebuilds the portfolio through the validating constructors
func (d *PortfolioDocument) ToModel() (*models.Portfolio, error) {
	id, err := toPortfolioID(d.ID)
	if err != nil {
		return nil, err
	}
	lots := make([]models.Lot, 0, len(d.Lots))
	for i, ld := range d.Lots {
		date, err := time.Parse(documentDateFormat, ld.DateAcquired)
		if err != nil {
			return nil, fmt.Errorf("lot %d: failed to parse date_acquired: %w", i, err)
		}
		qty, err := decimal.NewFromString(ld.Quantity)
		if err != nil {
			return nil, fmt.Errorf("lot %d: failed to parse quantity: %w", i, err)
		}
		cost, err := ld.CostBasis.toModel()
		if err != nil {
			return nil, fmt.Errorf("lot %d: %w", i, err)
		}
		lot, err := models.NewLot(ld.Account, ld.Symbol, date, qty, cost)
		if err != nil {
			return nil, fmt.Errorf("lot %d: %w", i, err)
		}
		lots = append(lots, lot)
	}
	return &models.Portfolio{ID: id, Lots: lots}, nil
}

func newCurrencyDocument(c models.Currency) CurrencyDocument {
	return CurrencyDocument{Amount: c.Amount().String(), Unit: c.Unit()}
}

func (d CurrencyDocument) toModel() (models.Currency, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return models.Currency{}, fmt.Errorf("failed to parse amount %q: %w", d.Amount, err)
	}
	return models.NewCurrency(amount, d.Unit)
}

func newSummaryDocument(doc *models.SummaryDocument) *summaryDocument {
	groups := make(map[string]groupSummaryDocument, len(doc.GroupToSummary))
	for k, g := range doc.GroupToSummary {
		groups[k] = groupSummaryDocument{Cost: newCurrencyDocument(g.Cost)}
	}
	return &summaryDocument{ID: int64(doc.ID), View: string(doc.View), GroupToSummary: groups}
}

func (d *summaryDocument) toModel() (*models.SummaryDocument, error) {
	id, err := toPortfolioID(d.ID)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]models.GroupSummary, len(d.GroupToSummary))
	for k, g := range d.GroupToSummary {
		cost, err := g.Cost.toModel()
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", k, err)
		}
		groups[k] = models.GroupSummary{Cost: cost}
	}
	return &models.SummaryDocument{ID: id, View: models.ViewKind(d.View), GroupToSummary: groups}, nil
}

func toPortfolioID(id int64) (uint32, error) {
	if id < 0 || id > math.MaxUint32 {
		return 0, fmt.Errorf("portfolio id %d out of range", id)
	}
	return uint32(id), nil
}
