package summary

import (
	"fmt"

	"github.com/epeers/portools/internal/models"
)

// Stage identifies where in the fold a SummaryError happened
type Stage string

const (
	StageLotTotalCost Stage = "lot_total_cost"
	StageGroupCost    Stage = "group_cost"
)

// SummaryError wraps the *models.CurrencyError that stopped a summary
type SummaryError struct {
	PortfolioID uint32
	Stage       Stage
	Symbol      string
	Cause       error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("failed to summarize portfolio %d at %s for %s: %v", e.PortfolioID, e.Stage, e.Symbol, e.Cause)
}

func (e *SummaryError) Unwrap() error {
	return e.Cause
}

// Summarize folds the portfolio's lots into one GroupSummary per key.
// The working unit is taken from the first lot; a lot in another unit
// fails the whole summary with a unit mismatch.
func Summarize[K ~string](p *models.Portfolio, classify Classifier[K]) (models.PortfolioSummary[K], error) {
	groups := make(map[K]models.GroupSummary)
	if len(p.Lots) == 0 {
		return models.PortfolioSummary[K]{ID: p.ID, GroupToSummary: groups}, nil
	}

	unit := p.Lots[0].CostBasis().Unit()
	for _, lot := range p.Lots {
		total, err := lot.TotalCost()
		if err != nil {
			return models.PortfolioSummary[K]{}, &SummaryError{PortfolioID: p.ID, Stage: StageLotTotalCost, Symbol: lot.Symbol(), Cause: err}
		}

		key := classify(lot)
		group, ok := groups[key]
		if !ok {
			group = models.NewGroupSummary(models.ZeroCurrency(unit))
		}
		cost, err := group.Cost.Add(total)
		if err != nil {
			return models.PortfolioSummary[K]{}, &SummaryError{PortfolioID: p.ID, Stage: StageGroupCost, Symbol: lot.Symbol(), Cause: err}
		}
		groups[key] = models.NewGroupSummary(cost)
	}

	return models.PortfolioSummary[K]{ID: p.ID, GroupToSummary: groups}, nil
}
