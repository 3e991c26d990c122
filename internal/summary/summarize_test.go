package summary_test

import (
	"errors"
	"testing"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/summary"
	"github.com/shopspring/decimal"
)

func newLot(t *testing.T, symbol string, quantity int64, cost, unit string) models.Lot {
	t.Helper()
	lot, err := models.NewLot("Taxable", symbol, time.Date(2023, 3, 27, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(quantity), models.MustCurrency(cost, unit))
	if err != nil {
		t.Fatalf("failed to build lot: %v", err)
	}
	return lot
}

func assertGroupCost[K ~string](t *testing.T, s models.PortfolioSummary[K], key K, want string) {
	t.Helper()
	g, ok := s.GroupToSummary[key]
	if !ok {
		t.Fatalf("expected group %q in %+v", key, s.GroupToSummary)
	}
	if !g.Cost.Equal(models.MustCurrency(want, models.USD)) {
		t.Errorf("group %q: expected cost %s USD, got %s", key, want, g.Cost)
	}
}

func TestSummarize_EmptyPortfolio(t *testing.T) {
	p := &models.Portfolio{ID: 1}
	s, err := summary.Summarize[string](p, summary.BySymbol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != 1 {
		t.Errorf("expected id 1, got %d", s.ID)
	}
	if s.GroupToSummary == nil || len(s.GroupToSummary) != 0 {
		t.Errorf("expected empty non-nil group map, got %+v", s.GroupToSummary)
	}
}

func TestSummarize_SingleLot(t *testing.T) {
	p := &models.Portfolio{ID: 1, Lots: []models.Lot{newLot(t, "VOO", 6, "300.64", models.USD)}}
	s, err := summary.Summarize[string](p, summary.BySymbol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.GroupToSummary) != 1 {
		t.Fatalf("expected 1 group, got %d", len(s.GroupToSummary))
	}
	assertGroupCost(t, s, "VOO", "1803.84")
}

func TestSummarize_SharedSymbol(t *testing.T) {
	p := &models.Portfolio{ID: 1, Lots: []models.Lot{
		newLot(t, "VOO", 1, "100.00", models.USD),
		newLot(t, "VOO", 2, "200.00", models.USD),
	}}
	s, err := summary.Summarize[string](p, summary.BySymbol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.GroupToSummary) != 1 {
		t.Fatalf("expected 1 group, got %d", len(s.GroupToSummary))
	}
	assertGroupCost(t, s, "VOO", "500.00")
}

func TestSummarize_ThreeLotsWithSharedSymbol(t *testing.T) {
	p := &models.Portfolio{ID: 1, Lots: []models.Lot{
		newLot(t, "VOO", 1, "100.00", models.USD),
		newLot(t, "VTI", 2, "200.00", models.USD),
		newLot(t, "voo", 3, "300.00", models.USD),
	}}
	s, err := summary.Summarize[string](p, summary.BySymbol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.GroupToSummary) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(s.GroupToSummary))
	}
	assertGroupCost(t, s, "VOO", "1000.00")
	assertGroupCost(t, s, "VTI", "400.00")
}

func TestSummarize_ByAssetClassKeepsDistinctKeysSeparate(t *testing.T) {
	table := summary.DefaultAssetClassTable()
	p := &models.Portfolio{ID: 1, Lots: []models.Lot{
		newLot(t, "VOO", 1, "100.00", models.USD),
		newLot(t, "BND", 2, "50.00", models.USD),
		newLot(t, "VTI", 1, "10.00", models.USD),
	}}
	s, err := summary.Summarize[models.AssetClass](p, table.ByAssetClass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.GroupToSummary) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(s.GroupToSummary))
	}
	assertGroupCost(t, s, models.AssetClassUsStocks, "110.00")
	assertGroupCost(t, s, models.AssetClassUsBonds, "100.00")
}

func TestSummarize_UnitMismatch(t *testing.T) {
	p := &models.Portfolio{ID: 1, Lots: []models.Lot{
		newLot(t, "VOO", 1, "100.00", models.USD),
		newLot(t, "VOO", 1, "100", models.JPY),
	}}
	_, err := summary.Summarize[string](p, summary.BySymbol)
	var serr *summary.SummaryError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SummaryError, got %v", err)
	}
	if serr.Stage != summary.StageGroupCost {
		t.Errorf("expected stage %s, got %s", summary.StageGroupCost, serr.Stage)
	}
	if !errors.Is(err, models.ErrUnitMismatch) {
		t.Errorf("expected unit mismatch cause, got %v", serr.Cause)
	}
}

func TestSummarize_LotTotalCostOverflow(t *testing.T) {
	huge, err := models.NewCurrency(models.MaxAmount, models.USD)
	if err != nil {
		t.Fatalf("failed to build currency: %v", err)
	}
	lot, err := models.NewLot("Taxable", "VOO", time.Now(), decimal.NewFromInt(2), huge)
	if err != nil {
		t.Fatalf("failed to build lot: %v", err)
	}
	_, err = summary.Summarize[string](&models.Portfolio{ID: 1, Lots: []models.Lot{lot}}, summary.BySymbol)
	var serr *summary.SummaryError
	if !errors.As(err, &serr) || serr.Stage != summary.StageLotTotalCost {
		t.Fatalf("expected lot total cost error, got %v", err)
	}
	if !errors.Is(err, models.ErrOverflow) {
		t.Errorf("expected overflow cause, got %v", serr.Cause)
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	a := newLot(t, "VOO", 1, "100.10", models.USD)
	b := newLot(t, "BND", 3, "70.05", models.USD)
	c := newLot(t, "VOO", 2, "99.99", models.USD)
	table := summary.DefaultAssetClassTable()

	first, err := summary.Summarize[models.AssetClass](&models.Portfolio{ID: 1, Lots: []models.Lot{a, b, c}}, table.ByAssetClass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := summary.Summarize[models.AssetClass](&models.Portfolio{ID: 1, Lots: []models.Lot{c, a, b}}, table.ByAssetClass)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Document(models.ViewAssetClass).Equal(second.Document(models.ViewAssetClass)) {
		t.Errorf("expected equal summaries, got %+v and %+v", first, second)
	}
}

func TestDefaultViews_Compute(t *testing.T) {
	p := &models.Portfolio{ID: 9, Lots: []models.Lot{
		newLot(t, "VOO", 1, "100.00", models.USD),
		newLot(t, "BND", 2, "200.00", models.USD),
	}}
	views := summary.DefaultViews(summary.DefaultAssetClassTable())
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}

	for _, v := range views {
		doc, err := v.Compute(p)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", v.Kind(), err)
		}
		if doc.ID != 9 || doc.View != v.Kind() {
			t.Errorf("%s: unexpected document key %d/%s", v.Kind(), doc.ID, doc.View)
		}
		if len(doc.GroupToSummary) != 2 {
			t.Errorf("%s: expected 2 groups, got %d", v.Kind(), len(doc.GroupToSummary))
		}
	}
}
