package summary_test

import (
	"testing"

	"github.com/epeers/portools/internal/models"
	"github.com/epeers/portools/internal/summary"
)

func TestGetAssetClass(t *testing.T) {
	table := summary.DefaultAssetClassTable()
	tests := []struct {
		symbol string
		want   models.AssetClass
	}{
		{"VOO", models.AssetClassUsStocks},
		{"  voo  ", models.AssetClassUsStocks},
		{"VNQ", models.AssetClassUsRealEstate},
		{"VNQI", models.AssetClassIntlRealEstate},
		{"vea", models.AssetClassIntlStocks},
		{"BND", models.AssetClassUsBonds},
		{"BNDX", models.AssetClassIntlBonds},
		{"SCHB", models.AssetClassUnknown},
		{"", models.AssetClassUnknown},
	}
	for _, tt := range tests {
		if got := table.GetAssetClass(tt.symbol); got != tt.want {
			t.Errorf("GetAssetClass(%q) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}

func TestNewAssetClassTable_CopiesInput(t *testing.T) {
	input := map[string]models.AssetClass{" schb ": models.AssetClassUsStocks}
	table := summary.NewAssetClassTable(input)
	input["VOO"] = models.AssetClassIntlBonds

	if got := table.GetAssetClass("SCHB"); got != models.AssetClassUsStocks {
		t.Errorf("expected SCHB to be UsStocks, got %s", got)
	}
	if got := table.GetAssetClass("VOO"); got != models.AssetClassUnknown {
		t.Errorf("expected later changes to the input map to be ignored, got %s", got)
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", table.Len())
	}
}

func TestBySymbol(t *testing.T) {
	lot := newLot(t, " voo ", 1, "1", models.USD)
	if got := summary.BySymbol(lot); got != "VOO" {
		t.Errorf("expected 'VOO', got %q", got)
	}
}
