package summary

import (
	"strings"

	"github.com/epeers/portools/internal/models"
)

// Classifier assigns a lot to the group it is aggregated under
type Classifier[K ~string] func(lot models.Lot) K

// AssetClassTable is an immutable symbol to asset class lookup.
// Keys are stored uppercased and trimmed.
type AssetClassTable struct {
	classes map[string]models.AssetClass
}

// NewAssetClassTable copies symbols so later changes to the caller's map are not observed
func NewAssetClassTable(symbols map[string]models.AssetClass) AssetClassTable {
	classes := make(map[string]models.AssetClass, len(symbols))
	for symbol, class := range symbols {
		classes[normalizeSymbol(symbol)] = class
	}
	return AssetClassTable{classes: classes}
}

// DefaultAssetClassTable covers the funds the service was first used with
func DefaultAssetClassTable() AssetClassTable {
	return NewAssetClassTable(map[string]models.AssetClass{
		"VOO":  models.AssetClassUsStocks,
		"VTI":  models.AssetClassUsStocks,
		"VTV":  models.AssetClassUsStocks,
		"VNQ":  models.AssetClassUsRealEstate,
		"VEA":  models.AssetClassIntlStocks,
		"VEU":  models.AssetClassIntlStocks,
		"SCHF": models.AssetClassIntlStocks,
		"VNQI": models.AssetClassIntlRealEstate,
		"AGG":  models.AssetClassUsBonds,
		"BND":  models.AssetClassUsBonds,
		"VTEB": models.AssetClassUsBonds,
		"BNDX": models.AssetClassIntlBonds,
	})
}

// GetAssetClass never fails; symbols missing from the table are Unknown
func (t AssetClassTable) GetAssetClass(symbol string) models.AssetClass {
	if class, ok := t.classes[normalizeSymbol(symbol)]; ok {
		return class
	}
	return models.AssetClassUnknown
}

// Len is the number of symbols in the table
func (t AssetClassTable) Len() int {
	return len(t.classes)
}

// ByAssetClass is the classifier of the asset class view
func (t AssetClassTable) ByAssetClass(lot models.Lot) models.AssetClass {
	return t.GetAssetClass(lot.Symbol())
}

// BySymbol is the classifier of the symbol view
func BySymbol(lot models.Lot) string {
	return normalizeSymbol(lot.Symbol())
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
