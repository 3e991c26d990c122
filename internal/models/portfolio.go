package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ResumeToken is an opaque change feed position
type ResumeToken []byte

// Portfolio is the full set of lots held under one caller-assigned id.
// It is replaced wholesale on every upload.
type Portfolio struct {
	ID   uint32 `json:"id"`
	Lots []Lot  `json:"lots"`
}

// AssetClass is the grouping key of the asset class view
type AssetClass string

const (
	AssetClassIntlBonds      AssetClass = "IntlBonds"
	AssetClassUsBonds        AssetClass = "UsBonds"
	AssetClassIntlRealEstate AssetClass = "IntlRealEstate"
	AssetClassUsRealEstate   AssetClass = "UsRealEstate"
	AssetClassUsStocks       AssetClass = "UsStocks"
	AssetClassIntlStocks     AssetClass = "IntlStocks"
	AssetClassUnknown        AssetClass = "Unknown"
)

// AssetClasses lists every member of the closed AssetClass set
var AssetClasses = []AssetClass{
	AssetClassIntlBonds,
	AssetClassUsBonds,
	AssetClassIntlRealEstate,
	AssetClassUsRealEstate,
	AssetClassUsStocks,
	AssetClassIntlStocks,
	AssetClassUnknown,
}

// ParseAssetClass returns false for names outside the closed set
func ParseAssetClass(s string) (AssetClass, bool) {
	for _, c := range AssetClasses {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// GroupSummary aggregates the cost of the lots in one group
type GroupSummary struct {
	Cost Currency `json:"cost"`
}

// NewGroupSummary panics on a negative cost; the summarizer never produces one.
func NewGroupSummary(cost Currency) GroupSummary {
	if cost.amount.IsNegative() {
		panic(fmt.Sprintf("group summary cost must not be negative: %s", cost))
	}
	return GroupSummary{Cost: cost}
}

// PortfolioSummary maps each group key of one view to its aggregate
type PortfolioSummary[K ~string] struct {
	ID             uint32             `json:"id"`
	GroupToSummary map[K]GroupSummary `json:"group_to_summary"`
}

// ViewKind names a derived view
type ViewKind string

const (
	ViewAssetClass ViewKind = "asset_class"
	ViewSymbol     ViewKind = "symbol"
)

// ViewKinds lists the views maintained by the pipeline
var ViewKinds = []ViewKind{ViewAssetClass, ViewSymbol}

// ParseViewKind returns false for unknown view names
func ParseViewKind(s string) (ViewKind, bool) {
	for _, v := range ViewKinds {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// SummaryDocument is the persisted form of a PortfolioSummary, keyed by (ID, View)
type SummaryDocument struct {
	ID             uint32                  `json:"id"`
	View           ViewKind                `json:"view"`
	GroupToSummary map[string]GroupSummary `json:"group_to_summary"`
}

// Document converts the summary to its persisted form for view
func (s PortfolioSummary[K]) Document(view ViewKind) *SummaryDocument {
	groups := make(map[string]GroupSummary, len(s.GroupToSummary))
	for k, g := range s.GroupToSummary {
		groups[string(k)] = g
	}
	return &SummaryDocument{ID: s.ID, View: view, GroupToSummary: groups}
}

// Equal compares documents using numeric decimal equality
func (d *SummaryDocument) Equal(o *SummaryDocument) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.ID != o.ID || d.View != o.View || len(d.GroupToSummary) != len(o.GroupToSummary) {
		return false
	}
	for k, g := range d.GroupToSummary {
		og, ok := o.GroupToSummary[k]
		if !ok || !g.Cost.Equal(og.Cost) {
			return false
		}
	}
	return true
}

// MustCurrency is a helper for fixtures and tables of known-good values
func MustCurrency(amount string, unit string) Currency {
	c, err := NewCurrency(decimal.RequireFromString(amount), unit)
	if err != nil {
		panic(err)
	}
	return c
}

// Operation is the kind of write a change feed event reports
type Operation string

const (
	OperationInsert  Operation = "insert"
	OperationReplace Operation = "replace"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationOther   Operation = "other"
)

// ParseOperation maps a change stream operationType onto the closed set
func ParseOperation(s string) Operation {
	switch op := Operation(s); op {
	case OperationInsert, OperationReplace, OperationUpdate, OperationDelete:
		return op
	}
	return OperationOther
}
