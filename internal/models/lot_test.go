package models_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/epeers/portools/internal/models"
	"github.com/shopspring/decimal"
)

func fixtureLot(t *testing.T) models.Lot {
	t.Helper()
	lot, err := models.NewLot("Taxable", "VOO", time.Date(2023, 3, 27, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(6), models.MustCurrency("300.64", models.USD))
	if err != nil {
		t.Fatalf("failed to build fixture lot: %v", err)
	}
	return lot
}

func TestParseLot_Valid(t *testing.T) {
	lot, err := models.ParseLot("Taxable", "VOO", "2023/03/27", "6", "300.64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lot.Equal(fixtureLot(t)) {
		t.Errorf("expected %+v, got %+v", fixtureLot(t), lot)
	}
}

func TestNewLot_TrimsWhitespace(t *testing.T) {
	lot, err := models.NewLot(" Taxable ", " VOO ", time.Date(2023, 3, 27, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(6), models.MustCurrency("300.64", models.USD))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lot.Account() != "Taxable" || lot.Symbol() != "VOO" {
		t.Errorf("expected trimmed account/symbol, got %q/%q", lot.Account(), lot.Symbol())
	}
}

func TestParseLot_Invalid(t *testing.T) {
	tests := []struct {
		name                             string
		account, symbol, date, qty, cost string
		field                            string
		reason                           models.Reason
	}{
		{"date wrong format", "Taxable", "VOO", "2023-03-27", "6", "300.64", "date", models.ReasonParseDateError},
		{"quantity not a number", "Taxable", "VOO", "2023/03/27", "not a number", "300.64", "quantity", models.ReasonParseDecimalError},
		{"cost basis not a number", "Taxable", "VOO", "2023/03/27", "6", "not a number", "cost_basis", models.ReasonParseMoneyError},
		{"empty account", "", "VOO", "2023/03/27", "6", "300.64", "account", models.ReasonMustHaveLongerLen},
		{"long symbol", "Taxable", "VOOVOO", "2023/03/27", "6", "300.64", "symbol", models.ReasonMustHaveShorterLen},
		{"zero quantity", "Taxable", "VOO", "2023/03/27", "0", "300.64", "quantity", models.ReasonMustBePositive},
		{"negative quantity", "Taxable", "VOO", "2023/03/27", "-1", "300.64", "quantity", models.ReasonMustBePositive},
		{"zero cost basis", "Taxable", "VOO", "2023/03/27", "6", "0", "cost_basis", models.ReasonMustBePositive},
		{"negative cost basis", "Taxable", "VOO", "2023/03/27", "6", "-1", "cost_basis", models.ReasonMustBePositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.ParseLot(tt.account, tt.symbol, tt.date, tt.qty, tt.cost)
			var invalid *models.Invalid
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *Invalid, got %v", err)
			}
			if invalid.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, invalid.Field)
			}
			if invalid.Reason != tt.reason {
				t.Errorf("expected reason %s, got %s", tt.reason, invalid.Reason)
			}
		})
	}
}

func TestNewLot_AccountTooLong(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	_, err := models.NewLot(string(long), "VOO", time.Now(), decimal.NewFromInt(1), models.MustCurrency("1", models.USD))
	var invalid *models.Invalid
	if !errors.As(err, &invalid) || invalid.Reason != models.ReasonMustHaveShorterLen {
		t.Fatalf("expected MustHaveShorterLen, got %v", err)
	}
}

func TestNewLot_MissingCostBasis(t *testing.T) {
	_, err := models.NewLot("Taxable", "VOO", time.Now(), decimal.NewFromInt(1), models.Currency{})
	var invalid *models.Invalid
	if !errors.As(err, &invalid) || invalid.Reason != models.ReasonRequired {
		t.Fatalf("expected Required, got %v", err)
	}
}

func TestLotTotalCost(t *testing.T) {
	total, err := fixtureLot(t).TotalCost()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(models.MustCurrency("1803.84", models.USD)) {
		t.Errorf("expected 1803.84 USD, got %s", total)
	}
}

func TestPortfolioJSON_RoundTripsThroughValidation(t *testing.T) {
	p := models.Portfolio{ID: 7, Lots: []models.Lot{fixtureLot(t)}}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded models.Portfolio
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ID != 7 || len(decoded.Lots) != 1 || !decoded.Lots[0].Equal(p.Lots[0]) {
		t.Errorf("decoded portfolio mismatch: %s", data)
	}

	bad := []byte(`{"id":1,"lots":[{"account":"A","symbol":"VOO","date_acquired":"2023-03-27","quantity":"-1","cost_basis":{"amount":"1","unit":"USD"}}]}`)
	if err := json.Unmarshal(bad, &decoded); !errors.Is(err, models.ErrInvalid) {
		t.Errorf("expected validation error for negative quantity, got %v", err)
	}
}

func TestNewGroupSummary_PanicsOnNegativeCost(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for negative cost")
		}
	}()
	models.NewGroupSummary(models.MustCurrency("-1", models.USD))
}
