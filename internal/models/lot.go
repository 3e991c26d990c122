package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	minAccountLen = 1
	maxAccountLen = 100

	minSymbolLen = 1
	maxSymbolLen = 5

	// LotDateFormat is the layout of date_acquired in uploaded CSV files
	LotDateFormat = "2006/01/02"
	// lotJSONDateFormat is the layout used when a Lot is serialized
	lotJSONDateFormat = "2006-01-02"
)

// Lot is an amount of a security purchased on a particular date.
// Lots are only built through NewLot or ParseLot and never change afterwards.
type Lot struct {
	account      string
	symbol       string
	dateAcquired time.Time
	quantity     decimal.Decimal // fractional shares are allowed
	costBasis    Currency        // per-share purchase price
}

// NewLot validates every field and returns the Lot
func NewLot(account, symbol string, dateAcquired time.Time, quantity decimal.Decimal, costBasis Currency) (Lot, error) {
	account, err := trimAndValidateLen("account", account, minAccountLen, maxAccountLen)
	if err != nil {
		return Lot{}, err
	}
	symbol, err = trimAndValidateLen("symbol", symbol, minSymbolLen, maxSymbolLen)
	if err != nil {
		return Lot{}, err
	}
	if err := validatePositive("quantity", quantity); err != nil {
		return Lot{}, err
	}
	if costBasis.unit == "" {
		return Lot{}, required("cost_basis")
	}
	if err := validatePositive("cost_basis", costBasis.amount); err != nil {
		return Lot{}, err
	}
	y, m, d := dateAcquired.Date()
	return Lot{
		account:      account,
		symbol:       symbol,
		dateAcquired: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		quantity:     quantity,
		costBasis:    costBasis,
	}, nil
}

// ParseLot builds a Lot from the raw string columns of an uploaded CSV row.
// Cost basis is read as USD.
func ParseLot(account, symbol, date, quantity, costPerShare string) (Lot, error) {
	dateAcquired, err := time.Parse(LotDateFormat, date)
	if err != nil {
		return Lot{}, parseError("date", ReasonParseDateError, err)
	}
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return Lot{}, parseError("quantity", ReasonParseDecimalError, err)
	}
	costBasis, err := ParseMoney(costPerShare, USD)
	if err != nil {
		return Lot{}, err
	}
	return NewLot(account, symbol, dateAcquired, qty, costBasis)
}

func (l Lot) Account() string           { return l.account }
func (l Lot) Symbol() string            { return l.symbol }
func (l Lot) DateAcquired() time.Time   { return l.dateAcquired }
func (l Lot) Quantity() decimal.Decimal { return l.quantity }
func (l Lot) CostBasis() Currency       { return l.costBasis }

// TotalCost is quantity * cost basis
func (l Lot) TotalCost() (Currency, error) {
	return l.costBasis.Multiply(l.quantity)
}

// Equal compares lots field by field using numeric decimal equality
func (l Lot) Equal(o Lot) bool {
	return l.account == o.account &&
		l.symbol == o.symbol &&
		l.dateAcquired.Equal(o.dateAcquired) &&
		l.quantity.Equal(o.quantity) &&
		l.costBasis.Equal(o.costBasis)
}

type lotJSON struct {
	Account      string          `json:"account"`
	Symbol       string          `json:"symbol"`
	DateAcquired string          `json:"date_acquired"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    Currency        `json:"cost_basis"`
}

func (l Lot) MarshalJSON() ([]byte, error) {
	return json.Marshal(lotJSON{
		Account:      l.account,
		Symbol:       l.symbol,
		DateAcquired: l.dateAcquired.Format(lotJSONDateFormat),
		Quantity:     l.quantity,
		CostBasis:    l.costBasis,
	})
}

func (l *Lot) UnmarshalJSON(data []byte) error {
	var raw lotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(lotJSONDateFormat, raw.DateAcquired)
	if err != nil {
		return parseError("date_acquired", ReasonParseDateError, err)
	}
	parsed, err := NewLot(raw.Account, raw.Symbol, date, raw.Quantity, raw.CostBasis)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
