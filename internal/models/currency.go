package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	USD = "USD"
	JPY = "JPY"

	minUnitLen = 1
	maxUnitLen = 5
)

// MaxAmount is the largest magnitude a Currency amount may hold (a 96-bit mantissa).
// Arithmetic producing anything larger fails with an overflow error.
var MaxAmount = decimal.RequireFromString("79228162514264337593543950335")

// CurrencyErrorKind identifies which arithmetic check failed
type CurrencyErrorKind string

const (
	UnitMismatch CurrencyErrorKind = "UnitMismatch"
	Overflow     CurrencyErrorKind = "Overflow"
)

var (
	ErrUnitMismatch = errors.New("currency unit mismatch")
	ErrOverflow     = errors.New("currency overflow")
)

// CurrencyError is returned by Currency arithmetic
type CurrencyError struct {
	Kind      CurrencyErrorKind
	Operation string
	Left      Currency
	Right     string
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("%s: %s %s %s", e.Kind, e.Left, e.Operation, e.Right)
}

func (e *CurrencyError) Is(target error) bool {
	switch e.Kind {
	case UnitMismatch:
		return target == ErrUnitMismatch
	case Overflow:
		return target == ErrOverflow
	}
	return false
}

// Currency is an immutable decimal amount tagged with a unit symbol such as "USD"
type Currency struct {
	amount decimal.Decimal
	unit   string
}

// NewCurrency trims unit and checks that it is between 1 and 5 characters
func NewCurrency(amount decimal.Decimal, unit string) (Currency, error) {
	unit, err := trimAndValidateLen("unit", unit, minUnitLen, maxUnitLen)
	if err != nil {
		return Currency{}, err
	}
	return Currency{amount: amount, unit: unit}, nil
}

// ZeroCurrency returns a zero amount in unit. unit is assumed to be valid.
func ZeroCurrency(unit string) Currency {
	return Currency{amount: decimal.Zero, unit: unit}
}

func (c Currency) Amount() decimal.Decimal { return c.amount }
func (c Currency) Unit() string            { return c.unit }

func (c Currency) String() string {
	return c.amount.String() + " " + c.unit
}

// Equal reports whether both the numeric amount and the unit match
func (c Currency) Equal(o Currency) bool {
	return c.unit == o.unit && c.amount.Equal(o.amount)
}

// Add returns c + o. Both must share a unit.
func (c Currency) Add(o Currency) (Currency, error) {
	if c.unit != o.unit {
		return Currency{}, &CurrencyError{Kind: UnitMismatch, Operation: "add", Left: c, Right: o.String()}
	}
	sum := c.amount.Add(o.amount)
	if overflows(sum) {
		return Currency{}, &CurrencyError{Kind: Overflow, Operation: "add", Left: c, Right: o.String()}
	}
	return Currency{amount: sum, unit: c.unit}, nil
}

// Multiply scales the amount by scalar
func (c Currency) Multiply(scalar decimal.Decimal) (Currency, error) {
	product := c.amount.Mul(scalar)
	if overflows(product) {
		return Currency{}, &CurrencyError{Kind: Overflow, Operation: "multiply", Left: c, Right: scalar.String()}
	}
	return Currency{amount: product, unit: c.unit}, nil
}

func overflows(d decimal.Decimal) bool {
	return d.Abs().GreaterThan(MaxAmount)
}

// ParseMoney parses s as an amount of unit. The currency grapheme and
// thousands separator known to go-money for unit are accepted, so
// "$1,000.47" parses as 1000.47 USD.
func ParseMoney(s, unit string) (Currency, error) {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(unit)))
	if cur == nil {
		return Currency{}, parseError("cost_basis", ReasonParseMoneyError, fmt.Errorf("unknown currency %q", unit))
	}
	raw := strings.TrimSpace(s)
	if cur.Grapheme != "" {
		raw = strings.TrimPrefix(raw, cur.Grapheme)
	}
	if cur.Thousand != "" {
		raw = strings.ReplaceAll(raw, cur.Thousand, "")
	}
	if cur.Decimal != "" && cur.Decimal != "." {
		raw = strings.ReplaceAll(raw, cur.Decimal, ".")
	}
	if raw == "" {
		return Currency{}, parseError("cost_basis", ReasonParseMoneyError, errors.New("empty amount"))
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Currency{}, parseError("cost_basis", ReasonParseMoneyError, err)
	}
	return NewCurrency(amount, cur.Code)
}

type currencyJSON struct {
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}

func (c Currency) MarshalJSON() ([]byte, error) {
	return json.Marshal(currencyJSON{Amount: c.amount, Unit: c.unit})
}

func (c *Currency) UnmarshalJSON(data []byte) error {
	var raw currencyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewCurrency(raw.Amount, raw.Unit)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
