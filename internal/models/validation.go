package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrInvalid matches every *Invalid via errors.Is
var ErrInvalid = errors.New("invalid value")

// Reason describes why a field failed validation
type Reason string

const (
	ReasonRequired           Reason = "Required"
	ReasonMustBePositive     Reason = "MustBePositive"
	ReasonMustHaveLongerLen  Reason = "MustHaveLongerLen"
	ReasonMustHaveShorterLen Reason = "MustHaveShorterLen"
	ReasonParseDateError     Reason = "ParseDateError"
	ReasonParseDecimalError  Reason = "ParseDecimalError"
	ReasonParseMoneyError    Reason = "ParseMoneyError"
)

// Invalid is returned when a Lot or Currency is constructed from a bad value.
// Cause is only set for the parse reasons.
type Invalid struct {
	Field  string
	Reason Reason
	Cause  error
}

func (e *Invalid) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *Invalid) Unwrap() error {
	return e.Cause
}

func (e *Invalid) Is(target error) bool {
	return target == ErrInvalid
}

func required(field string) *Invalid {
	return &Invalid{Field: field, Reason: ReasonRequired}
}

func parseError(field string, reason Reason, cause error) *Invalid {
	return &Invalid{Field: field, Reason: reason, Cause: cause}
}

// trimAndValidateLen trims value and checks its length in characters
func trimAndValidateLen(field, value string, minLen, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	if n < minLen {
		return "", &Invalid{Field: field, Reason: ReasonMustHaveLongerLen}
	}
	if n > maxLen {
		return "", &Invalid{Field: field, Reason: ReasonMustHaveShorterLen}
	}
	return value, nil
}

func validatePositive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return &Invalid{Field: field, Reason: ReasonMustBePositive}
	}
	return nil
}
