// Package core holds the ledger data model and the balance, filter and
// sort computations over it.
//
// Amounts are arbitrary-precision decimals, never binary floats, so
// totals stay exact across any number of import/export cycles.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary value. The zero value is zero.
type Amount struct {
	value decimal.Decimal
}

// ParseAmount parses a non-negative decimal string. Commas are
// thousands separators and are stripped, so "1,000" is one thousand;
// explicit signs are rejected so a "signed expense" cannot sneak in
// through an import payload.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34
//	ParseAmount("1,000.50") -> 1000.50
//	ParseAmount("-5")       -> ErrNegativeAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	// Strip thousands separators.
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Amount{}, ErrNegativeAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: d}, nil
}

// AmountFromDecimal wraps an existing decimal. Negative values are
// rejected the same way ParseAmount rejects them.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{value: d}, nil
}

func (a Amount) Validate() error {
	if a.value.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// String renders the amount with its stored precision, e.g. "12.34".
func (a Amount) String() string { return a.value.String() }

func (a Amount) Equal(b Amount) bool { return a.value.Equal(b.value) }

func (a Amount) IsZero() bool { return a.value.IsZero() }
