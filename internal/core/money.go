// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents bounds the absolute value of a single amount
// (999,999,999.99). Ledger sums are plain int64 cents, so with this bound
// they cannot overflow below roughly 92 million records.
const MaxAmountCents = 99_999_999_999

var maxCents = decimal.NewFromInt(MaxAmountCents)

// ParseAmount converts a decimal string to Money with half-away-from-zero
// rounding to cents.
//
// Only '.' is accepted as decimal separator. Negative amounts (refunds) and
// zero are allowed; empty or non-numeric input is rejected, and so is an
// amount beyond MaxAmountCents after rounding.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("-3")     -> -300 cents
//	ParseAmount("12.345") -> 1235 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, Errorf(KindInvalidAmount, "amount is required")
	}
	if strings.Contains(s, ",") {
		return Money{}, Errorf(KindInvalidAmount, "amount %q must use '.' as decimal separator", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &Error{Kind: KindInvalidAmount, Msg: "amount is not a number: " + quote(s), Err: err}
	}
	cents := d.Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, Errorf(KindInvalidAmount, "amount %q out of range, at most %s either way", s, Money{Cents: MaxAmountCents})
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// String formats the amount with exactly two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Euros returns the value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return m.Decimal().InexactFloat64()
}
