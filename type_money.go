package finbook

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Money represents an exact monetary value tagged with a currency or
// commodity code.
//
// Internally a Money is a fixed-point decimal: an integer coefficient and a
// scale. The scale is inferred from the value as supplied (1.25 has scale 2,
// 100 has scale 0) unless fixed explicitly with MScaled. Money is immutable:
// every operation returns a new value.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M builds a Money from a numeric value and a currency code. The scale is
// the minimal one representing the value exactly.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// MScaled builds a Money with an explicit scale. The value is truncated,
// not rounded, to that many decimal places.
func MScaled[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string, scale int32) Money {
	return Money{value: newDecimal(value).Truncate(scale), cur: currency}
}

// unit resolves the currency code to a go-money currency definition.
// Unknown codes (instrument tickers for instance) resolve to a generic
// 2-decimal unit rather than failing, so arbitrary commodities are always
// representable.
func (m Money) unit() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// Amount returns the exact decimal value.
func (m Money) Amount() decimal.Decimal { return m.value }

// Scale returns the number of decimal places carried by the value.
func (m Money) Scale() int32 {
	if e := m.value.Exponent(); e < 0 {
		return -e
	}
	return 0
}

// Currency returns the money's currency code.
func (m Money) Currency() string { return m.cur }

func (m Money) Equal(n Money) bool   { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool         { return m.value.IsZero() }
func (m Money) IsPositive() bool     { return m.value.IsPositive() }
func (m Money) IsNegative() bool     { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool { return m.value.LessThan(n.value) }
func (m Money) Abs() Money           { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Neg() Money           { return Money{value: m.value.Neg(), cur: m.cur} }

// Mul returns the exact product of the money by a scalar. The product of
// two fixed-point values is always representable exactly (scales add), so
// no precision is lost here.
func (m Money) Mul(n decimal.Decimal) Money {
	return Money{value: m.value.Mul(n), cur: m.cur}
}

// Div divides the money by a scalar. Division may not terminate; the
// quotient is computed at the decimal engine's division precision. Callers
// that must stay exact keep totals and divide only at the boundary.
func (m Money) Div(n decimal.Decimal) Money {
	return Money{value: m.value.Div(n), cur: m.cur}
}

// Add returns the scale-normalized exact sum. Add does not guard against
// currency mismatch: conversion is an explicit operation and callers are
// responsible for matching currencies.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// Sub returns the scale-normalized exact difference. Like Add it does not
// guard against currency mismatch.
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// cur merges the currencies of two operands, treating "" as weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	return a.cur
}

// Convert returns a new Money in toCurrency worth amount times rate.
// The rate must be a positive exchange rate; a rejected rate is reported
// with the source amount, target currency and rate for diagnosability.
func (m Money) Convert(toCurrency string, rate decimal.Decimal) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("cannot convert %s to %s: invalid rate %s", m, toCurrency, rate)
	}
	return Money{value: m.value.Mul(rate), cur: toCurrency}, nil
}

// Float64 returns the value rounded to 2 decimal places, by convention.
// It is lossy and meant for boundary consumers only; rounding is
// half-away-from-zero.
func (m Money) Float64() float64 {
	return m.value.Round(2).InexactFloat64()
}

// String renders the value at the conventional 2-decimal scale, e.g.
// "100.00 EUR". Digits beyond the scale are dropped, not rounded.
func (m Money) String() string { return m.StringScale(2) }

// StringScale renders the value truncated to the requested number of
// decimal places, followed by the currency code.
func (m Money) StringScale(scale int32) string {
	return m.value.Truncate(scale).StringFixed(scale) + " " + m.cur
}

// SignedString is like String with an explicit sign, rendering zero as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// Format renders the value with the currency's locale conventions
// (symbol, grouping), delegating to the go-money formatter. Unknown codes
// use the generic fallback unit.
func (m Money) Format() string {
	c := m.unit()
	minor := m.value.Shift(int32(c.Fraction)).Round(0)
	return c.Formatter().Format(minor.IntPart())
}
