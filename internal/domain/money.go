package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise).
type Money int64

const (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold Money = 50000
	// FlatShippingFee applies to subtotals at or below FreeShippingThreshold.
	FlatShippingFee Money = 4000
)

// TaxRate is the GST rate applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.18")

var hundred = decimal.NewFromInt(100)

// PricingPolicy holds the knobs used to derive order totals.
type PricingPolicy struct {
	FreeShippingThreshold Money
	FlatShippingFee       Money
	TaxRate               decimal.Decimal
}

func DefaultPricing() PricingPolicy {
	return PricingPolicy{
		FreeShippingThreshold: FreeShippingThreshold,
		FlatShippingFee:       FlatShippingFee,
		TaxRate:               TaxRate,
	}
}

// Totals is the price breakdown shown at checkout and frozen into an order.
type Totals struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
}

// MoneyFromDecimal converts a major-unit amount (e.g. 109.95) to minor units,
// rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(hundred).Round(0).IntPart())
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func ComputeSubtotal(lines []CartLine) Money {
	var subtotal Money
	for _, line := range lines {
		subtotal += line.Subtotal()
	}
	return subtotal
}

func (p PricingPolicy) ComputeShipping(subtotal Money) Money {
	if subtotal > p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

func (p PricingPolicy) ComputeTax(subtotal Money) Money {
	return Money(decimal.NewFromInt(int64(subtotal)).Mul(p.TaxRate).Round(0).IntPart())
}

func ComputeTotal(subtotal, shipping, tax Money) Money {
	return subtotal + shipping + tax
}

func (p PricingPolicy) ComputeTotals(lines []CartLine) Totals {
	subtotal := ComputeSubtotal(lines)
	shipping := p.ComputeShipping(subtotal)
	tax := p.ComputeTax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    ComputeTotal(subtotal, shipping, tax),
	}
}

// ComputeShipping uses the default pricing policy.
func ComputeShipping(subtotal Money) Money {
	return DefaultPricing().ComputeShipping(subtotal)
}

// ComputeTax uses the default pricing policy.
func ComputeTax(subtotal Money) Money {
	return DefaultPricing().ComputeTax(subtotal)
}

// ComputeTotals uses the default pricing policy.
func ComputeTotals(lines []CartLine) Totals {
	return DefaultPricing().ComputeTotals(lines)
}
