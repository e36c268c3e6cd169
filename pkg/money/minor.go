// Package money converts between major-unit decimals and the integer minor
// units used on the payment gateway wire.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const minorExponent = 2

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinor converts minor units back to a major-unit amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}

// Parse reads a storefront money string such as "499.50".
func Parse(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return d, nil
}

// Format renders a major-unit amount with the currency code, e.g. "INR 1000.00".
func Format(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", strings.ToUpper(currency), amount.StringFixed(minorExponent))
}
