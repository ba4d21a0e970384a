// Package money provides currency-safe parsing and rendering for extracted
// payslip amounts. Parsing goes through shopspring/decimal for precision;
// rendering uses go-money so currency symbols and minor units follow
// ISO-4217 rules.
package money

import (
	"errors"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the default currency for government/military pay statements.
const INR = "INR"

// ErrNotNumeric indicates a value had no parseable numeric content.
var ErrNotNumeric = errors.New("value is not numeric")

// ParseAmount extracts a decimal amount from noisy payslip text.
// Everything except digits and '.' is stripped first, so inputs like
// "Rs. 1,23,456.00" or "₹3000/-" parse cleanly.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := stripNonAmount(raw)
	if cleaned == "" {
		return decimal.Zero, ErrNotNumeric
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrNotNumeric
	}
	return d, nil
}

// Format renders an amount with the currency's symbol and its standard
// number of minor units (2 for INR).
func Format(amount decimal.Decimal, currencyCode string) string {
	currency := gomoney.GetCurrency(currencyCode)
	if currency == nil {
		currency = gomoney.GetCurrency(INR)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()
	return gomoney.New(minor, currency.Code).Display()
}

// stripNonAmount removes everything except digits and the decimal point.
// A trailing or repeated '.' survives here and fails in decimal parsing,
// which callers treat as not-numeric.
func stripNonAmount(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
