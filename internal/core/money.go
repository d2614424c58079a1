// Package core provides the expense domain: records, amount parsing and
// formatting, and the ledger that keeps the running total.
//
// This file contains the parsing of user-entered amounts.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxExponent is the decimal magnitude of the largest finite float64. Amounts
// beyond it have no finite numeric value and are rejected.
const maxExponent = 308

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading plus sign, exponent notation and surrounding whitespace.
// Grouping characters, non-finite, zero and negative values are rejected
// with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("150")    -> 150, nil
//	ParseAmount("12,5")   -> 12.5, nil
//	ParseAmount(" .75 ")  -> 0.75, nil
//	ParseAmount("1e3")    -> 1000, nil
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "+")
	if s == "" || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}

	mantissa, expPart, hasExp := strings.Cut(strings.ToLower(s), "e")
	exp := 0
	if hasExp {
		e, err := strconv.Atoi(expPart)
		if err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		exp = e
	}

	intPart, fracPart, _ := strings.Cut(mantissa, ".")
	if intPart == "" && fracPart == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return decimal.Zero, ErrInvalidAmount
	}
	intDigits := len(strings.TrimLeft(intPart, "0"))
	if exp < -maxExponent || exp > maxExponent || intDigits+exp > maxExponent+1 {
		return decimal.Zero, ErrInvalidAmount
	}

	if intPart == "" {
		intPart = "0"
	}
	normalized := intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}
	if exp != 0 {
		normalized += "e" + strconv.Itoa(exp)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
