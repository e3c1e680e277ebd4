// Package money parses and formats order values as fixed-point decimals.
//
// Order values arrive as free-form strings. Parsing reads the longest numeric
// prefix, so "12abc" is 12 and "abc" is not a number at all.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Parse reads the leading number of s. ok is false when s has no numeric prefix.
func Parse(s string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(s)
	match := numericPrefix.FindString(trimmed)
	if match == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Amount is Parse with unparseable input treated as zero.
func Amount(s string) decimal.Decimal {
	d, _ := Parse(s)
	return d
}

// IsPositive reports whether s parses to a number greater than zero.
func IsPositive(s string) bool {
	d, ok := Parse(s)
	return ok && d.IsPositive()
}

// Sum adds the parsed values, skipping anything unparseable.
func Sum(values ...string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(Amount(v))
	}
	return total
}

// Format renders d without trailing zeros ("150", "0.5").
func Format(d decimal.Decimal) string {
	return d.String()
}

// Display prefixes the currency symbol and rounds to two places.
func Display(symbol string, d decimal.Decimal) string {
	return symbol + d.Round(2).String()
}
