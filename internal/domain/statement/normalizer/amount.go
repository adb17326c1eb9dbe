// Package normalizer converts the locale-specific amount and date text found
// in bank statement exports into canonical values.
package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer(
	" ", "", // non-breaking space used as thousands separator
	" ", "",
	"+", "",
	"−", "-", // typographic minus
	",", ".",
)

// Amount parses a locale-formatted amount string into an exact decimal.
// Thousands spaces (including NBSP), explicit "+" markers, the typographic
// minus and comma decimal separators are all tolerated. Empty or unparseable
// input yields zero so that a single malformed cell never aborts a batch;
// callers that treat zero as invalid must check the result themselves.
func Amount(raw string) decimal.Decimal {
	cleaned := amountReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
