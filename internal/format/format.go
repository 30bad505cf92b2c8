// Package format renders amounts for the summary tables: scaled to millions,
// negatives in parentheses.
package format

import (
	"math"

	"github.com/shopspring/decimal"
)

// Scale display unit of the summary tables
const Scale = 1_000_000

func fixed(v float64, decimals int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := decimal.NewFromFloat(v).StringFixed(decimals)
	if s[0] == '-' && decimal.RequireFromString(s).IsZero() {
		return s[1:]
	}
	return s
}

// Millions v / 1,000,000 with the given decimals, sign kept.
func Millions(v float64, decimals int32) string {
	return fixed(v/Scale, decimals)
}

// Amount v in millions; negatives, or every value when forceParens is set,
// are wrapped in parentheses without a minus sign.
func Amount(v float64, decimals int32, forceParens bool) string {
	abs := fixed(math.Abs(v)/Scale, decimals)
	if forceParens || (v < 0 && abs != fixed(0, decimals)) {
		return "(" + abs + ")"
	}
	return abs
}

// Percent percentage with one decimal, e.g. "12.5%".
func Percent(v float64) string {
	return fixed(v, 1) + "%"
}

// Number plain 2-dp rendering used by the monthly detail tables.
func Number(v float64) string {
	return fixed(v, 2)
}
