// Package timing applies recognition and cashflow month offsets to fiscal series.
//
// Offsets never carry across the fiscal year end: values pushed past March are dropped.
package timing

import "github.com/Prabhakar2095/Budget-Working/internal/fiscal"

// Shift moves month i to month i+n. Months beyond the twelfth slot are dropped; n <= 0 is a copy.
func Shift(s fiscal.Series, n int) fiscal.Series {
	if n <= 0 {
		return s
	}
	var out fiscal.Series
	for i := 0; i+n < len(out); i++ {
		out[i+n] = s[i]
	}
	return out
}

// Lag reads a cumulative basis n months late: out[i] = s[i-n], 0 before the lag elapses.
func Lag(s fiscal.Series, n int) fiscal.Series {
	return Shift(s, n)
}

// Combined sums a combination-level and an item-level offset.
// Negative inputs count as 0.
func Combined(comboOffset, itemOffset int) int {
	return max(comboOffset, 0) + max(itemOffset, 0)
}

// Dropped returns the portion of s that a shift by n pushes past the fiscal year end.
func Dropped(s fiscal.Series, n int) float64 {
	if n <= 0 {
		return 0
	}
	total := 0.0
	for i := max(len(s)-n, 0); i < len(s); i++ {
		total += s[i]
	}
	return total
}
