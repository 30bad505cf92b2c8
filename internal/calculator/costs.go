package calculator

import (
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/timing"
)

// opexLines one line per opex item, summed across included combinations.
// An override for the fiscal year replaces the rate-computed existing part.
func opexLines(s *model.Snapshot, combos []model.Combination) []ItemLine {
	lines := make([]ItemLine, 0, len(s.OpexItems))
	for _, item := range s.OpexItems {
		override, hasOverride := s.ExistingOpexOverrides.Lookup(item.Name, s.FiscalYear)

		var recognized, cash fiscal.Series
		for _, c := range combos {
			b := newBasis(c, s.FiscalYear, s.BaseExitYear)
			rate := s.OpexRates.Get(item.Name, c.Key())

			monthly := timing.Lag(b.cum, item.RecognitionOffsetMonths).Scale(rate.FreshRate)
			if !hasOverride {
				monthly = monthly.Add(fiscal.Constant(b.exit * rate.ExistingRate))
			}
			recognized = recognized.Add(monthly)
			cash = cash.Add(timing.Shift(monthly, timing.Combined(c.Offsets.RevenueCashflow, item.CashflowOffsetMonths)))
		}
		if hasOverride {
			recognized = recognized.Add(override)
			cash = cash.Add(timing.Shift(override, item.CashflowOffsetMonths))
		}

		lines = append(lines, ItemLine{
			Name:                    item.Name,
			RecognitionOffsetMonths: item.RecognitionOffsetMonths,
			CashflowOffsetMonths:    item.CashflowOffsetMonths,
			OverrideApplied:         hasOverride,
			Recognized:              NewLine(recognized),
			Cash:                    NewLine(cash),
		})
	}
	return lines
}

// capexLines one line per capex item. The fresh basis is activity volume (never negated)
// lagged by the combination capex offset plus the item offset; the existing basis is the
// signed exit volume. Refund items are negated.
func capexLines(s *model.Snapshot, combos []model.Combination) []CapexLine {
	lines := make([]CapexLine, 0, len(s.CapexItems))
	for _, item := range s.CapexItems {
		typ := item.EffectiveType()
		hasExisting := typ == model.CapexReplacement || typ == model.CapexDepositRefund
		override, hasOverride := s.ExistingCapexOverrides.Lookup(item.Name, s.FiscalYear)
		hasOverride = hasOverride && hasExisting
		sign := 1.0
		if item.IsRefund {
			sign = -1
		}

		var recognized, cash fiscal.Series
		for _, c := range combos {
			b := newBasis(c, s.FiscalYear, s.BaseExitYear)
			activity := c.VolumeSeries(s.FiscalYear).Cumulative()
			rate := s.CapexRates.Get(item.Name, c.Key())

			lag := timing.Combined(c.Offsets.CapexRecognition, item.RecognitionOffsetMonths)
			monthly := timing.Lag(activity, lag).Scale(rate.FreshRate)
			if hasExisting && !hasOverride {
				monthly = monthly.Add(fiscal.Constant(b.exit * rate.ExistingRate))
			}
			monthly = monthly.Scale(sign)

			recognized = recognized.Add(monthly)
			cash = cash.Add(timing.Shift(monthly, timing.Combined(c.Offsets.CapexCashflow, item.CashflowOffsetMonths)))
		}
		if hasOverride {
			ov := override.Scale(sign)
			recognized = recognized.Add(ov)
			cash = cash.Add(timing.Shift(ov, item.CashflowOffsetMonths))
		}

		lines = append(lines, CapexLine{
			Name:                    item.Name,
			Group:                   item.Group,
			Type:                    typ,
			IsRefund:                item.IsRefund,
			RecognitionOffsetMonths: item.RecognitionOffsetMonths,
			CashflowOffsetMonths:    item.CashflowOffsetMonths,
			OverrideApplied:         hasOverride,
			Recognized:              NewLine(recognized),
			Cash:                    NewLine(cash),
		})
	}
	return lines
}

// groupTotals sums capex lines per group header, known groups first in display order.
func groupTotals(lines []CapexLine, pick func(CapexLine) fiscal.Series) []GroupLine {
	sums := make(map[model.CapexGroup]fiscal.Series)
	order := append([]model.CapexGroup(nil), model.CapexGroups...)
	for _, l := range lines {
		if _, ok := sums[l.Group]; !ok && !containsGroup(order, l.Group) {
			order = append(order, l.Group)
		}
		sums[l.Group] = sums[l.Group].Add(pick(l))
	}

	out := make([]GroupLine, 0, len(order))
	for _, g := range order {
		s, ok := sums[g]
		if !ok {
			continue
		}
		out = append(out, GroupLine{Group: g, Line: NewLine(s)})
	}
	return out
}

func containsGroup(groups []model.CapexGroup, g model.CapexGroup) bool {
	for _, x := range groups {
		if x == g {
			return true
		}
	}
	return false
}
