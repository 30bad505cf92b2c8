// Package calculator turns combinations, rates and line items into the revenue,
// opex and capex tables and the P&L, cashflow and funding waterfalls.
//
// Every function here is pure: the same snapshot always yields the same result.
package calculator

import (
	"fmt"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/formula"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// ComputeRevenue runs every waterfall stage over the included combinations of s.
// Missing rates and offsets count as 0; malformed input is a *model.ValidationError.
func ComputeRevenue(s *model.Snapshot) (*Result, error) {
	if s == nil {
		return nil, model.Invalid("calculation input is empty")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var forms revenueFormulas
	var err error
	if forms.recurring, err = formula.Compile(s.FormulaRecurring); err != nil {
		return nil, model.Invalid("formulaRecurring: %v", err)
	}
	if forms.oneTime, err = formula.Compile(s.FormulaOneTime); err != nil {
		return nil, model.Invalid("formulaOneTime: %v", err)
	}

	profile := ProfileFor(s.LOB)
	combos := includedCombinations(s.Combos)

	res := &Result{
		LOB:        s.LOB,
		FiscalYear: s.FiscalYear,
		Months:     fiscal.Months[:],
		Rows:       make([]RevenueRow, 0, len(combos)),
	}

	var oneTime, recurring, cashRecurring, cashOneTime fiscal.Series
	dropped := 0.0
	for _, c := range combos {
		row, lost, err := revenueRow(s, c, profile, forms)
		if err != nil {
			return nil, model.Invalid("combination %s: %v", c.Key(), err)
		}
		res.Rows = append(res.Rows, row)
		oneTime = oneTime.Add(row.OneTime.Monthly)
		recurring = recurring.Add(row.Recurring.Monthly)
		cashRecurring = cashRecurring.Add(row.CashRecurring.Monthly)
		cashOneTime = cashOneTime.Add(row.CashOneTime.Monthly)
		dropped += lost
	}
	res.MonthlyOneTime = NewLine(oneTime)
	res.MonthlyRecurring = NewLine(recurring)
	res.MonthlyRevenue = NewLine(oneTime.Add(recurring))
	res.TotalRevenue = res.MonthlyRevenue.Total

	res.OpexItems = opexLines(s, combos)
	var opexTotal fiscal.Series
	for _, l := range res.OpexItems {
		opexTotal = opexTotal.Add(l.Recognized.Monthly)
	}
	res.TotalOpex = NewLine(opexTotal)

	res.CapexItems = capexLines(s, combos)
	res.CapexGroups = groupTotals(res.CapexItems, func(l CapexLine) fiscal.Series { return l.Recognized.Monthly })
	var capexTotal fiscal.Series
	for _, g := range res.CapexGroups {
		capexTotal = capexTotal.Add(g.Monthly)
	}
	res.TotalCapex = NewLine(capexTotal)

	a := Assumptions{
		ProvisionPct:       s.ProvisionPct,
		CustomerPenaltyPct: s.CustomerPenaltyPct,
		VendorPenaltyPct:   s.VendorPenaltyPct,
	}
	var passthrough fiscal.Series
	res.PnL = BuildPnL(res.MonthlyOneTime.Monthly, res.MonthlyRecurring.Monthly, passthrough, res.TotalOpex.Monthly, a)
	res.Cashflow = BuildCashflow(cashRecurring, cashOneTime, passthrough, res.OpexItems, res.PnL, a)

	cashGroups := groupTotals(res.CapexItems, func(l CapexLine) fiscal.Series { return l.Cash.Monthly })
	res.Funding = BuildFunding(res.Cashflow.NetOperatingFlow.Monthly, cashGroups)
	res.PeakFunding = res.Funding.PeakFunding

	if dropped = fiscal.Round2(dropped); dropped != 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%.2f of revenue cash shifts past the end of %s and is not included", dropped, s.FiscalYear))
	}
	return res, nil
}

func includedCombinations(all []model.Combination) []model.Combination {
	out := make([]model.Combination, 0, len(all))
	for _, c := range all {
		if c.Included {
			out = append(out, c)
		}
	}
	return out
}
