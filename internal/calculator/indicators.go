package calculator

// Indicator headline figure of a calculation
type Indicator struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"` // "amount" or "%"
}

// IndicatorGroup indicators shown together
type IndicatorGroup struct {
	Name       string      `json:"name"`
	Indicators []Indicator `json:"indicators"`
}

const (
	unitAmount  = "amount"
	unitPercent = "%"
)

// Indicators year-level KPIs of a result, grouped the way the summary card shows them.
func Indicators(r *Result) []IndicatorGroup {
	if r == nil {
		return nil
	}
	pnl := r.PnL
	return []IndicatorGroup{
		{
			Name: "Revenue",
			Indicators: []Indicator{
				{ID: "revenue_total", Name: "Gross Revenue", Value: pnl.GrossRevenue.Total, Unit: unitAmount},
				{ID: "revenue_recurring", Name: "Recurring Revenue", Value: pnl.RecurringRevenue.Total, Unit: unitAmount},
				{ID: "revenue_one_time", Name: "One-time Revenue", Value: pnl.OneTimeRevenue.Total, Unit: unitAmount},
				{ID: "revenue_net", Name: "Net Revenue", Value: pnl.NetRevenue.Total, Unit: unitAmount},
			},
		},
		{
			Name: "Margin",
			Indicators: []Indicator{
				{ID: "margin_value", Name: "Operating Margin", Value: pnl.OperatingMargin.Total, Unit: unitAmount},
				{ID: "margin_pct", Name: "Operating Margin %", Value: pnl.OperatingMarginPct.Total, Unit: unitPercent},
				{ID: "margin_after_penalty", Name: "Operating Margin after Penalty", Value: pnl.OperatingMarginAfterPenalty.Total, Unit: unitAmount},
				{ID: "margin_after_penalty_pct", Name: "Operating Margin after Penalty %", Value: pnl.OperatingMarginAfterPenaltyPct.Total, Unit: unitPercent},
			},
		},
		{
			Name: "Cost",
			Indicators: []Indicator{
				{ID: "cost_opex", Name: "Total Opex", Value: r.TotalOpex.Total, Unit: unitAmount},
				{ID: "cost_capex", Name: "Total Capex", Value: r.TotalCapex.Total, Unit: unitAmount},
			},
		},
		{
			Name: "Funding",
			Indicators: []Indicator{
				{ID: "funding_net_operating", Name: "Net Operating Cashflow", Value: r.Cashflow.NetOperatingFlow.Total, Unit: unitAmount},
				{ID: "funding_net_cashflow", Name: "Net Cashflow", Value: r.Funding.NetCashflow.Total, Unit: unitAmount},
				{ID: "funding_peak", Name: "Peak Funding", Value: r.PeakFunding, Unit: unitAmount},
			},
		},
	}
}
