package calculator

import (
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

// Assumptions percentage inputs of the waterfalls
type Assumptions struct {
	ProvisionPct       float64
	CustomerPenaltyPct float64
	VendorPenaltyPct   float64
}

// ClampedPct pct percent of base, with negative bases contributing 0.
// Shared by the P&L and cashflow waterfalls.
func ClampedPct(base, pct float64) float64 {
	if base <= 0 {
		return 0
	}
	return base * pct / 100
}

func clampedPctSeries(base fiscal.Series, pct float64) fiscal.Series {
	var out fiscal.Series
	for i, v := range base {
		out[i] = ClampedPct(v, pct)
	}
	return out
}

// Ratio num/den*100, 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

func ratioSeries(num, den fiscal.Series) fiscal.Series {
	var out fiscal.Series
	for i := range out {
		out[i] = Ratio(num[i], den[i])
	}
	return out
}

// PeakFunding most negative cumulative value, 0 when it never goes negative.
func PeakFunding(cumulative []float64) float64 {
	peak := 0.0
	for _, v := range cumulative {
		if v < peak {
			peak = v
		}
	}
	return peak
}

// penalties customer, vendor and total penalty on net revenue
type penalties struct {
	customer, vendor, total fiscal.Series
}

func computePenalties(net fiscal.Series, a Assumptions) penalties {
	p := penalties{
		customer: clampedPctSeries(net, a.CustomerPenaltyPct).Round2(),
		vendor:   clampedPctSeries(net, a.VendorPenaltyPct).Round2(),
	}
	p.total = p.customer.Add(p.vendor)
	return p
}

// BuildPnL recognition waterfall from unshifted monthly totals.
func BuildPnL(oneTime, recurring, passthrough, directOpex fiscal.Series, a Assumptions) PnL {
	gross := oneTime.Add(recurring).Add(passthrough).Round2()
	provision := clampedPctSeries(gross, a.ProvisionPct).Round2()
	net := gross.Sub(provision).Round2()
	om := net.Sub(directOpex).Round2()
	pen := computePenalties(net, a)
	after := om.Sub(pen.total).Round2()

	pnl := PnL{
		OneTimeRevenue:              NewLine(oneTime),
		RecurringRevenue:            NewLine(recurring),
		PassthroughRevenue:          NewLine(passthrough),
		GrossRevenue:                NewLine(gross),
		Provision:                   NewLine(provision),
		NetRevenue:                  NewLine(net),
		DirectOpex:                  NewLine(directOpex),
		OperatingMargin:             NewLine(om),
		CumulativeOperatingMargin:   runningLine(om.Cumulative()),
		CustomerPenalty:             NewLine(pen.customer),
		VendorPenalty:               NewLine(pen.vendor),
		TotalPenalty:                NewLine(pen.total),
		OperatingMarginAfterPenalty: NewLine(after),
		CumulativeAfterPenalty:      runningLine(after.Cumulative()),
	}
	pnl.OperatingMarginPct = Line{
		Monthly: ratioSeries(om, net).Round2(),
		Total:   fiscal.Round2(Ratio(pnl.OperatingMargin.Total, pnl.NetRevenue.Total)),
	}
	pnl.OperatingMarginAfterPenaltyPct = Line{
		Monthly: ratioSeries(after, net).Round2(),
		Total:   fiscal.Round2(Ratio(pnl.OperatingMarginAfterPenalty.Total, pnl.NetRevenue.Total)),
	}
	return pnl
}

// BuildCashflow cash waterfall. Provision and penalties follow the unshifted P&L.
func BuildCashflow(cashRecurring, cashOneTime, cashPassthrough fiscal.Series, outflows []ItemLine, pnl PnL, a Assumptions) Cashflow {
	gross := cashRecurring.Add(cashOneTime).Add(cashPassthrough).Round2()
	provision := pnl.Provision.Monthly
	netInflow := gross.Sub(provision).Round2()

	var totalOut fiscal.Series
	for _, o := range outflows {
		totalOut = totalOut.Add(o.Cash.Monthly)
	}
	totalOut = totalOut.Round2()
	netOperating := netInflow.Sub(totalOut).Round2()
	pen := computePenalties(pnl.NetRevenue.Monthly, a)

	return Cashflow{
		RecurringInflow:   NewLine(cashRecurring),
		OneTimeInflow:     NewLine(cashOneTime),
		PassthroughInflow: NewLine(cashPassthrough),
		GrossInflow:       NewLine(gross),
		Provision:         NewLine(provision),
		NetInflow:         NewLine(netInflow),
		Outflows:          outflows,
		TotalOutflow:      NewLine(totalOut),
		NetOperatingFlow:  NewLine(netOperating),
		CustomerPenalty:   NewLine(pen.customer),
		VendorPenalty:     NewLine(pen.vendor),
		TotalPenalty:      NewLine(pen.total),
		PostPenaltyFlow:   NewLine(netOperating.Sub(pen.total)),
	}
}

// BuildFunding adds capex cash movements to the net operating flow and tracks the
// cumulative position. cashGroups carry capex cash as spend-positive, refund-negative.
func BuildFunding(netOperating fiscal.Series, cashGroups []GroupLine) Funding {
	f := Funding{
		CapexGroups:      make([]GroupLine, 0, len(cashGroups)),
		NetOperatingFlow: NewLine(netOperating),
	}
	var movement fiscal.Series
	for _, g := range cashGroups {
		m := g.Monthly.Neg()
		movement = movement.Add(m)
		f.CapexGroups = append(f.CapexGroups, GroupLine{Group: g.Group, Line: NewLine(m)})
	}
	f.TotalCapexMovement = NewLine(movement)

	net := netOperating.Add(movement).Round2()
	cum := net.Cumulative().Round2()
	f.NetCashflow = NewLine(net)
	f.CumulativeNetCashflow = runningLine(cum)
	f.PeakFunding = PeakFunding(cum[:])
	return f
}
