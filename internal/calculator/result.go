package calculator

import (
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// Line a monthly row with its fiscal-year total
type Line struct {
	Monthly fiscal.Series `json:"monthly"`
	Total   float64       `json:"total"`
}

// NewLine rounds months to 2dp and totals the rounded values.
func NewLine(s fiscal.Series) Line {
	r := s.Round2()
	return Line{Monthly: r, Total: r.Sum()}
}

// runningLine cumulative rows total to their year-end value.
func runningLine(s fiscal.Series) Line {
	r := s.Round2()
	return Line{Monthly: r, Total: r[len(r)-1]}
}

// RevenueRow revenue of one included combination
type RevenueRow struct {
	Signature         string            `json:"signature"`
	Dimensions        map[string]string `json:"dimensions"`
	FreshRecurring    fiscal.Series     `json:"freshRecurring"`
	ExistingRecurring fiscal.Series     `json:"existingRecurring"`
	FreshOneTime      fiscal.Series     `json:"freshOneTime"`
	ExistingOneTime   fiscal.Series     `json:"existingOneTime"`
	Recurring         Line              `json:"recurring"`
	OneTime           Line              `json:"oneTime"`
	Revenue           Line              `json:"revenue"`
	CashRecurring     Line              `json:"cashRecurring"` // shifted by the revenue cashflow offset
	CashOneTime       Line              `json:"cashOneTime"`
	ExistingOverride  bool              `json:"existingOverride"` // uploaded existing revenue used
	SpreadMonths      int               `json:"spreadMonths"`
}

// ItemLine opex item in recognition and cash views
type ItemLine struct {
	Name                    string `json:"name"`
	RecognitionOffsetMonths int    `json:"recognitionOffsetMonths"`
	CashflowOffsetMonths    int    `json:"cashflowOffsetMonths"`
	OverrideApplied         bool   `json:"overrideApplied"`
	Recognized              Line   `json:"recognized"`
	Cash                    Line   `json:"cash"`
}

// CapexLine capex item in recognition and cash views; refunds are negative.
type CapexLine struct {
	Name                    string           `json:"name"`
	Group                   model.CapexGroup `json:"group"`
	Type                    model.CapexType  `json:"type"`
	IsRefund                bool             `json:"isRefund"`
	RecognitionOffsetMonths int              `json:"recognitionOffsetMonths"`
	CashflowOffsetMonths    int              `json:"cashflowOffsetMonths"`
	OverrideApplied         bool             `json:"overrideApplied"`
	Recognized              Line             `json:"recognized"`
	Cash                    Line             `json:"cash"`
}

// GroupLine total of a capex group
type GroupLine struct {
	Group model.CapexGroup `json:"group"`
	Line
}

// PnL recognition view waterfall
type PnL struct {
	OneTimeRevenue                 Line `json:"oneTimeRevenue"`
	RecurringRevenue               Line `json:"recurringRevenue"`
	PassthroughRevenue             Line `json:"passthroughRevenue"`
	GrossRevenue                   Line `json:"grossRevenue"`
	Provision                      Line `json:"provisionForDoubtfulDebts"`
	NetRevenue                     Line `json:"netRevenue"`
	DirectOpex                     Line `json:"directOpex"`
	OperatingMargin                Line `json:"operatingMargin"`
	CumulativeOperatingMargin      Line `json:"cumulativeOperatingMargin"`
	OperatingMarginPct             Line `json:"operatingMarginPct"`
	CustomerPenalty                Line `json:"customerPenalty"`
	VendorPenalty                  Line `json:"vendorPenalty"`
	TotalPenalty                   Line `json:"totalPenalty"`
	OperatingMarginAfterPenalty    Line `json:"operatingMarginAfterPenalty"`
	CumulativeAfterPenalty         Line `json:"cumulativeOperatingMarginAfterPenalty"`
	OperatingMarginAfterPenaltyPct Line `json:"operatingMarginAfterPenaltyPct"`
}

// Cashflow cash view waterfall
type Cashflow struct {
	RecurringInflow   Line       `json:"recurringInflow"`
	OneTimeInflow     Line       `json:"oneTimeInflow"`
	PassthroughInflow Line       `json:"passthroughInflow"`
	GrossInflow       Line       `json:"grossInflow"`
	Provision         Line       `json:"provisionForDoubtfulDebts"` // from unshifted gross revenue
	NetInflow         Line       `json:"netInflow"`
	Outflows          []ItemLine `json:"outflows"`
	TotalOutflow      Line       `json:"totalOutflow"`
	NetOperatingFlow  Line       `json:"netOperatingFlow"`
	CustomerPenalty   Line       `json:"customerPenalty"` // from unshifted net revenue
	VendorPenalty     Line       `json:"vendorPenalty"`
	TotalPenalty      Line       `json:"totalPenalty"`
	PostPenaltyFlow   Line       `json:"postPenaltyFlow"`
}

// Funding capex funding table. Capex groups are signed cash movements:
// spend is negative and refunds are positive.
type Funding struct {
	CapexGroups           []GroupLine `json:"capexGroups"`
	TotalCapexMovement    Line        `json:"totalCapexMovement"`
	NetOperatingFlow      Line        `json:"netOperatingFlow"`
	NetCashflow           Line        `json:"netCashflow"`
	CumulativeNetCashflow Line        `json:"cumulativeNetCashflow"`
	PeakFunding           float64     `json:"peakFunding"`
}

// Result full revenue calculation output
type Result struct {
	LOB        model.LOB `json:"lob"`
	FiscalYear string    `json:"fiscalYear"`
	Months     []string  `json:"months"`

	Rows             []RevenueRow `json:"rows"`
	MonthlyOneTime   Line         `json:"monthlyOneTime"`
	MonthlyRecurring Line         `json:"monthlyRecurring"`
	MonthlyRevenue   Line         `json:"monthlyRevenue"`
	TotalRevenue     float64      `json:"totalRevenue"`

	OpexItems []ItemLine `json:"opexItems"`
	TotalOpex Line       `json:"totalOpex"`

	CapexItems  []CapexLine `json:"capexItems"`
	CapexGroups []GroupLine `json:"capexGroups"` // recognition view
	TotalCapex  Line        `json:"totalCapex"`

	PnL         PnL      `json:"pnl"`
	Cashflow    Cashflow `json:"cashflow"`
	Funding     Funding  `json:"funding"`
	PeakFunding float64  `json:"peakFunding"`

	Warnings []string `json:"warnings,omitempty"`
}
