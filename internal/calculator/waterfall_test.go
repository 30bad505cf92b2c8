package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

func TestOpexLines(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.ExitVolumes["FY24-25"] = 100
	s := snapshot(model.LOBFTTH, c)
	s.BaseExitYear = "FY24-25"
	s.OpexItems = []model.OpexItem{{Name: "O&M", CashflowOffsetMonths: 1}}
	s.OpexRates.Set("O&M", c.Key(), model.ItemRate{ExistingRate: 3, FreshRate: 2})

	res, err := ComputeRevenue(s)
	require.NoError(t, err)
	require.Len(t, res.OpexItems, 1)

	line := res.OpexItems[0]
	assert.Equal(t, fiscal.Constant(320), line.Recognized.Monthly)
	assert.Equal(t, 3840.0, res.TotalOpex.Total)
	assert.Equal(t, 0.0, line.Cash.Monthly[0])
	assert.Equal(t, 3520.0, line.Cash.Total)
	assert.Equal(t, 3520.0, res.Cashflow.TotalOutflow.Total)

	t.Run("override replaces existing part", func(t *testing.T) {
		s.ExistingOpexOverrides = model.Overrides{}
		s.ExistingOpexOverrides.Set("O&M", testFY, fiscal.Constant(50))

		res, err := ComputeRevenue(s)
		require.NoError(t, err)
		line := res.OpexItems[0]
		assert.True(t, line.OverrideApplied)
		assert.Equal(t, fiscal.Constant(70), line.Recognized.Monthly)
	})

	t.Run("override for another year is ignored", func(t *testing.T) {
		s.ExistingOpexOverrides = model.Overrides{}
		s.ExistingOpexOverrides.Set("O&M", "FY26-27", fiscal.Constant(50))

		res, err := ComputeRevenue(s)
		require.NoError(t, err)
		assert.False(t, res.OpexItems[0].OverrideApplied)
		assert.Equal(t, 3840.0, res.TotalOpex.Total)
	})
}

func TestCapexLines(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.ExitVolumes["FY24-25"] = 100
	c.Offsets.CapexRecognition = 1
	c.Offsets.CapexCashflow = 1
	s := snapshot(model.LOBFTTH, c)
	s.BaseExitYear = "FY24-25"
	s.CapexItems = []model.CapexItem{
		model.NewCapexItem("Fiber", model.GroupFirstTimeCapex),
		model.NewCapexItem("Replacement", model.GroupReplacementCapex),
		model.NewCapexItem("Refund", model.GroupDepositRefund),
	}
	s.CapexRates.Set("Fiber", c.Key(), model.ItemRate{ExistingRate: 99, FreshRate: 5})
	s.CapexRates.Set("Replacement", c.Key(), model.ItemRate{ExistingRate: 1})
	s.CapexRates.Set("Refund", c.Key(), model.ItemRate{ExistingRate: 2})

	res, err := ComputeRevenue(s)
	require.NoError(t, err)
	require.Len(t, res.CapexItems, 3)

	fiber := res.CapexItems[0]
	assert.Equal(t, model.CapexFirstTime, fiber.Type)
	// first-time items have no existing part; the fresh basis lags one month
	assert.Equal(t, 0.0, fiber.Recognized.Monthly[0])
	assert.Equal(t, 50.0, fiber.Recognized.Monthly[1])
	assert.Equal(t, 550.0, fiber.Recognized.Total)
	// cash lags one more month
	assert.Equal(t, 0.0, fiber.Cash.Monthly[1])
	assert.Equal(t, 500.0, fiber.Cash.Total)

	assert.Equal(t, fiscal.Constant(100), res.CapexItems[1].Recognized.Monthly)
	refund := res.CapexItems[2]
	assert.True(t, refund.IsRefund)
	assert.Equal(t, fiscal.Constant(-200), refund.Recognized.Monthly)

	require.Len(t, res.CapexGroups, 3)
	assert.Equal(t, model.GroupFirstTimeCapex, res.CapexGroups[0].Group)
	assert.Equal(t, model.GroupReplacementCapex, res.CapexGroups[1].Group)
	assert.Equal(t, model.GroupDepositRefund, res.CapexGroups[2].Group)
	assert.Equal(t, 550.0+1200-2400, res.TotalCapex.Total)

	t.Run("override only applies to items with an existing part", func(t *testing.T) {
		s.ExistingCapexOverrides = model.Overrides{}
		s.ExistingCapexOverrides.Set("Fiber", testFY, fiscal.Constant(1000))
		s.ExistingCapexOverrides.Set("Replacement", testFY, fiscal.Constant(7))

		res, err := ComputeRevenue(s)
		require.NoError(t, err)
		assert.False(t, res.CapexItems[0].OverrideApplied)
		assert.Equal(t, 550.0, res.CapexItems[0].Recognized.Total)
		assert.True(t, res.CapexItems[1].OverrideApplied)
		assert.Equal(t, 84.0, res.CapexItems[1].Recognized.Total)
	})
}

func TestDecomCombination(t *testing.T) {
	c := combo(model.TypeDecom, 10)
	s := snapshot(model.LOBFTTH, c)
	s.ProvisionPct = 10
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}
	s.CapexItems = []model.CapexItem{model.NewCapexItem("Removal", model.GroupFirstTimeCapex)}
	s.CapexRates.Set("Removal", c.Key(), model.ItemRate{FreshRate: 5})

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	assert.Equal(t, fiscal.Constant(-1000), res.Rows[0].Recurring.Monthly)
	// negative gross revenue books no provision
	assert.Equal(t, 0.0, res.PnL.Provision.Total)
	assert.Equal(t, -12000.0, res.PnL.NetRevenue.Total)
	// decommissioning still costs capex
	assert.Equal(t, 600.0, res.TotalCapex.Total)
}

func TestPnLAndPenalties(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}
	s.ProvisionPct = 10
	s.CustomerPenaltyPct = 5
	s.OpexItems = []model.OpexItem{{Name: "Power"}}
	s.OpexRates.Set("Power", c.Key(), model.ItemRate{FreshRate: 10})

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	pnl := res.PnL
	assert.Equal(t, fiscal.Constant(100), pnl.Provision.Monthly)
	assert.Equal(t, fiscal.Constant(900), pnl.NetRevenue.Monthly)
	assert.Equal(t, fiscal.Constant(800), pnl.OperatingMargin.Monthly)
	assert.Equal(t, 88.89, pnl.OperatingMarginPct.Monthly[0])
	assert.Equal(t, 88.89, pnl.OperatingMarginPct.Total)
	assert.Equal(t, fiscal.Constant(45), pnl.CustomerPenalty.Monthly)
	assert.Equal(t, 0.0, pnl.VendorPenalty.Total)
	assert.Equal(t, fiscal.Constant(755), pnl.OperatingMarginAfterPenalty.Monthly)
	assert.Equal(t, 9060.0, pnl.CumulativeAfterPenalty.Total)

	cf := res.Cashflow
	assert.Equal(t, fiscal.Constant(900), cf.NetInflow.Monthly)
	assert.Equal(t, fiscal.Constant(800), cf.NetOperatingFlow.Monthly)
	assert.Equal(t, fiscal.Constant(755), cf.PostPenaltyFlow.Monthly)
}

func TestCashflowUsesUnshiftedProvision(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.Offsets.RevenueCashflow = 1
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}
	s.ProvisionPct = 10

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	cf := res.Cashflow
	assert.Equal(t, 0.0, cf.GrossInflow.Monthly[0])
	assert.Equal(t, 100.0, cf.Provision.Monthly[0])
	assert.Equal(t, -100.0, cf.NetInflow.Monthly[0])
	assert.Equal(t, 900.0, cf.NetInflow.Monthly[1])
}

func TestFunding(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}
	s.CapexItems = []model.CapexItem{
		model.NewCapexItem("Fiber", model.GroupFirstTimeCapex),
		model.NewCapexItem("Refund", model.GroupDepositRefund),
	}
	s.CapexRates.Set("Fiber", c.Key(), model.ItemRate{FreshRate: 5})
	s.CapexRates.Set("Refund", c.Key(), model.ItemRate{FreshRate: 1})

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	f := res.Funding
	require.Len(t, f.CapexGroups, 2)
	assert.Equal(t, fiscal.Constant(-50), f.CapexGroups[0].Monthly)
	assert.Equal(t, fiscal.Constant(10), f.CapexGroups[1].Monthly)
	assert.Equal(t, fiscal.Constant(960), f.NetCashflow.Monthly)
	assert.Equal(t, 11520.0, f.CumulativeNetCashflow.Total)
	assert.Equal(t, 0.0, res.PeakFunding)

	t.Run("peak funding is the deepest cumulative point", func(t *testing.T) {
		s.Rates[c.Key()] = model.RateEntry{}
		s.CapexRates.Set("Fiber", c.Key(), model.ItemRate{FreshRate: 30})

		res, err := ComputeRevenue(s)
		require.NoError(t, err)
		assert.Equal(t, fiscal.Constant(-290), res.Funding.NetCashflow.Monthly)
		assert.Equal(t, -3480.0, res.PeakFunding)
	})
}

func TestIndicators(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	groups := Indicators(res)
	require.Len(t, groups, 4)
	assert.Equal(t, "Revenue", groups[0].Name)
	assert.Equal(t, 12000.0, groups[0].Indicators[0].Value)
	assert.Equal(t, "%", groups[1].Indicators[1].Unit)
	assert.Nil(t, Indicators(nil))
}

func TestVolumeRollup(t *testing.T) {
	a := combo(model.TypeRFAI, 10)
	a.ExitVolumes["FY24-25"] = 5
	b := model.NewCombination(map[string]string{"customer": "Jio", "circle": "SOBO", "type": model.TypeRFAI})
	b.Volumes[testFY] = fiscal.Constant(1)
	skipped := combo(model.TypeDecom, 99)
	skipped.Included = false

	r := ComputeVolumeRollup([]model.Combination{a, b, skipped}, testFY, []string{"FY24-25", "FY23-24"},
		[]string{"customer", "circle", "type"})

	require.Len(t, r.Rows, 2)
	assert.Equal(t, 10.0, r.Rows[0].Total)
	assert.Equal(t, map[string]float64{"FY24-25": 5, "FY23-24": 0}, r.Rows[0].PriorExitVolumes)
	assert.Equal(t, 11.0, r.Totals[0])
	assert.Equal(t, 22.0, r.GrandTotal)

	customers := r.DimensionTotals["customer"]
	require.Len(t, customers, 2)
	assert.Equal(t, "Airtel", customers[0].Value)
	assert.Equal(t, 10.0, customers[0].Total)
	assert.Equal(t, "Jio", customers[1].Value)
	assert.Equal(t, 12.0, customers[1].Total)
	require.Len(t, r.DimensionTotals["circle"], 1)
	assert.Equal(t, 22.0, r.DimensionTotals["circle"][0].Total)

	t.Run("axes derived from rows", func(t *testing.T) {
		r := ComputeVolumeRollup([]model.Combination{a}, testFY, nil, nil)
		assert.Len(t, r.DimensionTotals, 3)
	})

	t.Run("row total matches displayed months", func(t *testing.T) {
		c := model.NewCombination(map[string]string{"customer": "Jio", "circle": "SOBO", "type": model.TypeRFAI})
		c.Volumes[testFY] = fiscal.Constant(0.004)
		r := ComputeVolumeRollup([]model.Combination{c}, testFY, nil, []string{"customer"})
		require.Len(t, r.Rows, 1)
		assert.Equal(t, fiscal.Series{}, r.Rows[0].Months)
		assert.Equal(t, 0.0, r.Rows[0].Total)
		assert.Equal(t, r.Rows[0].Total, r.GrandTotal)
	})

	t.Run("no combinations", func(t *testing.T) {
		r := ComputeVolumeRollup(nil, testFY, nil, []string{"customer"})
		assert.Empty(t, r.Rows)
		assert.Equal(t, 0.0, r.GrandTotal)
		assert.Empty(t, r.DimensionTotals["customer"])
	})
}
