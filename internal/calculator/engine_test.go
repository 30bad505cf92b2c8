package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

const testFY = "FY25-26"

func aprilVolume(v float64) fiscal.Series {
	var s fiscal.Series
	s[0] = v
	return s
}

func combo(typ string, vol float64) model.Combination {
	c := model.NewCombination(map[string]string{"customer": "Airtel", "circle": "SOBO", "type": typ})
	c.Volumes[testFY] = aprilVolume(vol)
	return c
}

func snapshot(lob model.LOB, combos ...model.Combination) *model.Snapshot {
	s := &model.Snapshot{
		FiscalYear:   testFY,
		LOB:          lob,
		Combos:       combos,
		Rates:        model.Rates{},
		IncludeFresh: true,
		OpexRates:    model.ItemRates{},
		CapexRates:   model.ItemRates{},
	}
	return s
}

func TestClampedPct(t *testing.T) {
	assert.Equal(t, 0.0, ClampedPct(-500, 10))
	assert.Equal(t, 0.0, ClampedPct(0, 10))
	assert.Equal(t, 100.0, ClampedPct(1000, 10))
}

func TestPeakFunding(t *testing.T) {
	assert.Equal(t, -300.0, PeakFunding([]float64{100, -50, -300, 200}))
	assert.Equal(t, 0.0, PeakFunding([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, PeakFunding(nil))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(10, 0))
	assert.Equal(t, 50.0, Ratio(5, 10))
}

func TestComputeRevenueFreshFTTH(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100, OneTimeRate: 1800}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, 180, row.SpreadMonths)
	assert.Equal(t, fiscal.Constant(1000), row.Recurring.Monthly)
	assert.Equal(t, 12000.0, row.Recurring.Total)
	// 18000 added in April, recognised over 180 months
	assert.Equal(t, fiscal.Constant(100), row.OneTime.Monthly)
	assert.Equal(t, 18000.0, row.CashOneTime.Monthly[0])
	assert.Equal(t, 18000.0, row.CashOneTime.Total)

	assert.Equal(t, 13200.0, res.TotalRevenue)
	assert.Equal(t, fiscal.Constant(1100), res.PnL.GrossRevenue.Monthly)
	assert.Equal(t, 100.0, res.PnL.OperatingMarginPct.Total)
	assert.Equal(t, 13200.0, res.PnL.CumulativeOperatingMargin.Total)
	assert.Equal(t, fiscal.Months[:], res.Months)
	assert.Empty(t, res.Warnings)
}

func TestComputeRevenueCashShiftTruncates(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.Offsets.RevenueCashflow = 2
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	cash := res.Rows[0].CashRecurring
	assert.Equal(t, 0.0, cash.Monthly[0])
	assert.Equal(t, 0.0, cash.Monthly[1])
	assert.Equal(t, 1000.0, cash.Monthly[2])
	assert.Equal(t, 10000.0, cash.Total)
	// recognition is not shifted
	assert.Equal(t, 12000.0, res.Rows[0].Recurring.Total)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "2000.00")
}

func TestComputeRevenueRecognitionLag(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.Offsets.RevenueRecognition = 3
	s := snapshot(model.LOBOHFC, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 1, OneTimeRate: 12}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, 0.0, row.Recurring.Monthly[2])
	assert.Equal(t, 10.0, row.Recurring.Monthly[3])
	// 120 added in July over 12 months: 10 per month July..March
	assert.Equal(t, 0.0, row.OneTime.Monthly[2])
	assert.Equal(t, 10.0, row.OneTime.Monthly[3])
	assert.Equal(t, 90.0, row.OneTime.Total)
}

func TestComputeRevenueSmallCellHasNoOneTime(t *testing.T) {
	c := model.NewCombination(map[string]string{"customer": "Airtel", "siteType": "HPSC", "type": model.TypeRFAI})
	c.Volumes[testFY] = aprilVolume(4)
	s := snapshot(model.LOBSmallCell, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 10, OneTimeRate: 500}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.MonthlyOneTime.Total)
	assert.Equal(t, 0.0, res.Rows[0].CashOneTime.Total)
	assert.Equal(t, 480.0, res.MonthlyRecurring.Total)
}

func TestComputeRevenueSDUStaggerAndLockIn(t *testing.T) {
	c := model.NewCombination(map[string]string{
		"customer": "Airtel", "circle": "SOBO", "type": model.TypeRFAI, "Lock In": "2 years",
	})
	c.Volumes[testFY] = aprilVolume(10)
	s := snapshot(model.LOBSDU, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100, OneTimeRate: 240}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, 24, row.SpreadMonths)
	assert.Equal(t, 500.0, row.FreshRecurring[0])
	assert.Equal(t, 500.0, row.FreshRecurring[1])
	assert.Equal(t, 1000.0, row.FreshRecurring[2])
	assert.Equal(t, 100.0, row.FreshOneTime[0])
}

func TestComputeRevenueExisting(t *testing.T) {
	c := combo(model.TypeRFAI, 0)
	c.ExitVolumes["FY24-25"] = 90
	s := snapshot(model.LOBFTTH, c)
	s.BaseExitYear = "FY24-25"
	s.Rates[c.Key()] = model.RateEntry{ExistingRecurringRate: 2, ExistingOneTimeRate: 400}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, fiscal.Constant(180), row.ExistingRecurring)
	assert.Equal(t, fiscal.Constant(200), row.ExistingOneTime)
	// existing one-time was collected in earlier years
	assert.Equal(t, 0.0, row.CashOneTime.Total)
	assert.Equal(t, 2160.0, row.CashRecurring.Total)

	t.Run("uploaded override wins", func(t *testing.T) {
		c.ExistingRevenue = map[string]model.ExistingRevenue{
			"FY24-25": {Recurring: fiscal.Constant(7)},
		}
		s.Combos = []model.Combination{c}
		res, err := ComputeRevenue(s)
		require.NoError(t, err)
		assert.True(t, res.Rows[0].ExistingOverride)
		assert.Equal(t, 84.0, res.Rows[0].Recurring.Total)
		assert.Equal(t, 0.0, res.Rows[0].OneTime.Total)
	})
}

func TestComputeRevenueIncludeFreshFalse(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBFTTH, c)
	s.IncludeFresh = false
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 100, OneTimeRate: 1800}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TotalRevenue)
	assert.Equal(t, 0.0, res.Rows[0].CashOneTime.Total)
}

func TestComputeRevenueExcludedCombination(t *testing.T) {
	in := combo(model.TypeRFAI, 10)
	out := combo(model.TypeDecom, 10)
	out.Included = false
	s := snapshot(model.LOBFTTH, in, out)
	s.Rates[in.Key()] = model.RateEntry{RecurringRate: 1}
	s.Rates[out.Key()] = model.RateEntry{RecurringRate: 1000}

	res, err := ComputeRevenue(s)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 120.0, res.TotalRevenue)
}

func TestComputeRevenueFormula(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	s := snapshot(model.LOBOHFC, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 3, OneTimeRate: 12}
	s.FormulaRecurring = "volume * recurring_rate * 2"
	s.FormulaOneTime = "v * one_time_rate + 24"

	res, err := ComputeRevenue(s)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, 60.0, row.Recurring.Monthly[0])
	// April adds 144, later months add 0 volume but the constant term still lands
	assert.Equal(t, 144.0, row.CashOneTime.Monthly[0])
	assert.Equal(t, 24.0, row.CashOneTime.Monthly[1])
}

func TestComputeRevenueInvalidInput(t *testing.T) {
	c := combo(model.TypeRFAI, 10)

	t.Run("malformed formula", func(t *testing.T) {
		s := snapshot(model.LOBFTTH, c)
		s.FormulaRecurring = "volume *"
		_, err := ComputeRevenue(s)
		_, ok := model.AsValidation(err)
		assert.True(t, ok)
	})

	t.Run("negative offset", func(t *testing.T) {
		bad := c.Clone()
		bad.Offsets.CapexCashflow = -1
		_, err := ComputeRevenue(snapshot(model.LOBFTTH, bad))
		ve, ok := model.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, ve.Problems[0], "capexCashflow")
	})

	t.Run("bad fiscal year", func(t *testing.T) {
		s := snapshot(model.LOBFTTH, c)
		s.FiscalYear = "FY25-27"
		_, err := ComputeRevenue(s)
		_, ok := model.AsValidation(err)
		assert.True(t, ok)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		_, err := ComputeRevenue(nil)
		assert.Error(t, err)
	})
}

func TestComputeRevenueEmptyCombinations(t *testing.T) {
	res, err := ComputeRevenue(snapshot(model.LOBFTTH))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Equal(t, 0.0, res.PeakFunding)
	assert.Equal(t, 0.0, res.PnL.OperatingMarginPct.Total)
}

func TestComputeRevenueIdempotent(t *testing.T) {
	c := combo(model.TypeRFAI, 10)
	c.Offsets = model.Offsets{RevenueRecognition: 1, RevenueCashflow: 1, CapexRecognition: 1, CapexCashflow: 2}
	s := snapshot(model.LOBFTTH, c)
	s.Rates[c.Key()] = model.RateEntry{RecurringRate: 37.5, OneTimeRate: 999}
	s.OpexItems = []model.OpexItem{{Name: "O&M", CashflowOffsetMonths: 1}}
	s.OpexRates.Set("O&M", c.Key(), model.ItemRate{FreshRate: 3.3})
	s.CapexItems = []model.CapexItem{model.NewCapexItem("Fiber", model.GroupFirstTimeCapex)}
	s.CapexRates.Set("Fiber", c.Key(), model.ItemRate{FreshRate: 77})
	s.ProvisionPct = 2.5

	first, err := ComputeRevenue(s)
	require.NoError(t, err)
	second, err := ComputeRevenue(s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
