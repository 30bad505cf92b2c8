package calculator

import (
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/formula"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/timing"
)

// basis volume series of one combination for one fiscal year
type basis struct {
	volumes fiscal.Series // signed fresh volume (Decom negative)
	cum     fiscal.Series // signed cumulative fresh volume
	exit    float64       // signed exit volume of the base year
}

func newBasis(c model.Combination, fy, baseExitYear string) basis {
	sign := 1.0
	if c.IsDecom() {
		sign = -1
	}
	b := basis{volumes: c.VolumeSeries(fy).Scale(sign)}
	b.cum = b.volumes.Cumulative()
	if baseExitYear != "" {
		b.exit = c.ExitVolume(baseExitYear) * sign
	}
	return b
}

// added month-on-month increase of a lagged cumulative series
func added(eff fiscal.Series) fiscal.Series {
	var out fiscal.Series
	prev := 0.0
	for i, v := range eff {
		out[i] = v - prev
		prev = v
	}
	return out
}

// spread recognises each month's amount straight-line over n months starting that month.
// Portions falling after March are outside the fiscal year.
func spread(amounts fiscal.Series, n int) fiscal.Series {
	var out fiscal.Series
	if n <= 0 {
		return out
	}
	for k, a := range amounts {
		if a == 0 {
			continue
		}
		per := a / float64(n)
		for m := k; m < len(out) && m-k < n; m++ {
			out[m] += per
		}
	}
	return out
}

type revenueFormulas struct {
	recurring *formula.Formula
	oneTime   *formula.Formula
}

// revenueRow fresh and existing revenue of one combination.
func revenueRow(s *model.Snapshot, c model.Combination, p Profile, f revenueFormulas) (RevenueRow, float64, error) {
	b := newBasis(c, s.FiscalYear, s.BaseExitYear)
	rate := s.Rates[c.Key()]
	n := p.Spread(c)

	row := RevenueRow{
		Signature:    c.Key(),
		Dimensions:   c.Dimensions,
		SpreadMonths: n,
	}

	var freshRecurring, freshOneTime, oneTimeCash fiscal.Series
	if s.IncludeFresh {
		eff := timing.Lag(b.cum, c.Offsets.RevenueRecognition)
		yearVolume := eff[len(eff)-1]

		recurringAt := func(volume float64) (float64, error) {
			if f.recurring == nil {
				return volume * rate.RecurringRate, nil
			}
			return f.recurring.Eval(formula.Vars{
				Volume:          volume,
				RecurringRate:   rate.RecurringRate,
				TotalVolumeYear: yearVolume,
				OneTimeRate:     rate.OneTimeRate,
			})
		}
		for m := range freshRecurring {
			v, err := recurringAt(eff[m])
			if err != nil {
				return RevenueRow{}, 0, err
			}
			if p.StaggerRecurring {
				late := 0.0
				if m >= 2 {
					if late, err = recurringAt(eff[m-2]); err != nil {
						return RevenueRow{}, 0, err
					}
				}
				v = v/2 + late/2
			}
			freshRecurring[m] = v
		}

		if n > 0 {
			add := added(eff)
			for m, vol := range add {
				if f.oneTime == nil {
					oneTimeCash[m] = vol * rate.OneTimeRate
					continue
				}
				v, err := f.oneTime.Eval(formula.Vars{
					Volume:          vol,
					RecurringRate:   rate.RecurringRate,
					TotalVolumeYear: yearVolume,
					OneTimeRate:     rate.OneTimeRate,
				})
				if err != nil {
					return RevenueRow{}, 0, err
				}
				oneTimeCash[m] = v
			}
			freshOneTime = spread(oneTimeCash, n)
		}
	}

	var existingRecurring, existingOneTime fiscal.Series
	if s.BaseExitYear != "" {
		if ov, ok := c.ExistingRevenue[s.BaseExitYear]; ok {
			existingRecurring = ov.Recurring
			existingOneTime = ov.OneTime
			row.ExistingOverride = true
		} else {
			existingRecurring = fiscal.Constant(b.exit * rate.ExistingRecurringRate)
			if p.ExistingOneTime && n > 0 {
				existingOneTime = fiscal.Constant(b.exit * rate.ExistingOneTimeRate / float64(n))
			}
		}
	}

	row.FreshRecurring = freshRecurring.Round2()
	row.ExistingRecurring = existingRecurring.Round2()
	row.FreshOneTime = freshOneTime.Round2()
	row.ExistingOneTime = existingOneTime.Round2()
	row.Recurring = NewLine(row.FreshRecurring.Add(row.ExistingRecurring))
	row.OneTime = NewLine(row.FreshOneTime.Add(row.ExistingOneTime))
	row.Revenue = NewLine(row.Recurring.Monthly.Add(row.OneTime.Monthly))

	// existing one-time revenue was collected in earlier years; only fresh one-time is cash
	shift := c.Offsets.RevenueCashflow
	row.CashRecurring = NewLine(timing.Shift(row.Recurring.Monthly, shift))
	row.CashOneTime = NewLine(timing.Shift(oneTimeCash.Round2(), shift))
	dropped := timing.Dropped(row.Recurring.Monthly, shift) + timing.Dropped(oneTimeCash.Round2(), shift)

	return row, dropped, nil
}
