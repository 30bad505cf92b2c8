package calculator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// DefaultSpreadMonths one-time revenue recognition period for fibre lines
const DefaultSpreadMonths = 180

// Profile revenue rules that differ per line of business
type Profile struct {
	LOB              model.LOB
	OneTime          bool // whether the line books one-time revenue at all
	SpreadMonths     int  // straight-line recognition period of one-time revenue
	LockInSpread     bool // spread = lock-in years x 12, read from the combination
	ExistingOneTime  bool // existing base contributes one-time revenue
	StaggerRecurring bool // half of recurring revenue starts two months late
}

var profiles = map[model.LOB]Profile{
	model.LOBFTTH:      {LOB: model.LOBFTTH, OneTime: true, SpreadMonths: DefaultSpreadMonths, ExistingOneTime: true},
	model.LOBDarkFiber: {LOB: model.LOBDarkFiber, OneTime: true, SpreadMonths: DefaultSpreadMonths, ExistingOneTime: true},
	model.LOBOHFC:      {LOB: model.LOBOHFC, OneTime: true, SpreadMonths: 12},
	model.LOBSDU:       {LOB: model.LOBSDU, OneTime: true, LockInSpread: true, ExistingOneTime: true, StaggerRecurring: true},
	model.LOBSmallCell: {LOB: model.LOBSmallCell},
	model.LOBActive:    {LOB: model.LOBActive},
}

// ProfileFor rules of a line of business; unknown lines use the FTTH rules.
func ProfileFor(lob model.LOB) Profile {
	if p, ok := profiles[lob]; ok {
		return p
	}
	p := profiles[model.LOBFTTH]
	p.LOB = lob
	return p
}

// Spread one-time spread months for a combination; 0 when the line has no one-time revenue.
func (p Profile) Spread(c model.Combination) int {
	if !p.OneTime {
		return 0
	}
	if p.LockInSpread {
		return LockInYears(c) * 12
	}
	return p.SpreadMonths
}

var leadingNumber = regexp.MustCompile(`\d+(\.\d+)?`)

// LockInYears reads the "lock in" dimension (any spacing or case); defaults to 1 year.
func LockInYears(c model.Combination) int {
	for axis, value := range c.Dimensions {
		if normalizeAxis(axis) != "lockin" {
			continue
		}
		m := leadingNumber.FindString(value)
		if m == "" {
			return 1
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil || f < 1 {
			return 1
		}
		return int(f)
	}
	return 1
}

func normalizeAxis(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
