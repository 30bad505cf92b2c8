package calculator

import (
	"sort"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// RollupRow raw design-time volume of one included combination
type RollupRow struct {
	Signature        string             `json:"signature"`
	Dimensions       map[string]string  `json:"dimensions"`
	Months           fiscal.Series      `json:"months"`
	Total            float64            `json:"total"`
	PriorExitVolumes map[string]float64 `json:"priorExitVolumes"`
}

// DimensionTotal volume of every combination sharing one axis value
type DimensionTotal struct {
	Value  string        `json:"value"`
	Months fiscal.Series `json:"months"`
	Total  float64       `json:"total"`
}

// VolumeRollup volume table of a fiscal year
type VolumeRollup struct {
	FiscalYear      string                      `json:"fiscalYear"`
	PriorYears      []string                    `json:"priorYears"`
	Rows            []RollupRow                 `json:"rows"`
	Totals          fiscal.Series               `json:"totals"`
	GrandTotal      float64                     `json:"grandTotal"`
	DimensionTotals map[string][]DimensionTotal `json:"dimensionTotals"`
}

// ComputeVolumeRollup sums unshifted fresh volumes of the included combinations.
// Dimension subtables follow axes; when axes is empty they follow the axes seen on the rows.
// Values keep first-seen order.
func ComputeVolumeRollup(combos []model.Combination, fy string, priorYears, axes []string) VolumeRollup {
	out := VolumeRollup{
		FiscalYear:      fy,
		PriorYears:      priorYears,
		Rows:            []RollupRow{},
		DimensionTotals: map[string][]DimensionTotal{},
	}
	if len(axes) == 0 {
		axes = seenAxes(combos)
	}

	index := make(map[string]map[string]int, len(axes))
	for _, axis := range axes {
		index[axis] = map[string]int{}
		out.DimensionTotals[axis] = []DimensionTotal{}
	}

	for _, c := range combos {
		if !c.Included {
			continue
		}
		months := c.VolumeSeries(fy)
		rounded := months.Round2()
		row := RollupRow{
			Signature:        c.Key(),
			Dimensions:       c.Dimensions,
			Months:           rounded,
			Total:            rounded.Sum(),
			PriorExitVolumes: make(map[string]float64, len(priorYears)),
		}
		for _, py := range priorYears {
			row.PriorExitVolumes[py] = c.ExitVolume(py)
		}
		out.Rows = append(out.Rows, row)
		out.Totals = out.Totals.Add(months)

		for _, axis := range axes {
			v, ok := c.Dimensions[axis]
			if !ok {
				continue
			}
			i, seen := index[axis][v]
			if !seen {
				i = len(out.DimensionTotals[axis])
				index[axis][v] = i
				out.DimensionTotals[axis] = append(out.DimensionTotals[axis], DimensionTotal{Value: v})
			}
			dt := &out.DimensionTotals[axis][i]
			dt.Months = dt.Months.Add(months)
		}
	}

	out.Totals = out.Totals.Round2()
	out.GrandTotal = out.Totals.Sum()
	for axis := range out.DimensionTotals {
		for i := range out.DimensionTotals[axis] {
			dt := &out.DimensionTotals[axis][i]
			dt.Months = dt.Months.Round2()
			dt.Total = dt.Months.Sum()
		}
	}
	return out
}

// seenAxes dimension keys in the order first met, type and site axes included.
func seenAxes(combos []model.Combination) []string {
	var axes []string
	seen := map[string]bool{}
	for _, c := range combos {
		for _, k := range sortedKeys(c.Dimensions) {
			if !seen[k] {
				seen[k] = true
				axes = append(axes, k)
			}
		}
	}
	return axes
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
