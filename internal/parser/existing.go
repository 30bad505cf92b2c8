package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// Fixed upload column headers.
const (
	ColCustomer    = "Customer"
	ColCircle      = "Circle"
	ColSiteType    = "Site Type"
	ColType        = "Type"
	ColRevenueType = "Revenue Type"
	ColFiscalYear  = "Fiscal Year"
	ColTotal       = "Total"
	ColExitVolume  = "Exit Volume"
	ColOpexItem    = "Opex Item"
	ColCapexItem   = "Capex Item"
)

// axisColumns fixed dimension headers and their axis names
var axisColumns = map[string]string{
	NormalizeColumnName(ColCustomer): dimension.AxisCustomer,
	NormalizeColumnName(ColCircle):   dimension.AxisCircle,
	NormalizeColumnName(ColSiteType): dimension.AxisSiteType,
	NormalizeColumnName(ColType):     dimension.AxisType,
}

// ExistingRevenueRow uploaded existing revenue of one combination and fiscal year
type ExistingRevenueRow struct {
	Dimensions map[string]string `json:"dimensions"`
	FiscalYear string            `json:"fiscalYear"`
	ExitVolume float64           `json:"exitVolume"`
	Recurring  fiscal.Series     `json:"recurring"`
	OneTime    fiscal.Series     `json:"oneTime"`
}

// OverrideRow uploaded existing amount of one opex or capex item
type OverrideRow struct {
	Item       string        `json:"item"`
	FiscalYear string        `json:"fiscalYear"`
	Months     fiscal.Series `json:"months"`
}

// rowErrors collects per-row problems; row numbers are spreadsheet lines (header is line 1).
type rowErrors []string

func (e *rowErrors) add(line int, format string, args ...any) {
	*e = append(*e, fmt.Sprintf("Row %d: ", line)+fmt.Sprintf(format, args...))
}

func (e rowErrors) err() error {
	return model.Collect(e)
}

// parseAmount blank is 0; negatives and non-numbers are rejected.
func parseAmount(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative value %s", raw)
	}
	return d.InexactFloat64(), nil
}

func parseMonths(c columns, row []string) (fiscal.Series, error) {
	var s fiscal.Series
	for i, m := range fiscal.Months {
		v, err := parseAmount(c.cell(row, m))
		if err != nil {
			return s, fmt.Errorf("%s for %s", err, m)
		}
		s[i] = v
	}
	return s, nil
}

func missingColumns(c columns, required []string) error {
	var missing []string
	for _, name := range required {
		if !c.has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return model.Invalid("Missing columns: %s", strings.Join(missing, ", "))
}

func revenueKind(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "recurring":
		return "recurring", true
	case "one time", "one-time", "onetime", "one_time":
		return "one_time", true
	}
	return "", false
}

// dimensionColumns header indexes that carry dimension values: the fixed axes
// plus every column the template does not otherwise know (extra levels).
func dimensionColumns(t *Table) map[int]string {
	known := map[string]bool{
		NormalizeColumnName(ColRevenueType): true,
		NormalizeColumnName(ColFiscalYear):  true,
		NormalizeColumnName(ColTotal):       true,
		NormalizeColumnName(ColExitVolume):  true,
	}
	for _, m := range fiscal.Months {
		known[NormalizeColumnName(m)] = true
	}
	out := map[int]string{}
	for i, h := range t.Header {
		n := NormalizeColumnName(h)
		if h == "" || known[n] {
			continue
		}
		if axis, ok := axisColumns[n]; ok {
			out[i] = axis
			continue
		}
		out[i] = h
	}
	return out
}

// ParseExistingRevenue validates and aggregates an existing revenue upload.
// Duplicate rows are summed per (dimensions, fiscal year, revenue type); the result
// has one row per (dimensions, fiscal year) in first-seen order. Any problem rejects
// the whole file with a *model.ValidationError listing every bad row.
func ParseExistingRevenue(t *Table) ([]ExistingRevenueRow, error) {
	c := t.columns()
	required := append([]string{ColCustomer, ColType, ColRevenueType, ColFiscalYear, ColExitVolume}, fiscal.Months[:]...)
	if err := missingColumns(c, required); err != nil {
		return nil, err
	}
	if !c.has(ColCircle) && !c.has(ColSiteType) {
		return nil, model.Invalid("Missing columns: %s or %s", ColCircle, ColSiteType)
	}

	dimCols := dimensionColumns(t)
	var errs rowErrors
	index := map[string]int{}
	var out []ExistingRevenueRow

	for idx, row := range t.Rows {
		dims := make(map[string]string, len(dimCols))
		blank := false
		for i, axis := range dimCols {
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v == "" {
				blank = true
				break
			}
			dims[axis] = v
		}
		fy := c.cell(row, ColFiscalYear)
		kindRaw := c.cell(row, ColRevenueType)
		if blank || fy == "" || kindRaw == "" {
			errs.add(t.line(idx), "blank mandatory field")
			continue
		}
		kind, ok := revenueKind(kindRaw)
		if !ok {
			errs.add(t.line(idx), "invalid Revenue Type '%s'", kindRaw)
			continue
		}
		if _, err := fiscal.Parse(fy); err != nil {
			errs.add(t.line(idx), "invalid Fiscal Year '%s'", fy)
			continue
		}
		months, err := parseMonths(c, row)
		if err != nil {
			errs.add(t.line(idx), "%v", err)
			continue
		}
		exit, err := parseAmount(c.cell(row, ColExitVolume))
		if err != nil {
			errs.add(t.line(idx), "invalid Exit Volume: %v", err)
			continue
		}

		key := model.Signature(dims) + "#" + fy
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, ExistingRevenueRow{Dimensions: dims, FiscalYear: fy})
		}
		r := &out[i]
		r.ExitVolume += exit
		if kind == "recurring" {
			r.Recurring = r.Recurring.Add(months)
		} else {
			r.OneTime = r.OneTime.Add(months)
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseExistingOpex validates and aggregates an existing opex upload.
func ParseExistingOpex(t *Table) ([]OverrideRow, error) {
	return parseOverrides(t, ColOpexItem)
}

// ParseExistingCapex validates and aggregates an existing capex upload.
func ParseExistingCapex(t *Table) ([]OverrideRow, error) {
	return parseOverrides(t, ColCapexItem)
}

func parseOverrides(t *Table, itemCol string) ([]OverrideRow, error) {
	c := t.columns()
	if err := missingColumns(c, append([]string{itemCol, ColFiscalYear}, fiscal.Months[:]...)); err != nil {
		return nil, err
	}

	var errs rowErrors
	index := map[string]int{}
	var out []OverrideRow
	for idx, row := range t.Rows {
		item := c.cell(row, itemCol)
		fy := c.cell(row, ColFiscalYear)
		if item == "" || fy == "" {
			errs.add(t.line(idx), "blank %s or %s", itemCol, ColFiscalYear)
			continue
		}
		if _, err := fiscal.Parse(fy); err != nil {
			errs.add(t.line(idx), "invalid Fiscal Year '%s'", fy)
			continue
		}
		months, err := parseMonths(c, row)
		if err != nil {
			errs.add(t.line(idx), "%v", err)
			continue
		}

		key := item + "#" + fy
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, OverrideRow{Item: item, FiscalYear: fy})
		}
		out[i].Months = out[i].Months.Add(months)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return out, nil
}
