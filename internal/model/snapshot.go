package model

import (
	"encoding/json"
	"fmt"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

// Snapshot the full modelling state of one line of business for one fiscal year.
// It is also the input of a revenue calculation.
type Snapshot struct {
	FiscalYear string              `json:"fiscalYear" validate:"required"`
	PriorYears []string            `json:"priorYears"`
	LOB        LOB                 `json:"lob" validate:"required"`
	Registry   *dimension.Registry `json:"registry,omitempty"`
	Combos     []Combination       `json:"combos" validate:"dive"`
	Rates      Rates               `json:"rates"`

	FormulaRecurring string `json:"formulaRecurring"`
	FormulaOneTime   string `json:"formulaOneTime"`
	BaseExitYear     string `json:"baseExitYear"`
	IncludeFresh     bool   `json:"includeFresh"`

	OpexItems              []OpexItem  `json:"opexItems" validate:"dive"`
	OpexRates              ItemRates   `json:"opexRates"`
	CapexItems             []CapexItem `json:"capexItems" validate:"dive"`
	CapexRates             ItemRates   `json:"capexRates"`
	ExistingOpexOverrides  Overrides   `json:"existingOpexOverrides"`
	ExistingCapexOverrides Overrides   `json:"existingCapexOverrides"`

	ProvisionPct       float64 `json:"provisionPct" validate:"gte=0,lte=100"`
	CustomerPenaltyPct float64 `json:"customerPenaltyPct" validate:"gte=0,lte=100"`
	VendorPenaltyPct   float64 `json:"vendorPenaltyPct" validate:"gte=0,lte=100"`
}

// UnmarshalJSON defaults IncludeFresh to true when absent.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	aux := struct {
		*alias
		IncludeFresh *bool `json:"includeFresh"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.IncludeFresh = aux.IncludeFresh == nil || *aux.IncludeFresh
	return nil
}

// Validate tag rules plus fiscal year format, signature uniqueness and base exit year.
func (s *Snapshot) Validate() error {
	var problems []string
	if err := Validate(s); err != nil {
		ve, ok := AsValidation(err)
		if !ok {
			return err
		}
		problems = append(problems, ve.Problems...)
	}
	if s.FiscalYear != "" {
		if _, err := fiscal.Parse(s.FiscalYear); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if s.BaseExitYear != "" {
		if _, err := fiscal.Parse(s.BaseExitYear); err != nil {
			problems = append(problems, fmt.Sprintf("baseExitYear: %v", err))
		}
	}
	seen := make(map[string]bool, len(s.Combos))
	for i, c := range s.Combos {
		for axis, v := range c.Dimensions {
			if axis == "" || v == "" {
				problems = append(problems, fmt.Sprintf("combos[%d] has an empty dimension key or value", i))
				break
			}
			if !dimension.SafeToken(axis) || !dimension.SafeToken(v) {
				problems = append(problems, fmt.Sprintf("combos[%d] dimension %s=%s must not contain '|' or '='", i, axis, v))
				break
			}
		}
		key := c.Key()
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate combination %q", key))
		}
		seen[key] = true
	}
	return Collect(problems)
}

// Axes dimension axis order used by legacy rate keys
func (s *Snapshot) Axes() []string {
	axes := []string{dimension.AxisCustomer, s.LOB.SiteAxis(), dimension.AxisType}
	if s.Registry != nil {
		for _, l := range s.Registry.Levels {
			axes = append(axes, l.Name)
		}
	}
	return axes
}

// NormalizeRateKeys rewrites legacy value-join rate keys to combination signatures.
// Keys that already are signatures, or that match no combination, are left alone.
func (s *Snapshot) NormalizeRateKeys() int {
	axes := s.Axes()
	legacy := make(map[string]string, len(s.Combos))
	current := make(map[string]bool, len(s.Combos))
	for _, c := range s.Combos {
		current[c.Key()] = true
		legacy[LegacyKey(c.Dimensions, axes)] = c.Key()
	}

	migrated := 0
	for key, rate := range s.Rates {
		if current[key] {
			continue
		}
		if sig, ok := legacy[key]; ok {
			if _, exists := s.Rates[sig]; !exists {
				s.Rates[sig] = rate
			}
			delete(s.Rates, key)
			migrated++
		}
	}
	for _, rates := range []ItemRates{s.OpexRates, s.CapexRates} {
		for _, byCombo := range rates {
			for key, rate := range byCombo {
				if current[key] {
					continue
				}
				if sig, ok := legacy[key]; ok {
					if _, exists := byCombo[sig]; !exists {
						byCombo[sig] = rate
					}
					delete(byCombo, key)
					migrated++
				}
			}
		}
	}
	return migrated
}

// EnsureMaps allocates nil maps so callers can write without checks.
func (s *Snapshot) EnsureMaps() {
	for i := range s.Combos {
		s.Combos[i].EnsureMaps()
	}
	if s.Rates == nil {
		s.Rates = Rates{}
	}
	if s.OpexRates == nil {
		s.OpexRates = ItemRates{}
	}
	if s.CapexRates == nil {
		s.CapexRates = ItemRates{}
	}
	if s.ExistingOpexOverrides == nil {
		s.ExistingOpexOverrides = Overrides{}
	}
	if s.ExistingCapexOverrides == nil {
		s.ExistingCapexOverrides = Overrides{}
	}
}

// Clone deep copy; calculations run on a clone so concurrent edits never leak in.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.PriorYears = append([]string(nil), s.PriorYears...)
	if s.Registry != nil {
		reg := s.Registry.Clone()
		out.Registry = &reg
	}
	out.Combos = make([]Combination, len(s.Combos))
	for i, c := range s.Combos {
		out.Combos[i] = c.Clone()
	}
	out.Rates = make(Rates, len(s.Rates))
	for k, v := range s.Rates {
		out.Rates[k] = v
	}
	out.OpexItems = append([]OpexItem(nil), s.OpexItems...)
	out.CapexItems = append([]CapexItem(nil), s.CapexItems...)
	out.OpexRates = cloneItemRates(s.OpexRates)
	out.CapexRates = cloneItemRates(s.CapexRates)
	out.ExistingOpexOverrides = cloneOverrides(s.ExistingOpexOverrides)
	out.ExistingCapexOverrides = cloneOverrides(s.ExistingCapexOverrides)
	return &out
}

// HasModelData reports whether discarding the snapshot would lose user input.
func (s *Snapshot) HasModelData() bool {
	if len(s.Rates) > 0 {
		return true
	}
	for _, c := range s.Combos {
		if len(c.Volumes) > 0 || len(c.ExitVolumes) > 0 || len(c.ExistingRevenue) > 0 {
			return true
		}
	}
	return len(s.ExistingOpexOverrides) > 0 || len(s.ExistingCapexOverrides) > 0
}

func cloneItemRates(in ItemRates) ItemRates {
	out := make(ItemRates, len(in))
	for item, byCombo := range in {
		inner := make(map[string]ItemRate, len(byCombo))
		for k, v := range byCombo {
			inner[k] = v
		}
		out[item] = inner
	}
	return out
}

func cloneOverrides(in Overrides) Overrides {
	out := make(Overrides, len(in))
	for item, byYear := range in {
		inner := make(map[string]fiscal.Series, len(byYear))
		for k, v := range byYear {
			inner[k] = v
		}
		out[item] = inner
	}
	return out
}
