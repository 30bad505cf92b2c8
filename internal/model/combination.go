package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

// Offsets month offsets of a combination
type Offsets struct {
	RevenueRecognition int `json:"revenueRecognition" validate:"gte=0"` // fresh revenue recognition lag
	RevenueCashflow    int `json:"revenueCashflow" validate:"gte=0"`    // revenue / opex cash lag
	CapexRecognition   int `json:"capexRecognition" validate:"gte=0"`
	CapexCashflow      int `json:"capexCashflow" validate:"gte=0"`
}

// ExistingRevenue uploaded existing revenue for one fiscal year
type ExistingRevenue struct {
	Recurring fiscal.Series `json:"recurring"`
	OneTime   fiscal.Series `json:"oneTime"`
}

// Combination one cell of the dimension product
type Combination struct {
	Signature       string                     `json:"signature"`
	Dimensions      map[string]string          `json:"dimensions" validate:"required,min=1"`
	Included        bool                       `json:"included"`
	Volumes         map[string]fiscal.Series   `json:"volumes"`     // fiscal year -> fresh monthly volume
	ExitVolumes     map[string]float64         `json:"exitVolumes"` // fiscal year -> closing cumulative volume
	ExistingRevenue map[string]ExistingRevenue `json:"existingRevenue,omitempty"`
	Offsets         Offsets                    `json:"offsets"`
}

// NewCombination fresh record for a dimension tuple: included, no data, zero offsets.
func NewCombination(dims map[string]string) Combination {
	return Combination{
		Signature:   Signature(dims),
		Dimensions:  dims,
		Included:    true,
		Volumes:     map[string]fiscal.Series{},
		ExitVolumes: map[string]float64{},
	}
}

// UnmarshalJSON defaults Included to true when absent and fills the signature.
func (c *Combination) UnmarshalJSON(data []byte) error {
	type alias Combination
	aux := struct {
		*alias
		Included *bool `json:"included"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Included = aux.Included == nil || *aux.Included
	if c.Signature == "" && len(c.Dimensions) > 0 {
		c.Signature = Signature(c.Dimensions)
	}
	return nil
}

// EnsureMaps allocates the per-year maps a sparse record may lack.
func (c *Combination) EnsureMaps() {
	if c.Volumes == nil {
		c.Volumes = map[string]fiscal.Series{}
	}
	if c.ExitVolumes == nil {
		c.ExitVolumes = map[string]float64{}
	}
	if c.ExistingRevenue == nil {
		c.ExistingRevenue = map[string]ExistingRevenue{}
	}
}

// Key canonical signature, computed from dimensions when not set
func (c Combination) Key() string {
	if c.Signature != "" {
		return c.Signature
	}
	return Signature(c.Dimensions)
}

// Type transaction type of the combination
func (c Combination) Type() string {
	return c.Dimensions[dimension.AxisType]
}

// IsDecom decommissioning combinations reduce the installed base.
func (c Combination) IsDecom() bool {
	return strings.EqualFold(strings.TrimSpace(c.Type()), TypeDecom)
}

// VolumeSeries fresh volume for a fiscal year (zero series when unset)
func (c Combination) VolumeSeries(fy string) fiscal.Series {
	return c.Volumes[fy]
}

// ExitVolume closing volume of a fiscal year (0 when unset)
func (c Combination) ExitVolume(fy string) float64 {
	return c.ExitVolumes[fy]
}

// Clone deep copy
func (c Combination) Clone() Combination {
	out := c
	out.Dimensions = make(map[string]string, len(c.Dimensions))
	for k, v := range c.Dimensions {
		out.Dimensions[k] = v
	}
	out.Volumes = make(map[string]fiscal.Series, len(c.Volumes))
	for k, v := range c.Volumes {
		out.Volumes[k] = v
	}
	out.ExitVolumes = make(map[string]float64, len(c.ExitVolumes))
	for k, v := range c.ExitVolumes {
		out.ExitVolumes[k] = v
	}
	if c.ExistingRevenue != nil {
		out.ExistingRevenue = make(map[string]ExistingRevenue, len(c.ExistingRevenue))
		for k, v := range c.ExistingRevenue {
			out.ExistingRevenue[k] = v
		}
	}
	return out
}

// Signature canonical identity of a dimension tuple: axis names sorted, "axis=value" joined by "|".
func Signature(dims map[string]string) string {
	axes := make([]string, 0, len(dims))
	for k := range dims {
		axes = append(axes, k)
	}
	sort.Strings(axes)
	parts := make([]string, len(axes))
	for i, k := range axes {
		parts[i] = k + "=" + dims[k]
	}
	return strings.Join(parts, "|")
}

// LegacyKey value-join key used by older snapshots to key rates: values in axis order joined by "|".
func LegacyKey(dims map[string]string, axes []string) string {
	values := make([]string, 0, len(axes))
	for _, a := range axes {
		if v, ok := dims[a]; ok {
			values = append(values, v)
		}
	}
	return strings.Join(values, "|")
}
