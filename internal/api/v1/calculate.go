package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prabhakar2095/Budget-Working/internal/calculator"
	"github.com/Prabhakar2095/Budget-Working/internal/combination"
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

type volumeRequest struct {
	Volume fiscal.Series `json:"volume"`
}

type volumeResponse struct {
	Months      []string  `json:"months"`
	Volume      []float64 `json:"volume"`
	Cumulative  []float64 `json:"cumulative"`
	TotalVolume float64   `json:"totalVolume"`
}

type rollupRequest struct {
	LOB          string              `json:"lob"`
	FiscalYear   string              `json:"fiscalYear"`
	PriorYears   []string            `json:"priorYears"`
	Dimensions   []string            `json:"dimensions"`
	Combinations []model.Combination `json:"combinations"`
}

type rateRow struct {
	Dimensions map[string]string `json:"dimensions"`
	model.RateEntry
}

type itemRateRow struct {
	Item       string            `json:"item"`
	Dimensions map[string]string `json:"dimensions"`
	model.ItemRate
}

type overrideRow struct {
	Item       string        `json:"item"`
	FiscalYear string        `json:"fiscalYear"`
	Months     fiscal.Series `json:"months"`
}

// revenueRequest calculation input with list-shaped rates and overrides
type revenueRequest struct {
	LOB                    string              `json:"lob"`
	FiscalYear             string              `json:"fiscalYear"`
	PriorYears             []string            `json:"priorYears"`
	Volumes                []model.Combination `json:"volumes"`
	Rates                  []rateRow           `json:"rates"`
	FormulaRecurring       string              `json:"formulaRecurring"`
	FormulaOneTime         string              `json:"formulaOneTime"`
	BaseExitYear           string              `json:"baseExitYear"`
	IncludeFreshVolumes    *bool               `json:"includeFreshVolumes"`
	OpexItems              []model.OpexItem    `json:"opexItems"`
	OpexRates              []itemRateRow       `json:"opexRates"`
	CapexItems             []model.CapexItem   `json:"capexItems"`
	CapexRates             []itemRateRow       `json:"capexRates"`
	ExistingOpexOverrides  []overrideRow       `json:"existingOpexOverrides"`
	ExistingCapexOverrides []overrideRow       `json:"existingCapexOverrides"`
	ProvisionPct           float64             `json:"provisionPct"`
	CustomerPenaltyPct     float64             `json:"customerPenaltyPct"`
	VendorPenaltyPct       float64             `json:"vendorPenaltyPct"`
}

// snapshot converts the request into a calculation snapshot; rows are keyed by signature.
func (r revenueRequest) snapshot() (*model.Snapshot, error) {
	lob := model.LOBFTTH
	if r.LOB != "" {
		parsed, ok := model.ParseLOB(r.LOB)
		if !ok {
			return nil, model.Invalid("unknown line of business %q", r.LOB)
		}
		lob = parsed
	}
	s := &model.Snapshot{
		FiscalYear:         r.FiscalYear,
		PriorYears:         r.PriorYears,
		LOB:                lob,
		Combos:             r.Volumes,
		Rates:              model.Rates{},
		FormulaRecurring:   r.FormulaRecurring,
		FormulaOneTime:     r.FormulaOneTime,
		BaseExitYear:       r.BaseExitYear,
		IncludeFresh:       r.IncludeFreshVolumes == nil || *r.IncludeFreshVolumes,
		OpexItems:          r.OpexItems,
		OpexRates:          model.ItemRates{},
		CapexItems:         r.CapexItems,
		CapexRates:         model.ItemRates{},
		ProvisionPct:       r.ProvisionPct,
		CustomerPenaltyPct: r.CustomerPenaltyPct,
		VendorPenaltyPct:   r.VendorPenaltyPct,
	}
	for _, row := range r.Rates {
		s.Rates[model.Signature(row.Dimensions)] = row.RateEntry
	}
	for _, row := range r.OpexRates {
		s.OpexRates.Set(row.Item, model.Signature(row.Dimensions), row.ItemRate)
	}
	for _, row := range r.CapexRates {
		s.CapexRates.Set(row.Item, model.Signature(row.Dimensions), row.ItemRate)
	}
	s.ExistingOpexOverrides = overridesOf(r.ExistingOpexOverrides)
	s.ExistingCapexOverrides = overridesOf(r.ExistingCapexOverrides)
	s.EnsureMaps()
	return s, nil
}

func overridesOf(rows []overrideRow) model.Overrides {
	out := model.Overrides{}
	for _, row := range rows {
		out.Set(row.Item, row.FiscalYear, row.Months)
	}
	return out
}

type generateRequest struct {
	LOB      string              `json:"lob"`
	Registry *dimension.Registry `json:"registry"`
	Existing []model.Combination `json:"existing"`
	Preserve *bool               `json:"preserve"`
}

// CalculateVolume cumulative view of one monthly volume series
// POST /api/v1/volume/calculate
func (h *Handler) CalculateVolume(c *gin.Context) {
	var req volumeRequest
	if !bindJSON(c, &req) {
		return
	}
	cum := req.Volume.Cumulative().Round2()
	vol := req.Volume.Round2()
	c.JSON(http.StatusOK, volumeResponse{
		Months:      fiscal.Months[:],
		Volume:      vol[:],
		Cumulative:  cum[:],
		TotalVolume: vol.Sum(),
	})
}

// VolumeRollup POST /api/v1/volume/multiyear/dynamic
func (h *Handler) VolumeRollup(c *gin.Context) {
	var req rollupRequest
	if !bindJSON(c, &req) {
		return
	}
	year, err := fiscal.Parse(req.FiscalYear)
	if err != nil {
		respondError(c, err)
		return
	}
	prior := req.PriorYears
	if len(prior) == 0 {
		prior = year.PriorYears()
	}
	c.JSON(http.StatusOK, calculator.ComputeVolumeRollup(req.Combinations, year.String(), prior, req.Dimensions))
}

// CalculateRevenue stateless revenue, P&L and cashflow calculation
// POST /api/v1/revenue/calculate
func (h *Handler) CalculateRevenue(c *gin.Context) {
	var req revenueRequest
	if !bindJSON(c, &req) {
		return
	}
	snap, err := req.snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := calculator.ComputeRevenue(snap)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GenerateCombinations expands a registry without touching the session
// POST /api/v1/combinations/generate
func (h *Handler) GenerateCombinations(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}
	lob, ok := model.ParseLOB(req.LOB)
	if !ok {
		respondError(c, model.Invalid("unknown line of business %q", req.LOB))
		return
	}
	reg := dimension.Default(lob.SiteAxis())
	if req.Registry != nil {
		reg = *req.Registry
	}
	if err := reg.Validate(); err != nil {
		respondError(c, err)
		return
	}
	preserve := req.Preserve == nil || *req.Preserve
	c.JSON(http.StatusOK, combination.Generate(reg, lob, req.Existing, preserve))
}
