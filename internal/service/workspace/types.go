package workspace

import (
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// State what the client sees of the current planning session
type State struct {
	Locked            bool                `json:"locked"`
	FiscalYear        string              `json:"fiscalYear"`
	PriorYears        []string            `json:"priorYears"`
	LOB               model.LOB           `json:"lob"`
	Registry          *dimension.Registry `json:"registry,omitempty"`
	Combinations      int                 `json:"combinations"`
	Dirty             bool                `json:"dirty"`   // registry changed since the last generate
	Unsaved           bool                `json:"unsaved"` // edits not yet persisted
	RegistrySignature string              `json:"registrySignature"`
	CanUndo           bool                `json:"canUndo"`
	Assumptions       Assumptions         `json:"assumptions"`
}

// Assumptions session-wide calculation inputs
type Assumptions struct {
	ProvisionPct       float64 `json:"provisionPct" validate:"gte=0,lte=100"`
	CustomerPenaltyPct float64 `json:"customerPenaltyPct" validate:"gte=0,lte=100"`
	VendorPenaltyPct   float64 `json:"vendorPenaltyPct" validate:"gte=0,lte=100"`
	FormulaRecurring   string  `json:"formulaRecurring"`
	FormulaOneTime     string  `json:"formulaOneTime"`
	BaseExitYear       string  `json:"baseExitYear"`
	IncludeFresh       bool    `json:"includeFresh"`
}

// Registry edit actions.
const (
	ActionAddValue    = "add_value"
	ActionRemoveValue = "remove_value"
	ActionAddLevel    = "add_level"
	ActionRemoveLevel = "remove_level"
	ActionRenameLevel = "rename_level"
)

// RegistryEdit one dimension registry mutation
type RegistryEdit struct {
	Action  string `json:"action" validate:"required,oneof=add_value remove_value add_level remove_level rename_level"`
	Axis    string `json:"axis"`
	Value   string `json:"value"`
	Name    string `json:"name"`
	NewName string `json:"newName"`
}

// CombinationPatch partial update of one combination; nil fields are left alone.
type CombinationPatch struct {
	Included        *bool                            `json:"included"`
	Volumes         map[string]fiscal.Series         `json:"volumes"`
	ExitVolumes     map[string]float64               `json:"exitVolumes"`
	ExistingRevenue map[string]model.ExistingRevenue `json:"existingRevenue"`
	Offsets         *model.Offsets                   `json:"offsets"`
	Rate            *model.RateEntry                 `json:"rate"`
}

// ItemRatePatch rate of an opex or capex item for one combination
type ItemRatePatch struct {
	Item      string         `json:"item" validate:"required"`
	Signature string         `json:"signature" validate:"required"`
	Rate      model.ItemRate `json:"rate"`
}

// UploadSummary result of a merged upload
type UploadSummary struct {
	Rows    int `json:"rows"`
	Applied int `json:"applied"`
}
