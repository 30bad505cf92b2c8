package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prabhakar2095/Budget-Working/internal/calculator"
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/service/workspace"
)

type selectionRequest struct {
	FiscalYear string `json:"fiscalYear"`
	LOB        string `json:"lob"`
	Confirm    bool   `json:"confirm"`
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

type generateWorkspaceRequest struct {
	Preserve *bool `json:"preserve"`
}

type patchRequest struct {
	Signature string `json:"signature"`
	workspace.CombinationPatch
}

// GetWorkspace GET /api/v1/workspace
func (h *Handler) GetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, h.workspace.State())
}

// LockWorkspace selects fiscal year and LOB; 409 with confirmRequired when unsaved data would be lost
// POST /api/v1/workspace/lock
func (h *Handler) LockWorkspace(c *gin.Context) {
	var req selectionRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.workspace.Lock(req.FiscalYear, req.LOB, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ResetWorkspace POST /api/v1/workspace/reset
func (h *Handler) ResetWorkspace(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.workspace.Reset(req.Confirm); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.workspace.State())
}

// EditRegistry applies one add/remove/rename to the dimension registry
// POST /api/v1/workspace/registry
func (h *Handler) EditRegistry(c *gin.Context) {
	var edit workspace.RegistryEdit
	if !bindJSON(c, &edit) {
		return
	}
	st, err := h.workspace.EditRegistry(edit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ReplaceRegistry PUT /api/v1/workspace/registry
func (h *Handler) ReplaceRegistry(c *gin.Context) {
	var reg dimension.Registry
	if !bindJSON(c, &reg) {
		return
	}
	st, err := h.workspace.SetRegistry(reg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GenerateWorkspace regenerates combinations; existing data is kept unless preserve is false
// POST /api/v1/workspace/generate
func (h *Handler) GenerateWorkspace(c *gin.Context) {
	var req generateWorkspaceRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.workspace.Generate(req.Preserve == nil || *req.Preserve)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "state": h.workspace.State()})
}

// ListWorkspaceCombinations GET /api/v1/workspace/combinations
func (h *Handler) ListWorkspaceCombinations(c *gin.Context) {
	combos, err := h.workspace.Combinations()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": combos})
}

// PatchWorkspaceCombination PATCH /api/v1/workspace/combinations
func (h *Handler) PatchWorkspaceCombination(c *gin.Context) {
	var req patchRequest
	if !bindJSON(c, &req) {
		return
	}
	combo, err := h.workspace.PatchCombination(req.Signature, req.CombinationPatch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, combo)
}

// SetAssumptions PUT /api/v1/workspace/assumptions
func (h *Handler) SetAssumptions(c *gin.Context) {
	var a workspace.Assumptions
	if !bindJSON(c, &a) {
		return
	}
	st, err := h.workspace.SetAssumptions(a)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// SetOpexRate PUT /api/v1/workspace/opex-rates
func (h *Handler) SetOpexRate(c *gin.Context) {
	h.setItemRate(c, h.workspace.SetOpexRate)
}

// SetCapexRate PUT /api/v1/workspace/capex-rates
func (h *Handler) SetCapexRate(c *gin.Context) {
	h.setItemRate(c, h.workspace.SetCapexRate)
}

func (h *Handler) setItemRate(c *gin.Context, set func(workspace.ItemRatePatch) error) {
	var p workspace.ItemRatePatch
	if !bindJSON(c, &p) {
		return
	}
	if err := set(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": p.Item, "signature": p.Signature, "rate": p.Rate})
}

// CalculateWorkspace runs the revenue, P&L and cashflow calculation on the session
// POST /api/v1/workspace/calculate
func (h *Handler) CalculateWorkspace(c *gin.Context) {
	res, err := h.workspace.Calculate()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// WorkspaceIndicators headline figures grouped for display
// GET /api/v1/workspace/indicators
func (h *Handler) WorkspaceIndicators(c *gin.Context) {
	res, err := h.workspace.Calculate()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": calculator.Indicators(res)})
}

// WorkspaceRollup GET /api/v1/workspace/rollup
func (h *Handler) WorkspaceRollup(c *gin.Context) {
	rollup, err := h.workspace.VolumeRollup()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rollup)
}

// WorkspaceSnapshot GET /api/v1/workspace/snapshot
func (h *Handler) WorkspaceSnapshot(c *gin.Context) {
	snap, err := h.workspace.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SaveWorkspace POST /api/v1/workspace/save
func (h *Handler) SaveWorkspace(c *gin.Context) {
	info, err := h.workspace.Save()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": info, "state": h.workspace.State()})
}

// LoadWorkspace replaces the session with a saved snapshot
// POST /api/v1/workspace/load
func (h *Handler) LoadWorkspace(c *gin.Context) {
	var req selectionRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.workspace.Load(req.LOB, req.FiscalYear, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UndoWorkspace POST /api/v1/workspace/undo
func (h *Handler) UndoWorkspace(c *gin.Context) {
	st, err := h.workspace.Undo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
