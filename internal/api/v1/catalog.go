package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

type addCapexRequest struct {
	Name  string           `json:"name"`
	Group model.CapexGroup `json:"group"`
}

// ListOpex working opex catalogue
// GET /api/v1/opex/working
func (h *Handler) ListOpex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.catalog.OpexItems()})
}

// AddOpex POST /api/v1/opex/add
func (h *Handler) AddOpex(c *gin.Context) {
	var item model.OpexItem
	if !bindJSON(c, &item) {
		return
	}
	if err := h.catalog.AddOpex(item); err != nil {
		respondError(c, err)
		return
	}
	h.workspace.SyncCatalog()
	c.JSON(http.StatusCreated, gin.H{"items": h.catalog.OpexItems()})
}

// UpdateOpex rename or change the offsets of an opex item
// PUT /api/v1/opex/update/:name
func (h *Handler) UpdateOpex(c *gin.Context) {
	var item model.OpexItem
	if !bindJSON(c, &item) {
		return
	}
	if err := h.catalog.UpdateOpex(c.Param("name"), item); err != nil {
		respondError(c, err)
		return
	}
	h.workspace.SyncCatalog()
	c.JSON(http.StatusOK, gin.H{"items": h.catalog.OpexItems()})
}

// ListCapex GET /api/v1/capex/working
func (h *Handler) ListCapex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.catalog.CapexItems(), "groups": model.CapexGroups})
}

// AddCapex POST /api/v1/capex/add
func (h *Handler) AddCapex(c *gin.Context) {
	var req addCapexRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.catalog.AddCapex(req.Name, req.Group)
	if err != nil {
		respondError(c, err)
		return
	}
	h.workspace.SyncCatalog()
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateCapex PUT /api/v1/capex/update/:name
func (h *Handler) UpdateCapex(c *gin.Context) {
	var item model.CapexItem
	if !bindJSON(c, &item) {
		return
	}
	updated, err := h.catalog.UpdateCapex(c.Param("name"), item)
	if err != nil {
		respondError(c, err)
		return
	}
	h.workspace.SyncCatalog()
	c.JSON(http.StatusOK, gin.H{"item": updated})
}

// ResetCatalog restores the default opex and capex lists
// POST /api/v1/catalog/reset
func (h *Handler) ResetCatalog(c *gin.Context) {
	if err := h.catalog.Reset(); err != nil {
		respondError(c, err)
		return
	}
	h.workspace.SyncCatalog()
	c.JSON(http.StatusOK, gin.H{"opex": h.catalog.OpexItems(), "capex": h.catalog.CapexItems()})
}
