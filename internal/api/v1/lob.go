package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

func parseLOBParam(raw string) (model.LOB, error) {
	lob, ok := model.ParseLOB(raw)
	if !ok {
		return "", model.Invalid("unknown line of business %q", raw)
	}
	return lob, nil
}

// SaveLOB stores a snapshot wholesale, replacing any saved one for the same LOB and year
// POST /api/v1/lob/save
func (h *Handler) SaveLOB(c *gin.Context) {
	var snap model.Snapshot
	if !bindJSON(c, &snap) {
		return
	}
	lob, err := parseLOBParam(string(snap.LOB))
	if err != nil {
		respondError(c, err)
		return
	}
	snap.LOB = lob
	snap.EnsureMaps()
	snap.NormalizeRateKeys()
	if err := snap.Validate(); err != nil {
		respondError(c, err)
		return
	}
	info, err := h.store.SaveSnapshot(&snap)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("lob", info.LOB).Str("fiscal_year", info.FiscalYear).Int("combinations", info.Combinations).Msg("snapshot saved")
	c.JSON(http.StatusOK, gin.H{"message": "saved", "snapshot": info})
}

// GetLOB saved snapshot of a LOB; ?fiscalYear= picks the year, otherwise the latest
// GET /api/v1/lob/get/:lob
func (h *Handler) GetLOB(c *gin.Context) {
	lob, err := parseLOBParam(c.Param("lob"))
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := h.store.LoadSnapshot(string(lob), c.Query("fiscalYear"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ListLOBs GET /api/v1/lob/list
func (h *Handler) ListLOBs(c *gin.Context) {
	items, err := h.store.ListSnapshots()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "lobs": model.LOBs})
}

// DeleteLOB DELETE /api/v1/lob/:lob/:fiscalYear
func (h *Handler) DeleteLOB(c *gin.Context) {
	lob, err := parseLOBParam(c.Param("lob"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.DeleteSnapshot(string(lob), c.Param("fiscalYear")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
