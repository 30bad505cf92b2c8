package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

// Health liveness plus the current session selection
// GET /api/v1/health
func (h *Handler) Health(c *gin.Context) {
	st := h.workspace.State()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    Version,
		"time":       h.now().UTC(),
		"locked":     st.Locked,
		"fiscalYear": st.FiscalYear,
		"lob":        st.LOB,
	})
}

// PriorYears the two fiscal years before ?fiscalYear=
// GET /api/v1/fiscal/prior-years
func (h *Handler) PriorYears(c *gin.Context) {
	fy := c.Query("fiscalYear")
	prior, err := fiscal.PriorYears(fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fiscalYear": fy, "priorYears": prior})
}
