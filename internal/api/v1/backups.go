package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type restoreRequest struct {
	Name string `json:"name"`
}

func (h *Handler) backupsEnabled(c *gin.Context) bool {
	if h.backups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backups are not configured"})
		return false
	}
	return true
}

// ListBackups GET /api/v1/backups
func (h *Handler) ListBackups(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	items, err := h.backups.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RunBackup POST /api/v1/backups/run
func (h *Handler) RunBackup(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	info, err := h.backups.RunNow()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// RestoreBackup replaces saved snapshots with those of a backup file
// POST /api/v1/backups/restore
func (h *Handler) RestoreBackup(c *gin.Context) {
	if !h.backupsEnabled(c) {
		return
	}
	var req restoreRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.backups.Restore(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": req.Name, "restored": n})
}
