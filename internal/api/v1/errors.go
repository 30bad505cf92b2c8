package v1

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/backup"
	"github.com/Prabhakar2095/Budget-Working/internal/catalog"
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/parser"
	"github.com/Prabhakar2095/Budget-Working/internal/service/workspace"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

// respondError maps service errors onto status codes and payloads.
func respondError(c *gin.Context, err error) {
	if ve, ok := model.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ve.Head()})
		return
	}
	if errors.Is(err, fiscal.ErrInvalidYear) || errors.Is(err, dimension.ErrInvalid) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{err.Error()}})
		return
	}
	switch {
	case errors.Is(err, workspace.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "confirmRequired": true})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrDuplicate),
		errors.Is(err, workspace.ErrNotLocked),
		errors.Is(err, workspace.ErrNothingToUndo):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, parser.ErrUnsupportedFormat), errors.Is(err, backup.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindJSON decodes the body; malformed JSON is a 400.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
