package v1

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/parser"
	"github.com/Prabhakar2095/Budget-Working/internal/service/workspace"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 20 << 20
)

// DownloadTemplate empty upload file for a kind; ?format=xlsx, csv by default.
// The existing-revenue template follows the session registry, or ?lob= defaults.
// GET /api/v1/templates/:kind
func (h *Handler) DownloadTemplate(c *gin.Context) {
	var tpl parser.Template
	switch c.Param("kind") {
	case parser.TemplateExistingRevenue:
		reg, err := h.templateRegistry(c.Query("lob"))
		if err != nil {
			respondError(c, err)
			return
		}
		tpl = parser.ExistingRevenueTemplate(reg)
	case parser.TemplateExistingOpex:
		tpl = parser.ExistingOpexTemplate()
	case parser.TemplateExistingCapex:
		tpl = parser.ExistingCapexTemplate()
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown template " + c.Param("kind")})
		return
	}

	var (
		data        []byte
		err         error
		ext         string
		contentType string
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err = tpl.CSV()
		ext, contentType = "csv", "text/csv; charset=utf-8"
	case "xlsx":
		data, err = tpl.XLSX()
		ext, contentType = "xlsx", xlsxContentType
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, tpl.Name, ext))
	c.Data(http.StatusOK, contentType, data)
}

func (h *Handler) templateRegistry(lobName string) (dimension.Registry, error) {
	st := h.workspace.State()
	if lobName == "" && st.Locked && st.Registry != nil {
		return *st.Registry, nil
	}
	if lobName == "" {
		lobName = string(model.LOBFTTH)
	}
	lob, err := parseLOBParam(lobName)
	if err != nil {
		return dimension.Registry{}, err
	}
	if st.Locked && st.LOB == lob && st.Registry != nil {
		return *st.Registry, nil
	}
	return dimension.Default(lob.SiteAxis()), nil
}

// Upload parses an existing-data file and merges it into the session; the whole file
// is rejected when any row is invalid or unknown.
// POST /api/v1/uploads/:kind (multipart field "file")
func (h *Handler) Upload(c *gin.Context) {
	kind := c.Param("kind")
	switch kind {
	case parser.TemplateExistingRevenue, parser.TemplateExistingOpex, parser.TemplateExistingCapex:
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown upload kind " + kind})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload file"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	st := h.workspace.State()
	if !st.Locked {
		respondError(c, workspace.ErrNotLocked)
		return
	}

	batchID := uuid.NewString()
	logID, err := h.store.CreateUploadLog(batchID, kind, fh.Filename, string(st.LOB), st.FiscalYear, fh.Size)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record upload")
	}
	finish := func(rows, applied int, status string, err error) {
		if logID == 0 {
			return
		}
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if ferr := h.store.FinishUploadLog(logID, rows, applied, status, msg); ferr != nil {
			log.Warn().Err(ferr).Int64("upload_id", logID).Msg("failed to finish upload log")
		}
	}

	f, err := fh.Open()
	if err != nil {
		finish(0, 0, store.UploadRejected, err)
		respondError(c, err)
		return
	}
	defer f.Close()

	summary, err := h.applyUpload(kind, fh.Filename, f)
	if err != nil {
		finish(summary.Rows, 0, store.UploadRejected, err)
		respondError(c, err)
		return
	}
	finish(summary.Rows, summary.Applied, store.UploadApplied, nil)
	log.Info().Str("batch_id", batchID).Str("kind", kind).Int("rows", summary.Rows).Msg("upload applied")
	c.JSON(http.StatusOK, gin.H{"batchId": batchID, "summary": summary, "state": h.workspace.State()})
}

func (h *Handler) applyUpload(kind, filename string, r io.Reader) (workspace.UploadSummary, error) {
	table, err := parser.ReadTable(filename, r)
	if err != nil {
		return workspace.UploadSummary{}, err
	}
	var summary workspace.UploadSummary
	switch kind {
	case parser.TemplateExistingRevenue:
		var parsed []parser.ExistingRevenueRow
		if parsed, err = parser.ParseExistingRevenue(table); err == nil {
			summary, err = h.workspace.ApplyExistingRevenue(parsed)
		}
	case parser.TemplateExistingOpex:
		var parsed []parser.OverrideRow
		if parsed, err = parser.ParseExistingOpex(table); err == nil {
			summary, err = h.workspace.ApplyOpexOverrides(parsed)
		}
	default:
		var parsed []parser.OverrideRow
		if parsed, err = parser.ParseExistingCapex(table); err == nil {
			summary, err = h.workspace.ApplyCapexOverrides(parsed)
		}
	}
	if err != nil {
		return workspace.UploadSummary{Rows: len(table.Rows)}, err
	}
	return summary, nil
}

// ListUploadLogs recent uploads, newest first; ?limit= defaults to 50
// GET /api/v1/uploads/logs
func (h *Handler) ListUploadLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	logs, err := h.store.ListUploadLogs(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}
