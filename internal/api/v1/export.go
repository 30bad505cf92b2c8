package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/exporter"
)

type exportRequest struct {
	FiscalYear string   `json:"fiscalYear"`
	LOBs       []string `json:"lobs"`
}

func (r exportRequest) options() (exporter.ExportOptions, error) {
	opts := exporter.ExportOptions{FiscalYear: r.FiscalYear}
	for _, name := range r.LOBs {
		lob, err := parseLOBParam(name)
		if err != nil {
			return opts, err
		}
		opts.LOBs = append(opts.LOBs, lob)
	}
	return opts, nil
}

type exportProgressEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// writeExport builds and stores the workbook, returning a download token.
func (h *Handler) writeExport(opts exporter.ExportOptions, progress func(exporter.ProgressEvent)) (string, []exporter.LOBStatus, error) {
	f, statuses, err := h.exporter.Export(opts, progress)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	path, err := exporter.SaveTo(f, h.exportDir, opts.FiscalYear, h.now())
	if err != nil {
		return "", nil, fmt.Errorf("failed to write export: %w", err)
	}
	log.Info().Str("path", path).Int("sheets", len(f.GetSheetList())).Msg("workbook exported")
	return h.downloads.put(path, opts.FiscalYear, downloadTTL), statuses, nil
}

// Export writes the consolidated workbook and returns a one-shot download URL
// POST /api/v1/export
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	opts, err := req.options()
	if err != nil {
		respondError(c, err)
		return
	}
	token, statuses, err := h.writeExport(opts, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"downloadUrl": "/api/v1/export/download/" + token,
		"lobs":        statuses,
	})
}

// ExportStream same as Export with SSE progress events; the last event carries the download URL
// POST /api/v1/export/stream
func (h *Handler) ExportStream(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	opts, err := req.options()
	if err != nil {
		respondError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func(event exportProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	send(exportProgressEvent{
		Type:      "start",
		Message:   "export started",
		Data:      map[string]any{"fiscalYear": opts.FiscalYear},
		Timestamp: h.now(),
	})

	lastPercent := -1
	token, statuses, err := h.writeExport(opts, func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		send(exportProgressEvent{
			Type:      "progress",
			Message:   p.Stage,
			Data:      map[string]any{"percent": p.Percent},
			Timestamp: h.now(),
		})
	})
	if err != nil {
		send(exportProgressEvent{
			Type:      "error",
			Message:   "export failed: " + err.Error(),
			Data:      map[string]any{},
			Timestamp: h.now(),
		})
		return
	}

	send(exportProgressEvent{
		Type:    "done",
		Message: "export finished",
		Data: map[string]any{
			"percent":     100,
			"downloadUrl": "/api/v1/export/download/" + token,
			"lobs":        statuses,
		},
		Timestamp: h.now(),
	})
}

// DownloadExport serves an exported workbook once
// GET /api/v1/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}
	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "export file missing"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(item.filePath)))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
	h.downloads.delete(token)
}

