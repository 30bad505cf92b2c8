// Package v1 is the JSON HTTP API of the budget planner.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Prabhakar2095/Budget-Working/internal/backup"
	"github.com/Prabhakar2095/Budget-Working/internal/catalog"
	"github.com/Prabhakar2095/Budget-Working/internal/exporter"
	"github.com/Prabhakar2095/Budget-Working/internal/service/workspace"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

// Version reported by /health
const Version = "1.0.0"

// Deps collaborators of the handler; Backups may be nil.
type Deps struct {
	Store     *store.Store
	Catalog   *catalog.Catalog
	Workspace *workspace.Workspace
	Backups   *backup.Scheduler
	ExportDir string
}

// Handler API v1 handler
type Handler struct {
	store     *store.Store
	catalog   *catalog.Catalog
	workspace *workspace.Workspace
	exporter  *exporter.Exporter
	backups   *backup.Scheduler
	exportDir string
	downloads *exportDownloadStore
	now       func() time.Time
}

// NewHandler creates the API v1 handler
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:     d.Store,
		catalog:   d.Catalog,
		workspace: d.Workspace,
		exporter:  exporter.NewExporter(d.Store),
		backups:   d.Backups,
		exportDir: d.ExportDir,
		downloads: newExportDownloadStore(),
		now:       time.Now,
	}
}

// RegisterRoutes registers the v1 routes on router
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/fiscal/prior-years", h.PriorYears)

	// catalogue
	router.GET("/opex/working", h.ListOpex)
	router.POST("/opex/add", h.AddOpex)
	router.PUT("/opex/update/:name", h.UpdateOpex)
	router.GET("/capex/working", h.ListCapex)
	router.POST("/capex/add", h.AddCapex)
	router.PUT("/capex/update/:name", h.UpdateCapex)
	router.POST("/catalog/reset", h.ResetCatalog)

	// stateless calculations
	router.POST("/volume/calculate", h.CalculateVolume)
	router.POST("/volume/multiyear/dynamic", h.VolumeRollup)
	router.POST("/revenue/calculate", h.CalculateRevenue)
	router.POST("/combinations/generate", h.GenerateCombinations)

	// snapshots
	router.POST("/lob/save", h.SaveLOB)
	router.GET("/lob/get/:lob", h.GetLOB)
	router.GET("/lob/list", h.ListLOBs)
	router.DELETE("/lob/:lob/:fiscalYear", h.DeleteLOB)

	// templates and uploads
	router.GET("/templates/:kind", h.DownloadTemplate)
	router.POST("/uploads/:kind", h.Upload)
	router.GET("/uploads/logs", h.ListUploadLogs)

	// current planning session
	ws := router.Group("/workspace")
	{
		ws.GET("", h.GetWorkspace)
		ws.POST("/lock", h.LockWorkspace)
		ws.POST("/reset", h.ResetWorkspace)
		ws.POST("/registry", h.EditRegistry)
		ws.PUT("/registry", h.ReplaceRegistry)
		ws.POST("/generate", h.GenerateWorkspace)
		ws.GET("/combinations", h.ListWorkspaceCombinations)
		ws.PATCH("/combinations", h.PatchWorkspaceCombination)
		ws.PUT("/assumptions", h.SetAssumptions)
		ws.PUT("/opex-rates", h.SetOpexRate)
		ws.PUT("/capex-rates", h.SetCapexRate)
		ws.POST("/calculate", h.CalculateWorkspace)
		ws.GET("/indicators", h.WorkspaceIndicators)
		ws.GET("/rollup", h.WorkspaceRollup)
		ws.GET("/snapshot", h.WorkspaceSnapshot)
		ws.POST("/save", h.SaveWorkspace)
		ws.POST("/load", h.LoadWorkspace)
		ws.POST("/undo", h.UndoWorkspace)
	}

	// export
	router.POST("/export", h.Export)
	router.POST("/export/stream", h.ExportStream)
	router.GET("/export/download/:token", h.DownloadExport)

	// backups
	router.GET("/backups", h.ListBackups)
	router.POST("/backups/run", h.RunBackup)
	router.POST("/backups/restore", h.RestoreBackup)
}
