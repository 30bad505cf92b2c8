package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phuslu/log"

	v1 "github.com/Prabhakar2095/Budget-Working/internal/api/v1"
	"github.com/Prabhakar2095/Budget-Working/internal/backup"
	"github.com/Prabhakar2095/Budget-Working/internal/catalog"
	"github.com/Prabhakar2095/Budget-Working/internal/config"
	"github.com/Prabhakar2095/Budget-Working/internal/service/workspace"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

// DBFile sqlite file name inside the data directory
const DBFile = "budget.db"

// Server HTTP server
type Server struct {
	cfg       *config.AppConfig
	router    *gin.Engine
	httpSrv   *http.Server
	store     *store.Store
	workspace *workspace.Workspace
	backups   *backup.Scheduler
	v1        *v1.Handler
}

// NewServer opens the store under the data directory and wires the API.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}
	st, err := store.New(filepath.Join(dataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cat := catalog.New(st)
	ws := workspace.New(st, cat, cfg.Defaults)
	if _, err := ws.Restore(); err != nil {
		log.Warn().Err(err).Msg("failed to restore last selection")
	}

	s := &Server{
		cfg:       cfg,
		router:    gin.New(),
		store:     st,
		workspace: ws,
		backups:   backup.NewScheduler(st, filepath.Join(dataDir, "backups"), cfg.Data.BackupRetention),
	}
	s.v1 = v1.NewHandler(v1.Deps{
		Store:     st,
		Catalog:   cat,
		Workspace: ws,
		Backups:   s.backups,
		ExportDir: filepath.Join(dataDir, cfg.Excel.ExportDir),
	})
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestLogger(), cors(s.cfg.Server.CORSOrigins))

	api := s.router.Group("/api/v1")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// cors allows the configured origins; none configured allows any.
func cors(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(allowed) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		e := log.Info()
		if status >= http.StatusInternalServerError {
			e = log.Error()
		}
		e.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Msg("request")
	}
}

// Handler http.Handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the backup scheduler when enabled and serves until Shutdown.
func (s *Server) Run(addr string) error {
	if s.cfg.Data.AutoBackup {
		if err := s.backups.Start(s.cfg.Data.BackupSchedule); err != nil {
			return err
		}
	}
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router}
	log.Info().Str("addr", addr).Msg("server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and the scheduler, then closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	if s.cfg.Data.AutoBackup {
		s.backups.Stop()
	}
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Store used by the CLI and tests
func (s *Server) Store() *store.Store {
	return s.store
}
