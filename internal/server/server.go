// Package server exposes the REST surface: vendor and bill management, the
// capture workflow, dashboard aggregates, settings, exports and the mirror
// status indicator.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billerpro/billerpro/internal/capture"
	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/export"
	"github.com/billerpro/billerpro/internal/ledger"
	"github.com/billerpro/billerpro/internal/mirror"
	"github.com/billerpro/billerpro/internal/server/middleware"
)

// MirrorStatus is what the status endpoint polls; nil when the mirror is
// disabled.
type MirrorStatus interface {
	Status() mirror.Status
}

// Server wires the HTTP layer over the application services.
type Server struct {
	cfg     *common.Config
	store   *ledger.Store
	session *capture.Session
	exports *export.Service
	mirror  MirrorStatus
	logger  *slog.Logger
	engine  *gin.Engine
}

func New(cfg *common.Config, store *ledger.Store, session *capture.Session, exports *export.Service, mirrorStatus MirrorStatus, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		session: session,
		exports: exports,
		mirror:  mirrorStatus,
		logger:  logger,
	}
	s.engine = s.buildRouter()
	return s
}

// Router returns the configured gin engine; the caller owns the http.Server.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authEnabled := s.cfg.Auth.PasscodeHash != ""
	if authEnabled {
		r.POST("/api/auth/login", s.handleLogin)
	}

	api := r.Group("/api")
	if authEnabled {
		api.Use(middleware.AuthRequired(s.cfg.Auth.JWTSecret))
	}

	api.GET("/vendors", s.handleListVendors)
	api.POST("/vendors", s.handleCreateVendor)
	api.PUT("/vendors/:id", s.handleUpdateVendor)
	api.DELETE("/vendors/:id", s.handleDeleteVendor)

	api.GET("/bills", s.handleListBills)
	api.DELETE("/bills/:id", s.handleDeleteBill)

	api.GET("/capture", s.handleCaptureState)
	api.POST("/capture", s.handleCaptureUpload)
	api.POST("/capture/confirm", s.handleCaptureConfirm)
	api.POST("/capture/rescan", s.handleCaptureRescan)
	api.POST("/capture/back", s.handleCaptureBack)
	api.POST("/capture/discard", s.handleCaptureDiscard)

	api.GET("/dashboard", s.handleDashboard)
	api.GET("/analytics/trend", s.handleTrend)

	api.GET("/settings", s.handleGetSettings)
	api.PUT("/settings", s.handleUpdateSettings)

	api.GET("/mirror/status", s.handleMirrorStatus)

	api.GET("/export/xlsx", s.handleExportXLSX)
	api.GET("/export/statement", s.handleExportStatement)

	return r
}
