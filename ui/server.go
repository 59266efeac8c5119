package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prithvipulse/app"
	"prithvipulse/internal"
	"prithvipulse/models"
)

// maxUploadBytes caps leaf images accepted by the scan endpoints
const maxUploadBytes = 10 << 20

// UsageSummarizer reports dispatch usage over a window
type UsageSummarizer interface {
	Summary(ctx context.Context, start, end time.Time) (*models.UsageSummary, error)
}

// Deps are the collaborators the gateway routes to
type Deps struct {
	Dispatcher *app.Dispatcher
	Surfaces   *app.Surfaces
	Usage      UsageSummarizer
	Logger     *internal.Logger
}

// Server is the HTTP gateway in front of the dispatcher
type Server struct {
	router     *gin.Engine
	dispatcher *app.Dispatcher
	surfaces   *app.Surfaces
	usage      UsageSummarizer
	logger     *internal.Logger
	httpServer *http.Server
}

// NewServer builds the router with every route registered
func NewServer(deps Deps) *Server {
	s := &Server{
		router:     gin.New(),
		dispatcher: deps.Dispatcher,
		surfaces:   deps.Surfaces,
		usage:      deps.Usage,
		logger:     deps.Logger,
	}
	if s.surfaces == nil {
		s.surfaces = app.NewSurfaces()
	}
	if s.logger == nil {
		s.logger = internal.DefaultLogger
	}
	s.router.MaxMultipartMemory = maxUploadBytes

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/scan", s.handleScan)
		api.POST("/scan/report", s.handleScanReport)
		api.POST("/smart-plan", s.handleSmartPlan)
		api.POST("/execution-plan", s.handleExecutionPlan)
		api.POST("/farm-plan", s.handleFarmPlan)
		api.POST("/crop-advisory", s.handleCropAdvisory)
		api.POST("/market-trends", s.handleMarketTrends)
		api.GET("/market-trends/:region/latest", s.handleLatestMarket)
		api.GET("/market-trends/:region/export", s.handleMarketExport)

		api.GET("/health", s.handleHealth)
		api.GET("/overview", s.handleOverview)
		api.GET("/usage/summary", s.handleUsageSummary)
	}
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until the server is shut down
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("[Gateway] listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
