// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdfalk/qualification-planner/internal/catalog"
	"github.com/jdfalk/qualification-planner/internal/config"
	"github.com/jdfalk/qualification-planner/internal/metrics"
	"github.com/jdfalk/qualification-planner/internal/realtime"
	"github.com/jdfalk/qualification-planner/internal/server/middleware"
	"github.com/jdfalk/qualification-planner/internal/watcher"
)

// Version is reported by the health endpoint; overridden at build time.
var Version = "dev"

// uploadBodyLimit caps workbook uploads.
const uploadBodyLimit = 20 << 20

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	provider   *catalog.Provider
	service    *QualificationService
	events     *realtime.EventHub
	watcher    *watcher.Watcher
	startedAt  time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Options tunes request handling.
type Options struct {
	FuzzyThreshold     float64
	SearchCacheTTL     time.Duration
	RateLimitPerMinute int // 0 disables rate limiting
	RateLimitBurst     int
	JSONBodyLimit      int64
	EventHeartbeat     time.Duration // 0 uses realtime.DefaultHeartbeat
}

// OptionsFromConfig maps application config onto server options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		FuzzyThreshold:     cfg.FuzzyThreshold,
		SearchCacheTTL:     cfg.SearchCacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		JSONBodyLimit:      cfg.JSONBodyLimit,
	}
}

// NewServer creates a new server instance serving the provider's catalog.
func NewServer(provider *catalog.Provider, opts Options) *Server {
	router := gin.New()

	// Set up middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsMiddleware())
	if opts.RateLimitPerMinute > 0 {
		router.Use(middleware.NewIPRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst, "/api/health", "/metrics").Middleware())
	}
	router.Use(middleware.LimitBody(middleware.BodyLimits{
		Default: opts.JSONBodyLimit,
		Routes:  []middleware.RouteLimit{{Suffix: "/catalog/import", Limit: uploadBodyLimit}},
	}))

	// Register metrics (idempotent)
	metrics.Register()

	server := &Server{
		router:    router,
		provider:  provider,
		service:   NewQualificationService(provider, opts.FuzzyThreshold, opts.SearchCacheTTL),
		events:    realtime.NewEventHub(opts.EventHeartbeat),
		startedAt: time.Now(),
	}
	provider.OnReload(func(c *catalog.Catalog) {
		server.events.Publish(realtime.EventCatalogReloaded, server.catalogEventData(c))
	})

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Service returns the qualification service behind the handlers.
func (s *Server) Service() *QualificationService {
	return s.service
}

// Events returns the hub streaming catalog change notifications.
func (s *Server) Events() *realtime.EventHub {
	return s.events
}

func (s *Server) catalogEventData(c *catalog.Catalog) map[string]any {
	data := map[string]any{"qualifications": c.Len()}
	if store := s.provider.Store(); store != nil {
		data["source"] = store.Location()
	}
	return data
}

func (s *Server) publishReloadFailure(err error) {
	s.events.Publish(realtime.EventCatalogReloadFailed, map[string]any{"error": err.Error()})
}

// WatchCatalog reloads the catalog whenever the file at path changes.
func (s *Server) WatchCatalog(path string) error {
	w := watcher.New(func(string) {
		c, err := s.service.Reload()
		if err != nil {
			log.Printf("[ERROR] catalog reload after change failed: %v", err)
			s.publishReloadFailure(err)
			return
		}
		log.Printf("[INFO] catalog reloaded: %d qualifications", c.Len())
	}, 0)
	if err := w.Start(path); err != nil {
		return err
	}
	s.watcher = w
	log.Printf("[INFO] watching catalog file %s", path)
	return nil
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM.
func (s *Server) Start(cfg ServerConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()
	return s.Run(ctx, cfg)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	defer func() {
		if s.watcher != nil {
			s.watcher.Stop()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	// Redirect /api/* to /api/v1/* for v1 compatibility
	s.router.Use(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") &&
			!strings.HasPrefix(path, "/api/v1/") &&
			!strings.HasPrefix(path, "/api/health") {
			newPath := strings.Replace(path, "/api/", "/api/v1/", 1)
			if c.Request.URL.RawQuery != "" {
				newPath += "?" + c.Request.URL.RawQuery
			}
			// 308 keeps the method and body for POST clients.
			c.Redirect(http.StatusPermanentRedirect, newPath)
			c.Abort()
			return
		}
		c.Next()
	})

	api := s.router.Group("/api/v1")
	{
		api.GET("/search", s.searchQualifications)
		api.POST("/match", s.matchQualifications)
		api.POST("/verify", s.verifyQualifications)

		api.GET("/qualifications", s.listQualifications)
		api.GET("/qualifications/all", s.listQualificationDetails)

		api.POST("/catalog/reload", s.reloadCatalog)
		api.POST("/catalog/import", s.importCatalog)
		api.GET("/events", s.events.HandleSSE)
	}

	s.setupIndexPage()
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:         "ok",
		Version:        Version,
		Uptime:         int64(time.Since(s.startedAt).Seconds()),
		Timestamp:      time.Now().Unix(),
		Qualifications: s.service.Catalog().Len(),
	}
	if store := s.provider.Store(); store != nil {
		resp.CatalogSource = store.Location()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) searchQualifications(c *gin.Context) {
	query := c.Query("q")
	results := s.service.Search(query)
	c.JSON(http.StatusOK, EnsureNotNil(results))
}

func (s *Server) matchQualifications(c *gin.Context) {
	ol := NewOperationLogger("matchQualifications", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.LogStart()

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); HandleBindError(c, err) {
		ol.LogError(c.Writer.Status(), err)
		return
	}
	if err := ValidateSelection(req.Qualifications); err != nil {
		respondWithValidation(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}
	ol.AddDetail("selected", len(req.Qualifications))

	resp, err := s.service.Compute(req.Qualifications, middleware.GetRequestID(c))
	if err != nil {
		RespondWithServiceError(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}
	ol.AddDetail("total_staff", resp.TotalStaff)
	c.JSON(http.StatusOK, resp)
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) verifyQualifications(c *gin.Context) {
	ol := NewOperationLogger("verifyQualifications", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.LogStart()

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); HandleBindError(c, err) {
		ol.LogError(c.Writer.Status(), err)
		return
	}
	if err := ValidateSelection(req.Qualifications); err != nil {
		respondWithValidation(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}
	if err := ValidateTitleCounts(req.TitleCounts); err != nil {
		respondWithValidation(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}

	results, err := s.service.Verify(req.Qualifications, req.TitleCounts, middleware.GetRequestID(c))
	if err != nil {
		RespondWithServiceError(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}
	ol.AddDetail("checked", len(results))
	c.JSON(http.StatusOK, VerifyResponse{Results: results})
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) listQualifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Catalog().Names())
}

func (s *Server) listQualificationDetails(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Catalog().All())
}

func (s *Server) reloadCatalog(c *gin.Context) {
	ol := NewOperationLogger("reloadCatalog", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.LogStart()

	cat, err := s.service.Reload()
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, err.Error(), CodeCatalogUnavailable)
		ol.LogError(http.StatusInternalServerError, err)
		s.publishReloadFailure(err)
		return
	}
	resp := ReloadResponse{Reloaded: s.provider.Store() != nil, Qualifications: cat.Len()}
	if store := s.provider.Store(); store != nil {
		resp.Source = store.Location()
	}
	ol.AddDetail("qualifications", cat.Len())
	c.JSON(http.StatusOK, resp)
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) importCatalog(c *gin.Context) {
	ol := NewOperationLogger("importCatalog", c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c))
	ol.LogStart()

	file, err := c.FormFile("file")
	if err != nil {
		RespondWithValidationError(c, "file", "multipart field 'file' with an .xlsx workbook is required")
		ol.LogError(http.StatusBadRequest, err)
		return
	}
	f, err := file.Open()
	if err != nil {
		RespondWithBadRequest(c, "cannot read upload: "+err.Error())
		ol.LogError(http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	report, err := s.service.ImportWorkbook(f, c.PostForm("sheet"))
	if err != nil {
		if errors.Is(err, ErrReadOnlyCatalog) {
			RespondWithServiceError(c, err)
		} else {
			RespondWithBadRequest(c, "import failed: "+err.Error())
		}
		ol.LogError(c.Writer.Status(), err)
		return
	}
	ol.AddDetail("added", len(report.Added))
	ol.AddDetail("updated", len(report.Updated))
	ol.AddDetail("removed", len(report.Removed))
	s.events.Publish(realtime.EventCatalogImported, map[string]any{
		"added":   report.Added,
		"updated": report.Updated,
		"removed": report.Removed,
	})
	c.JSON(http.StatusOK, ImportResponse{SyncReport: report, Qualifications: s.service.Catalog().Len()})
	ol.LogSuccess(http.StatusOK)
}

// GetDefaultServerConfig returns default server configuration
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         "5006",
		Host:         "",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
