// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/glorin2500/Sentinel-sub000/internal/config"
	"github.com/glorin2500/Sentinel-sub000/internal/health"
	"github.com/glorin2500/Sentinel-sub000/internal/history"
	"github.com/glorin2500/Sentinel-sub000/internal/logging"
	"github.com/glorin2500/Sentinel-sub000/internal/metrics"
	"github.com/glorin2500/Sentinel-sub000/internal/ratelimit"
	"github.com/glorin2500/Sentinel-sub000/internal/realtime"
	"github.com/glorin2500/Sentinel-sub000/internal/refdata"
	"github.com/glorin2500/Sentinel-sub000/internal/reports"
	"github.com/glorin2500/Sentinel-sub000/internal/risk"
	"github.com/glorin2500/Sentinel-sub000/internal/security"
	"github.com/glorin2500/Sentinel-sub000/internal/traces"
	"github.com/glorin2500/Sentinel-sub000/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg            *config.Config
	refProvider    *refdata.Provider
	riskEngine     *risk.Engine
	riskStore      risk.Store
	historyStore   history.Store
	reportsService *reports.Service
	realtimeHub    *realtime.Hub
	healthReg      *health.Registry
	rateLimiter    *ratelimit.Limiter
	db             *sql.DB // nil if using in-memory
	router         *gin.Engine
	httpSrv        *http.Server
	logger         *slog.Logger
	shutdownTraces func(context.Context) error
	cancelRunCtx   context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Context for initialization
	ctx := context.Background()

	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("failed to initialize tracing", "error", err)
	} else {
		s.shutdownTraces = shutdownTraces
	}

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	var refStore refdata.Store
	var reportsStore reports.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test connection
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))

		pgRef := refdata.NewPostgresStore(db)
		if err := pgRef.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate reference data store", "error", err)
		}
		refStore = pgRef

		pgVerdicts := risk.NewPostgresStore(db)
		if err := pgVerdicts.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate verdict store", "error", err)
		}
		s.riskStore = pgVerdicts

		pgHistory := history.NewPostgresStore(db)
		if err := pgHistory.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate history store", "error", err)
		}
		s.historyStore = pgHistory

		pgReports := reports.NewPostgresStore(db)
		if err := pgReports.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate reports store", "error", err)
		}
		reportsStore = pgReports
	} else {
		s.logger.Info("using in-memory storage (data will not persist)")
		refStore = refdata.NewMemoryStore()
		s.riskStore = risk.NewMemoryStore()
		s.historyStore = history.NewMemoryStore()
		reportsStore = reports.NewMemoryStore()
	}

	// Reference data: built-in set + overlay file + store
	provider, err := refdata.NewProvider(ctx, refStore, cfg.RefdataOverlayPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	s.refProvider = provider
	s.logger.Info("reference data loaded",
		"blacklist", provider.Current().BlacklistSize(),
		"trusted", provider.Current().TrustedSize(),
	)

	s.riskEngine = risk.NewEngine(provider, s.riskStore)
	s.reportsService = reports.NewService(reportsStore, refStore)

	// Create realtime hub for WebSocket streaming
	s.realtimeHub = realtime.NewHub(s.logger)
	s.logger.Info("realtime streaming enabled")

	s.setupHealthChecks()

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

func (s *Server) setupHealthChecks() {
	s.healthReg = health.NewRegistry()

	if s.db != nil {
		db := s.db
		s.healthReg.Register("database", func(ctx context.Context) health.Status {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return health.Status{Name: "database", Healthy: false, Detail: err.Error()}
			}
			return health.Status{Name: "database", Healthy: true}
		})
	}

	s.healthReg.Register("refdata", func(ctx context.Context) health.Status {
		set := s.refProvider.Current()
		if set == nil || set.BlacklistSize() == 0 {
			return health.Status{Name: "refdata", Healthy: false, Detail: "no reference data loaded"}
		}
		return health.Status{Name: "refdata", Healthy: true}
	})
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.Config{
		RequestsPerMinute: s.cfg.RateLimitRPS * 60,
		BurstSize:         s.cfg.RateLimitRPS,
		CleanupInterval:   time.Minute,
	})
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// adminAuthMiddleware guards mutating admin routes with the shared secret.
// In development without a secret configured, admin routes stay open so the
// demo flow works out of the box.
func (s *Server) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AdminSecret == "" {
			if s.cfg.IsProduction() {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":   "admin_disabled",
					"message": "Admin routes require ADMIN_SECRET in production",
				})
				return
			}
			c.Next()
			return
		}
		if c.GetHeader("X-Admin-Secret") != s.cfg.AdminSecret {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Invalid admin secret",
			})
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// Service info
	s.router.GET("/", s.infoHandler)

	// WebSocket for real-time scan activity
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// V1 API group
	v1 := s.router.Group("/v1")
	// Validate :vpa URL params on all v1 routes (no-op when param absent)
	v1.Use(validation.VPAParamMiddleware())

	// Scanning and payee lookups
	riskHandler := risk.NewHandler(s.riskEngine, s.riskStore, s.refProvider, s.historyStore).
		WithHistoryLimit(s.cfg.HistoryLimit).
		WithEvents(&verdictEventEmitter{s.realtimeHub})
	riskHandler.RegisterRoutes(v1)

	// Community fraud reports
	reportsHandler := reports.NewHandler(s.reportsService).
		WithEvents(&reportEventEmitter{hub: s.realtimeHub, server: s})
	reportsHandler.RegisterRoutes(v1)

	// Platform stats
	v1.GET("/stats", s.statsHandler)

	// Admin routes: report verification and reference data control.
	// Guarded by X-Admin-Secret; open in development without a secret.
	admin := v1.Group("/admin")
	admin.Use(s.adminAuthMiddleware())
	{
		reportsHandler.RegisterAdminRoutes(admin)
		admin.POST("/blacklist", s.blacklistUpsertHandler)
		admin.POST("/refdata/reload", s.refdataReloadHandler)
		admin.POST("/refdata/import", s.refdataImportHandler)
	}
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Sentinel",
		"description": "Fraud risk scoring for UPI payments",
		"version":     "0.1.0",
		"endpoints": gin.H{
			"scan":    "POST /v1/scan",
			"payee":   "GET /v1/payees/{vpa}",
			"reports": "POST /v1/reports",
			"stats":   "GET /v1/stats",
			"live":    "GET /ws",
		},
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	healthy, checks := s.healthReg.CheckAll(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"version":   "0.1.0",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// statsHandler returns platform-wide statistics.
// GET /v1/stats
func (s *Server) statsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	byLevel, err := s.riskStore.CountByLevel(ctx)
	if err != nil {
		logging.L(ctx).Error("failed to count verdicts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load platform stats",
		})
		return
	}

	totalScans := 0
	levels := gin.H{}
	for level, n := range byLevel {
		totalScans += n
		levels[string(level)] = n
	}

	set := s.refProvider.Current()
	stats := gin.H{
		"totalScans":    totalScans,
		"scansByLevel":  levels,
		"blacklistSize": set.BlacklistSize(),
		"trustedPayees": set.TrustedSize(),
	}

	if n, err := s.reportsService.Count(ctx); err == nil {
		stats["reportsFiled"] = n
	}
	if n, err := s.historyStore.Count(ctx); err == nil {
		stats["recordedScans"] = n
	}
	if s.realtimeHub != nil {
		stats["realtime"] = s.realtimeHub.Stats()
	}

	c.JSON(http.StatusOK, stats)
}

// blacklistUpsertHandler adds or replaces a curated blacklist entry and
// swaps in a rebuilt reference data set so the entry scores immediately.
// POST /v1/admin/blacklist
func (s *Server) blacklistUpsertHandler(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Reason     string `json:"reason"`
		Severity   string `json:"severity"`
		FraudType  string `json:"fraudType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'identifier'",
		})
		return
	}

	severity := refdata.Severity(strings.ToLower(req.Severity))
	if req.Severity == "" {
		severity = refdata.SeverityMedium
	}

	entry := refdata.BlacklistEntry{
		Identifier:     strings.ToLower(strings.TrimSpace(req.Identifier)),
		Reason:         strings.TrimSpace(req.Reason),
		Severity:       severity,
		LastReportedAt: time.Now().UTC(),
		FraudType:      req.FraudType,
		Verified:       true, // curated by an operator
	}
	if err := entry.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_entry",
			"message": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	if err := s.refProvider.Import(ctx, &refdata.Overlay{Blacklist: []refdata.BlacklistEntry{entry}}); err != nil {
		logging.L(ctx).Error("blacklist upsert failed", "identifier", entry.Identifier, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to store blacklist entry",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry":         entry,
		"blacklistSize": s.refProvider.Current().BlacklistSize(),
	})
}

// refdataReloadHandler rebuilds the active reference data set from all
// sources (built-ins, overlay file, store).
// POST /v1/admin/refdata/reload
func (s *Server) refdataReloadHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.refProvider.Reload(ctx); err != nil {
		metrics.RefdataReloadsTotal.WithLabelValues("error").Inc()
		logging.L(ctx).Error("reference data reload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "reload_failed",
			"message": "Failed to reload reference data",
		})
		return
	}

	metrics.RefdataReloadsTotal.WithLabelValues("success").Inc()
	set := s.refProvider.Current()
	c.JSON(http.StatusOK, gin.H{
		"reloaded":      true,
		"blacklistSize": set.BlacklistSize(),
		"trustedPayees": set.TrustedSize(),
	})
}

// refdataImportHandler fetches a remote overlay and merges it into the
// active set. The URL is validated against SSRF before any request is made.
// POST /v1/admin/refdata/import
func (s *Server) refdataImportHandler(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must contain 'url'",
		})
		return
	}

	ctx := c.Request.Context()

	overlay, err := refdata.FetchOverlay(ctx, req.URL)
	if err != nil {
		metrics.RefdataReloadsTotal.WithLabelValues("error").Inc()
		logging.L(ctx).Warn("overlay fetch failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "fetch_failed",
			"message": "Failed to fetch overlay: " + err.Error(),
		})
		return
	}

	if err := s.refProvider.Import(ctx, overlay); err != nil {
		metrics.RefdataReloadsTotal.WithLabelValues("error").Inc()
		logging.L(ctx).Error("overlay import failed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "import_failed",
			"message": "Failed to import overlay: " + err.Error(),
		})
		return
	}

	metrics.RefdataReloadsTotal.WithLabelValues("success").Inc()
	set := s.refProvider.Current()
	c.JSON(http.StatusOK, gin.H{
		"imported":         true,
		"blacklistEntries": len(overlay.Blacklist),
		"trustedAdded":     len(overlay.Trusted),
		"blacklistSize":    set.BlacklistSize(),
		"trustedPayees":    set.TrustedSize(),
	})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server with graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	if s.realtimeHub != nil {
		go s.realtimeHub.Run(runCtx)
	}

	// Periodic reference data reload picks up overlay file edits and
	// entries written by other instances.
	if s.cfg.RefdataReloadInterval > 0 {
		go s.reloadLoop(runCtx)
	}

	// DB pool stats for Prometheus
	if s.db != nil {
		metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

func (s *Server) reloadLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefdataReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.refProvider.Reload(ctx); err != nil {
				metrics.RefdataReloadsTotal.WithLabelValues("error").Inc()
				s.logger.Warn("periodic reference data reload failed", "error", err)
				continue
			}
			metrics.RefdataReloadsTotal.WithLabelValues("success").Inc()
		}
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, reload loop)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Flush traces
	if s.shutdownTraces != nil {
		if err := s.shutdownTraces(ctx); err != nil {
			s.logger.Warn("trace shutdown error", "error", err)
		}
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// -----------------------------------------------------------------------------
// Realtime adapters
// -----------------------------------------------------------------------------

// verdictEventEmitter adapts realtime.Hub to risk.EventEmitter
type verdictEventEmitter struct {
	hub *realtime.Hub
}

func (e *verdictEventEmitter) VerdictEvaluated(v *risk.Verdict) {
	if e.hub == nil {
		return
	}
	e.hub.BroadcastVerdict(map[string]interface{}{
		"id":         v.ID,
		"identifier": v.Identifier,
		"score":      float64(v.Score),
		"level":      string(v.Level),
		"fraudType":  v.FraudType,
		"confidence": v.Confidence,
	})
}

// reportEventEmitter adapts realtime.Hub to reports.EventEmitter. A verified
// promotion also reloads the active set so the new entry scores immediately.
type reportEventEmitter struct {
	hub    *realtime.Hub
	server *Server
}

func (e *reportEventEmitter) ReportFiled(r *reports.Report) {
	if e.hub == nil {
		return
	}
	e.hub.BroadcastReport(map[string]interface{}{
		"id":         r.ID,
		"identifier": r.Identifier,
		"fraudType":  r.FraudType,
		"severity":   string(r.Severity),
	})
}

func (e *reportEventEmitter) BlacklistUpdated(entry *refdata.BlacklistEntry) {
	if e.server != nil {
		if err := e.server.refProvider.Reload(context.Background()); err != nil {
			e.server.logger.Warn("reload after blacklist promotion failed", "error", err)
		}
	}
	if e.hub == nil {
		return
	}
	e.hub.BroadcastBlacklistUpdate(map[string]interface{}{
		"identifier":  entry.Identifier,
		"severity":    string(entry.Severity),
		"reportCount": entry.ReportCount,
		"fraudType":   entry.FraudType,
	})
}
