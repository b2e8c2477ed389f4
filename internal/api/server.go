package api

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
	"github.com/conduitllm/admin/internal/database"
)

// Config represents API server configuration
type Config struct {
	Prefix       string // API path prefix (default: "/api/admin")
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default API configuration
func DefaultConfig() *Config {
	return &Config{
		Prefix: "/api/admin",
	}
}

// CacheService is the cache management surface served over HTTP.
type CacheService interface {
	GetStatistics(ctx context.Context, regionID string) (*cachemgmt.StatisticsSnapshot, error)
	GetTopCachedItems(ctx context.Context) ([]cachemgmt.TopCachedItem, error)
	GetConfiguration(ctx context.Context) (*cachemgmt.ConfigurationSnapshot, error)
	UpdateConfiguration(ctx context.Context, req cachemgmt.UpdateConfigurationRequest) error
	UpdatePolicy(ctx context.Context, regionID string, update cachemgmt.PolicyUpdate) error
	ClearCache(ctx context.Context, cacheID string) error
	GetEntries(ctx context.Context, regionID string, skip, take int) (*cachemgmt.EntriesPage, error)
	RefreshCache(ctx context.Context, regionID, key string) error
}

// AuditReader lists the configuration audit trail of a region.
type AuditReader interface {
	ListAudit(ctx context.Context, regionName string, limit int) ([]*database.ConfigAuditEntry, error)
}

// HistoryReader lists recorded statistics snapshots.
type HistoryReader interface {
	ListSnapshots(ctx context.Context, regionName string, since time.Time, limit int) ([]*database.StatisticsSnapshot, error)
}

// EventWatcher streams configuration change events.
type EventWatcher interface {
	Watch() (string, <-chan cachemgmt.ConfigurationChangeEvent)
	Unwatch(id string)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConfigManager is the part of the configuration manager exposed over HTTP.
type ConfigManager interface {
	GetConfig() *config.Config
	ReloadConfig() error
}

// Dependencies are the collaborators of the server. Only Cache is required;
// routes backed by a missing dependency are not registered.
type Dependencies struct {
	Cache         CacheService
	Audit         AuditReader
	History       HistoryReader
	Events        EventWatcher
	Database      Pinger
	ConfigManager ConfigManager
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// Server represents the API server
type Server struct {
	config    *Config
	deps      Dependencies
	app       *fiber.App
	logger    *slog.Logger
	startTime time.Time
}

// NewServer creates the fiber application and registers every route
func NewServer(cfg *Config, deps Dependencies) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		deps:      deps,
		logger:    logger.With("component", "api"),
		startTime: time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "conduit-admin",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})

	s.setupRoutes()
	return s
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("API server listening", "addr", addr, "prefix", s.config.Prefix)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// setupRoutes configures all API routes with middleware
func (s *Server) setupRoutes() {
	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.app.Use(requestid.New())
	s.app.Use(s.loggingMiddleware)
	s.app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, Authorization, " + HeaderAdminUser,
	}))

	if s.deps.Gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.app.Group(s.config.Prefix)

	// Cache configuration endpoints
	api.Get("/cache/config", s.handleGetConfiguration)
	api.Put("/cache/config", s.handleUpdateConfiguration)
	api.Put("/cache/regions/:region/policy", s.handleUpdatePolicy)

	// Statistics endpoints
	api.Get("/cache/statistics", s.handleGetStatistics)
	api.Get("/cache/statistics/top", s.handleGetTopCachedItems)
	if s.deps.History != nil {
		api.Get("/cache/statistics/history", s.handleGetStatisticsHistory)
	}

	// Operational endpoints
	api.Get("/cache/regions/:region/entries", s.handleGetEntries)
	api.Post("/cache/regions/:region/refresh", s.handleRefreshCache)
	if s.deps.Audit != nil {
		api.Get("/cache/regions/:region/audit", s.handleGetAudit)
	}
	if s.deps.Events != nil {
		api.Get("/cache/events", s.handleEventStream)
	}
	api.Delete("/cache/:cacheId", s.handleClearCache)

	// System endpoints
	api.Get("/system/health", s.handleGetSystemHealth)
	if s.deps.ConfigManager != nil {
		api.Post("/system/config/reload", s.handleReloadConfig)
	}
}

// errorHandler answers errors that escape handlers, such as unknown routes
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		code := ErrCodeBadRequest
		switch fe.Code {
		case fiber.StatusNotFound:
			code = ErrCodeNotFound
		case fiber.StatusInternalServerError:
			code = ErrCodeInternalServer
		}
		return RespondError(c, fe.Code, code, fe.Message, "")
	}
	return s.RespondServiceError(c, ErrMsgInternalServer, err)
}

// checkSystemHealth performs a basic health check
func (s *Server) checkSystemHealth(ctx context.Context) SystemHealthResponse {
	components := make(map[string]ComponentHealth)
	overallStatus := "healthy"

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(ctx); err != nil {
			components["database"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			overallStatus = "unhealthy"
		} else {
			components["database"] = ComponentHealth{Status: "healthy"}
		}
	}

	if _, err := s.deps.Cache.GetStatistics(ctx, ""); err != nil {
		components["cache"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		if overallStatus == "healthy" {
			overallStatus = "degraded"
		}
	} else {
		components["cache"] = ComponentHealth{Status: "healthy"}
	}

	return SystemHealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(s.startTime).Truncate(time.Second).String(),
		GoVersion:  runtime.Version(),
		Components: components,
	}
}
