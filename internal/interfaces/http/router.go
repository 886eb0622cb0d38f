package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/simheat/internal/interfaces/http/handlers"
	"github.com/turtacn/simheat/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	HealthHandler   *handlers.HealthHandler
	HeatmapHandler  *handlers.HeatmapHandler
	ArtifactHandler *handlers.ArtifactHandler

	// Middleware
	AllowedOrigins []string
	APIKeys        []string
	RenderLimiter  middleware.RateLimiter
	MaxBodySize    int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter builds the gin engine: global middleware, public health and
// metrics routes, and the /api/v1 routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	// --- Global middleware ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, middleware.DefaultLoggingConfig()))
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = cfg.AllowedOrigins
		r.Use(middleware.CORS(corsCfg))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(limitBody(cfg.MaxBodySize))
	}
	r.NoRoute(handlers.NoRoute)

	// --- Health and metrics ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	if len(cfg.APIKeys) > 0 {
		api.Use(middleware.APIKeyAuth(middleware.AuthConfig{Keys: cfg.APIKeys}))
	}
	registerHeatmapRoutes(api, cfg.HeatmapHandler, cfg.RenderLimiter)
	if cfg.ArtifactHandler != nil {
		api.GET("/datasets/:name/artifacts", cfg.ArtifactHandler.ListArtifacts)
	}

	return r
}

// registerHeatmapRoutes mounts the dataset and upload endpoints. Rendering is
// CPU bound, so only the render routes sit behind the limiter.
func registerHeatmapRoutes(api *gin.RouterGroup, h *handlers.HeatmapHandler, limiter middleware.RateLimiter) {
	if h == nil {
		return
	}
	api.GET("/datasets", h.ListDatasets)

	render := api.Group("")
	if limiter != nil {
		render.Use(middleware.RateLimit(limiter))
	}
	render.POST("/datasets/:name/render", h.RenderDataset)
	render.POST("/heatmaps", h.RenderUpload)
}

// limitBody caps request bodies at n bytes.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

//Personal.AI order the ending
