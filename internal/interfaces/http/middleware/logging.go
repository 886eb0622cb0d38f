package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/internal/infrastructure/monitoring/prometheus"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are not logged (health checks and scrapes).
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged as slow.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the logging configuration used by the server.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 5 * time.Second,
	}
}

// RequestLogging logs every request once it completes and records the HTTP
// metrics. Skipped paths are still measured but not logged.
func RequestLogging(logger logging.Logger, metrics *prometheus.AppMetrics, config LoggingConfig) gin.HandlerFunc {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(method).Inc()
			defer metrics.HTTPActiveRequests.WithLabelValues(method).Dec()
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		// The route template keeps metric cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(metrics, method, route, status, duration)

		if skipSet[c.Request.URL.Path] {
			return
		}
		fields := []logging.Field{
			logging.String("method", method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("client_ip", c.ClientIP()),
			logging.String("request_id", GetRequestID(c)),
		}
		if id := GetAPIKeyID(c); id != "" {
			fields = append(fields, logging.String("api_key_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.Err(c.Errors.Last().Err))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request completed with server error", fields...)
		case status >= 400:
			logger.Warn("HTTP request completed with client error", fields...)
		case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
			logger.Warn("HTTP request completed (slow)", fields...)
		default:
			logger.Info("HTTP request completed", fields...)
		}
	}
}

//Personal.AI order the ending
