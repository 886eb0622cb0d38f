package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is a backend that can report its health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a ping function to HealthChecker.
type CheckerFunc struct {
	name  string
	check func(ctx context.Context) error
}

// NewChecker names a check function.
func NewChecker(name string, check func(ctx context.Context) error) CheckerFunc {
	return CheckerFunc{name: name, check: check}
}

func (c CheckerFunc) Name() string                    { return c.name }
func (c CheckerFunc) Check(ctx context.Context) error { return c.check(ctx) }

// HealthHandler serves the liveness and readiness checks.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler over the configured backends.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

// LivenessResponse is the response for the liveness check.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the response for the readiness check.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck represents the health status of a single component.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz. It never checks backends.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz: 200 when every backend answers, 503
// otherwise.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.checkers) == 0 {
		c.JSON(http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	components := h.checkAll(ctx)

	resp := ReadinessResponse{Status: "ready", Components: components}
	status := http.StatusOK
	for _, cc := range components {
		if cc.Status != "healthy" {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(status, resp)
}

// checkAll runs all health checkers concurrently and returns results.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)
			cc := ComponentCheck{
				Status:  "healthy",
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}

			mu.Lock()
			results[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}

//Personal.AI order the ending
