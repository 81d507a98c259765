package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]HealthChecker
	now    func() time.Time
}

// NewHealthHandler reports on every named dependency. Nil checkers are
// skipped so optional components can be passed unconditionally.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	active := make(map[string]HealthChecker, len(checks))
	for name, hc := range checks {
		if hc != nil {
			active[name] = hc
		}
	}
	return &HealthHandler{checks: active, now: time.Now}
}

type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp string            `json:"timestamp" example:"2026-03-02T14:30:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) run(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, hc := range h.checks {
		if err := hc.HealthCheck(ctx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			healthy = false
			continue
		}
		results[name] = "healthy"
	}
	return results, healthy
}

// Health godoc
// @Summary Dependency health
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.run(ctx)

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, healthy := h.run(ctx); !healthy {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}
