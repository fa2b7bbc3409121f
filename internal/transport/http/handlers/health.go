package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck probes a single dependency.
type ReadinessCheck func(ctx context.Context) error

// HealthOption configures the health handler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck registers a named dependency probe for the readiness endpoint.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if name == "" || check == nil {
			return
		}
		h.checks[name] = check
	}
}

// HealthHandler exposes liveness and readiness information.
type HealthHandler struct {
	startedAt time.Time
	checks    map[string]ReadinessCheck
}

// NewHealthHandler builds a new health handler instance.
func NewHealthHandler(opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		startedAt: time.Now().UTC(),
		checks:    make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Status godoc
// @Summary Service health check
// @Description Returns the status and start time of the service.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		StartedAt: h.startedAt,
	})
}

// Readiness godoc
// @Summary Service readiness check
// @Description Probes registered dependencies and reports per-check results.
// @Tags Health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	resp := ReadyResponse{Status: "ready", Checks: results}
	if status != http.StatusOK {
		resp.Status = "degraded"
	}

	c.JSON(status, resp)
}
