package handlers

import (
	"context"
	"net/http"

	"github.com/VyaparSathi/vyapar-sathi-backend/services"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// HealthServiceInterface defines the methods used by HealthHandler.
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

var _ HealthServiceInterface = (*services.HealthService)(nil)

type HealthHandler struct {
	healthService HealthServiceInterface
}

func NewHealthHandler(healthService HealthServiceInterface) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// LivenessHandler reports that the process is up. Used by container
// orchestrators; does not touch dependencies.
// GET /health/liveness
func (h *HealthHandler) LivenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": string(types.HealthStatusUp)})
}

// ReadinessHandler checks downstream dependencies and reports 503 when the
// service cannot serve traffic.
// GET /health/readiness
func (h *HealthHandler) ReadinessHandler(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	status := http.StatusOK
	if health.Status == types.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
