package handlers

import (
	"net/http"

	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthService HealthServiceInterface
}

func NewHealthHandler(healthService HealthServiceInterface) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// Health godoc
// @Summary      Health check
// @Description  Always 200 while the process is serving; never touches the database.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.Health
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthService.Health())
}

// LivenessCheck handles kubernetes liveness checks
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck godoc
// @Summary      Readiness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.Readiness
// @Failure      503  {object}  types.Readiness
// @Router       /health/readiness [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	readiness := h.healthService.Readiness(c.Request.Context())

	if readiness.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, readiness)
		return
	}

	c.JSON(http.StatusOK, readiness)
}
