package handlers

import (
	"net/http"

	"github.com/cabpool/cabpool-backend/types"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService StatsServiceInterface
}

func NewStatsHandler(statsService StatsServiceInterface) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats godoc
// @Summary      Submission statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  types.Response{data=types.Stats}
// @Failure      500  {object}  types.ErrorResponse
// @Router       /api/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, types.Response{
		Success: true,
		Data:    stats,
	})
}
