package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/rea/internal/app/models/dto"
	"github.com/yigit/rea/internal/app/services"
	"github.com/yigit/rea/internal/middleware"
)

// StatsController serves the landing page counters
type StatsController struct {
	statsService services.StatsService
}

// NewStatsController creates a new StatsController
func NewStatsController(statsService services.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetStats returns instrument, teacher and student counts
// @Summary Landing page statistics
// @Tags stats
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StatsResponse}
// @Router /stats/ [get]
func (c *StatsController) GetStats(ctx *gin.Context) {
	resp, err := c.statsService.GetStats(ctx.Request.Context(), middleware.ActorFromContext(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
