package controller

import (
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// GetOverview godoc
// @Summary Platform aggregates for the admin dashboard
// @Tags analytics
// @Produce  json
// @Success 200 {object} util.Response{data=service.Overview}
// @Security BearerAuth
// @Router /api/admin/analytics [get]
func (c *AnalyticsController) GetOverview(ctx *gin.Context) {
	overview, err := c.AnalyticsService.GetOverview(ctx.Request.Context())
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
