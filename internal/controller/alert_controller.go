package controller

import (
	"strconv"

	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AlertController struct {
	AlertService *service.AlertService
}

func NewAlertController(alertService *service.AlertService) *AlertController {
	return &AlertController{AlertService: alertService}
}

// Publish godoc
// @Summary Broadcast a system alert
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   body body service.AlertRequest true "Alert payload"
// @Success 201 {object} util.Response{data=model.Alert}
// @Failure 400 {object} util.Response
// @Security BearerAuth
// @Router /api/admin/alerts [post]
func (c *AlertController) Publish(ctx *gin.Context) {
	var req service.AlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	alert, err := c.AlertService.Publish(ctx.Request.Context(), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, alert)
}

// ListRecent godoc
// @Summary Recent alerts
// @Tags alerts
// @Produce  json
// @Param   limit query int false "Number of entries, default 10"
// @Success 200 {object} util.Response{data=[]model.Alert}
// @Security BearerAuth
// @Router /api/alerts [get]
func (c *AlertController) ListRecent(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	alerts, err := c.AlertService.ListRecent(ctx.Request.Context(), limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, alerts)
}
