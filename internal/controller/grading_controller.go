package controller

import (
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	GradingService *service.GradingService
}

func NewGradingController(gradingService *service.GradingService) *GradingController {
	return &GradingController{GradingService: gradingService}
}

// swagger:model GradeRequest
type GradeRequest struct {
	Score *int `json:"score" binding:"required"`
}

// ListPending godoc
// @Summary The manual grading queue, oldest first
// @Tags grading
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.PendingAttempt}
// @Security BearerAuth
// @Router /api/staff/grading [get]
func (c *GradingController) ListPending(ctx *gin.Context) {
	pending, err := c.GradingService.ListPending()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}

// Grade godoc
// @Summary Finalize an attempt with a manual score
// @Description One shot: repeating the same score is a no-op, a different score is rejected
// @Tags grading
// @Accept  json
// @Produce  json
// @Param   id path string true "Attempt ID"
// @Param   body body GradeRequest true "Score 0-100"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/grading/{id} [post]
func (c *GradingController) Grade(ctx *gin.Context) {
	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.GradingService.Grade(ctx.Param("id"), *req.Score); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SuggestGrade godoc
// @Summary Advisory score for an ungraded attempt
// @Tags grading
// @Produce  json
// @Param   id path string true "Attempt ID"
// @Success 200 {object} util.Response{data=service.GradeSuggestion}
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/grading/{id}/suggestion [get]
func (c *GradingController) SuggestGrade(ctx *gin.Context) {
	suggestion, err := c.GradingService.SuggestGrade(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, suggestion)
}
