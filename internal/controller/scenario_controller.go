package controller

import (
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScenarioController struct {
	ScenarioService *service.ScenarioService
	AuthService     *service.AuthService
}

func NewScenarioController(scenarioService *service.ScenarioService, authService *service.AuthService) *ScenarioController {
	return &ScenarioController{ScenarioService: scenarioService, AuthService: authService}
}

// swagger:model TransitionRequest
type TransitionRequest struct {
	StepID      string `json:"stepId" binding:"required"`
	ChoiceIndex *int   `json:"choiceIndex" binding:"required"`
}

// Start godoc
// @Summary Entry step of a scenario
// @Tags scenarios
// @Produce  json
// @Param   id path int true "Content ID"
// @Success 200 {object} util.Response{data=service.StepView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/scenarios/{id}/start [post]
func (c *ScenarioController) Start(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	contentID := util.ParseUintParam(ctx.Param("id"))
	if contentID == 0 {
		util.BadRequest(ctx, "invalid content id")
		return
	}

	step, err := c.ScenarioService.Start(user, contentID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, step)
}

// Transition godoc
// @Summary Apply a choice at a scenario step
// @Description A choice without a next step ends the scenario with that choice's feedback and impact
// @Tags scenarios
// @Accept  json
// @Produce  json
// @Param   id path int true "Content ID"
// @Param   body body TransitionRequest true "Step and choice"
// @Success 200 {object} util.Response{data=service.TransitionResult}
// @Failure 400 {object} util.Response
// @Security BearerAuth
// @Router /api/scenarios/{id}/transition [post]
func (c *ScenarioController) Transition(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	contentID := util.ParseUintParam(ctx.Param("id"))
	if contentID == 0 {
		util.BadRequest(ctx, "invalid content id")
		return
	}

	var req TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ScenarioService.Transition(user, contentID, req.StepID, *req.ChoiceIndex)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
