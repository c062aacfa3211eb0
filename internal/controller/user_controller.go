package controller

import (
	"strconv"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary Own profile with progression state and score history
// @Tags users
// @Produce  json
// @Success 200 {object} util.Response{data=service.Profile}
// @Failure 401 {object} util.Response
// @Security BearerAuth
// @Router /api/users/me [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// StudyAdvice godoc
// @Summary Advisor analysis of the caller's score history
// @Tags users
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Security BearerAuth
// @Router /api/users/me/advice [get]
func (c *UserController) StudyAdvice(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	advice, err := c.UserService.StudyAdvice(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"advice": advice})
}

// Leaderboard godoc
// @Summary Citizens ranked by XP
// @Tags users
// @Produce  json
// @Param   limit query int false "Number of entries, default 10"
// @Success 200 {object} util.Response{data=[]model.User}
// @Security BearerAuth
// @Router /api/users/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	users, err := c.UserService.Leaderboard(limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// List godoc
// @Summary List accounts
// @Tags users
// @Produce  json
// @Param   role query string false "Filter by role"
// @Param   page query int false "Page, default 1"
// @Param   pageSize query int false "Page size, default 20"
// @Success 200 {object} util.Response{data=object}
// @Security BearerAuth
// @Router /api/admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	role := model.UserRole(ctx.Query("role"))

	users, total, err := c.UserService.List(role, page, pageSize)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"users": users, "total": total, "page": page, "pageSize": pageSize})
}

// Get godoc
// @Summary Fetch one account
// @Tags users
// @Produce  json
// @Param   id path int true "User ID"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/admin/users/{id} [get]
func (c *UserController) Get(ctx *gin.Context) {
	userID := util.ParseUintParam(ctx.Param("id"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	user, err := c.UserService.GetByID(userID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GrantPlacementRetake godoc
// @Summary Allow a citizen to retake the placement exam
// @Description The retake can raise the citizen's level but never lower it
// @Tags users
// @Produce  json
// @Param   id path int true "User ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/users/{id}/placement-retake [post]
func (c *UserController) GrantPlacementRetake(ctx *gin.Context) {
	userID := util.ParseUintParam(ctx.Param("id"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	if err := c.UserService.GrantPlacementRetake(userID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
