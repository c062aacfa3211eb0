package controller

import (
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
	AuthService    *service.AuthService
}

func NewContentController(contentService *service.ContentService, authService *service.AuthService) *ContentController {
	return &ContentController{ContentService: contentService, AuthService: authService}
}

// GetLibrary godoc
// @Summary The content library bucketed by access
// @Description Splits active contents into available, recommended and locked for the caller
// @Tags contents
// @Produce  json
// @Success 200 {object} util.Response{data=service.Library}
// @Security BearerAuth
// @Router /api/contents [get]
func (c *ContentController) GetLibrary(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	library, err := c.ContentService.GetLibrary(user)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, library)
}

// Get godoc
// @Summary Open one content item
// @Tags contents
// @Produce  json
// @Param   id path int true "Content ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/contents/{id} [get]
func (c *ContentController) Get(ctx *gin.Context) {
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

	content, exams, err := c.ContentService.Get(user, contentID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"content": content, "exams": exams})
}

// Create godoc
// @Summary Author a content item
// @Tags contents
// @Accept  json
// @Produce  json
// @Param   body body service.ContentRequest true "Content payload"
// @Success 201 {object} util.Response{data=model.Content}
// @Failure 400 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/contents [post]
func (c *ContentController) Create(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	content, err := c.ContentService.Create(user.ID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, content)
}

// Update godoc
// @Summary Update a content item
// @Tags contents
// @Accept  json
// @Produce  json
// @Param   id path int true "Content ID"
// @Param   body body service.ContentRequest true "Content payload"
// @Success 200 {object} util.Response{data=model.Content}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/contents/{id} [put]
func (c *ContentController) Update(ctx *gin.Context) {
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

	var req service.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	content, err := c.ContentService.Update(user, contentID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, content)
}

// Delete godoc
// @Summary Delete a content item
// @Tags contents
// @Produce  json
// @Param   id path int true "Content ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/contents/{id} [delete]
func (c *ContentController) Delete(ctx *gin.Context) {
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

	if err := c.ContentService.Delete(user, contentID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListMine godoc
// @Summary Contents authored by the caller (all contents for admins)
// @Tags contents
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Content}
// @Security BearerAuth
// @Router /api/staff/contents [get]
func (c *ContentController) ListMine(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	contents, err := c.ContentService.ListForAuthor(user)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, contents)
}

// UploadVideo godoc
// @Summary Upload a content video
// @Description Stores the file and probes its duration in minutes
// @Tags contents
// @Accept  mpfd
// @Produce  json
// @Param   file formData file true "Video file"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/contents/video [post]
func (c *ContentController) UploadVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing video file")
		return
	}

	url, durationMinutes, err := c.ContentService.UploadVideo(ctx.Request.Context(), file)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url, "durationMinutes": durationMinutes})
}
