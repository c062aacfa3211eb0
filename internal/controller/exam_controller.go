package controller

import (
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
	AuthService *service.AuthService
}

func NewExamController(examService *service.ExamService, authService *service.AuthService) *ExamController {
	return &ExamController{ExamService: examService, AuthService: authService}
}

// swagger:model AnswersRequest
type AnswersRequest struct {
	Answers []model.Answer `json:"answers"`
}

// GetPlacement godoc
// @Summary The placement exam, answers withheld
// @Tags exams
// @Produce  json
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 403 {object} util.Response
// @Security BearerAuth
// @Router /api/exams/placement [get]
func (c *ExamController) GetPlacement(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ExamService.GetPlacement(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Get godoc
// @Summary One exam for taking, answers withheld
// @Tags exams
// @Produce  json
// @Param   id path int true "Exam ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security BearerAuth
// @Router /api/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.ParseUintParam(ctx.Param("id"))
	if examID == 0 {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	view, err := c.ExamService.GetForTaker(claims.UserID, examID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// StartSession godoc
// @Summary Start (or resume) a timed exam session
// @Tags exams
// @Produce  json
// @Param   id path int true "Exam ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 403 {object} util.Response
// @Security BearerAuth
// @Router /api/exams/{id}/session [post]
func (c *ExamController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.ParseUintParam(ctx.Param("id"))
	if examID == 0 {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	view, err := c.ExamService.StartSession(claims.UserID, examID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SaveProgress godoc
// @Summary Snapshot answers on an active session
// @Tags exams
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   body body AnswersRequest true "Current answers"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Security BearerAuth
// @Router /api/sessions/{id}/progress [put]
func (c *ExamController) SaveProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ExamService.SaveProgress(claims.UserID, ctx.Param("id"), req.Answers); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Submit godoc
// @Summary Submit a session for scoring
// @Description MCQ-only exams score immediately; descriptive answers queue for manual grading
// @Tags exams
// @Accept  json
// @Produce  json
// @Param   id path string true "Session ID"
// @Param   body body AnswersRequest true "Final answers"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Security BearerAuth
// @Router /api/sessions/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ExamService.Submit(claims.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Cancel godoc
// @Summary Abandon an active session without an attempt
// @Tags exams
// @Produce  json
// @Param   id path string true "Session ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Security BearerAuth
// @Router /api/sessions/{id} [delete]
func (c *ExamController) Cancel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ExamService.Cancel(claims.UserID, ctx.Param("id")); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListAttempts godoc
// @Summary The caller's attempt history
// @Tags exams
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Attempt}
// @Security BearerAuth
// @Router /api/attempts [get]
func (c *ExamController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.ExamService.ListAttempts(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// CreateExam godoc
// @Summary Author an exam with questions
// @Tags exams
// @Accept  json
// @Produce  json
// @Param   body body service.ExamRequest true "Exam payload"
// @Success 201 {object} util.Response{data=model.Exam}
// @Failure 400 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.CreateExam(user, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// UpdateExam godoc
// @Summary Rewrite an exam and its question list
// @Tags exams
// @Accept  json
// @Produce  json
// @Param   id path int true "Exam ID"
// @Param   body body service.ExamRequest true "Exam payload"
// @Success 200 {object} util.Response{data=model.Exam}
// @Failure 403 {object} util.Response
// @Security BearerAuth
// @Router /api/staff/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.ParseUintParam(ctx.Param("id"))
	if examID == 0 {
		util.BadRequest(ctx, "invalid exam id")
		return
	}

	var req service.ExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.UpdateExam(user, examID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// ListExams godoc
// @Summary Full exam catalog with answers, staff only
// @Tags exams
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Exam}
// @Security BearerAuth
// @Router /api/staff/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.ExamService.ListExams(user)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}
