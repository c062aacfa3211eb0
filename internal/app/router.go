package app

import (
	"cogniedu_backend/docs"
	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/middleware"
	"cogniedu_backend/internal/model"
	"cogniedu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}

	// Any authenticated account
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.Me)
		authGroup.GET("/users/me", c.user.GetProfile)
		authGroup.GET("/users/me/advice", c.user.StudyAdvice)
		authGroup.GET("/users/leaderboard", c.user.Leaderboard)

		authGroup.GET("/contents", c.content.GetLibrary)
		authGroup.GET("/contents/:id", c.content.Get)

		authGroup.POST("/scenarios/:id/start", c.scenario.Start)
		authGroup.POST("/scenarios/:id/transition", c.scenario.Transition)

		authGroup.GET("/exams/placement", c.exam.GetPlacement)
		authGroup.GET("/exams/:id", c.exam.Get)
		authGroup.POST("/exams/:id/session", c.exam.StartSession)
		authGroup.PUT("/sessions/:id/progress", c.exam.SaveProgress)
		authGroup.POST("/sessions/:id/submit", c.exam.Submit)
		authGroup.DELETE("/sessions/:id", c.exam.Cancel)
		authGroup.GET("/attempts", c.exam.ListAttempts)

		authGroup.GET("/alerts", c.alert.ListRecent)
	}

	// Teachers (admins pass every role gate)
	staff := router.Group("/api/staff")
	staff.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleTeacher))
	{
		staff.GET("/contents", c.content.ListMine)
		staff.POST("/contents", c.content.Create)
		staff.PUT("/contents/:id", c.content.Update)
		staff.DELETE("/contents/:id", c.content.Delete)
		staff.POST("/contents/video", c.content.UploadVideo)

		staff.GET("/exams", c.exam.ListExams)
		staff.POST("/exams", c.exam.CreateExam)
		staff.PUT("/exams/:id", c.exam.UpdateExam)

		staff.GET("/grading", c.grading.ListPending)
		staff.POST("/grading/:id", c.grading.Grade)
		staff.GET("/grading/:id/suggestion", c.grading.SuggestGrade)

		staff.POST("/users/:id/placement-retake", c.user.GrantPlacementRetake)
	}

	// Admins
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/users", c.user.List)
		admin.GET("/users/:id", c.user.Get)
		admin.POST("/staff", c.auth.CreateStaff)
		admin.POST("/alerts", c.alert.Publish)
		admin.GET("/analytics", c.analytics.GetOverview)
	}
}
