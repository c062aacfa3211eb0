package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/controller"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/service"
	"cogniedu_backend/internal/util"
	"cogniedu_backend/pkg/database"
	"cogniedu_backend/pkg/logger"
	"cogniedu_backend/pkg/monitoring"
	"cogniedu_backend/pkg/security"
	"cogniedu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	stopWorkers     chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	content *repository.ContentRepository
	exam    *repository.ExamRepository
	attempt *repository.AttemptRepository
	session *repository.SessionRepository
	alert   *repository.AlertRepository
}

type services struct {
	auth      *service.AuthService
	storage   *service.StorageService
	advisor   *service.AdvisorService
	user      *service.UserService
	content   *service.ContentService
	scenario  *service.ScenarioService
	exam      *service.ExamService
	grading   *service.GradingService
	alert     *service.AlertService
	analytics *service.AnalyticsService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	content   *controller.ContentController
	scenario  *controller.ScenarioController
	exam      *controller.ExamController
	grading   *controller.GradingController
	alert     *controller.AlertController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		content: repository.NewContentRepository(db),
		exam:    repository.NewExamRepository(db),
		attempt: repository.NewAttemptRepository(db),
		session: repository.NewSessionRepository(db),
		alert:   repository.NewAlertRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.advisor = service.NewAdvisorService(cfg.Advisor)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.advisor)
	s.content = service.NewContentService(repos.content, repos.exam, s.storage)
	s.scenario = service.NewScenarioService(repos.content)
	s.exam = service.NewExamService(db, repos.exam, repos.user, repos.content, repos.attempt, repos.session)
	s.grading = service.NewGradingService(db, repos.attempt, repos.exam, repos.user, s.advisor)
	s.alert = service.NewAlertService(repos.alert, rdb)
	s.analytics = service.NewAnalyticsService(db, repos.attempt, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		content:   controller.NewContentController(s.content, s.auth),
		scenario:  controller.NewScenarioController(s.scenario, s.auth),
		exam:      controller.NewExamController(s.exam, s.auth),
		grading:   controller.NewGradingController(s.grading),
		alert:     controller.NewAlertController(s.alert),
		analytics: controller.NewAnalyticsController(s.analytics),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the session expiry sweep so abandoned exams are
// force-submitted on deadline.
func (a *App) startBackgroundTasks(s *services) {
	a.stopWorkers = make(chan struct{})
	s.exam.StartExpiryWorker(30*time.Second, a.stopWorkers)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("cogniedu-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopWorkers != nil {
		close(a.stopWorkers)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
