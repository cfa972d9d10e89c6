package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gmp-system/internal/controllers"
	"gmp-system/internal/listeners"
	"gmp-system/internal/repositories"
	"gmp-system/internal/services"
	"gmp-system/internal/workflow"
	"gmp-system/pkg/config"
	"gmp-system/pkg/eventbus"
	"gmp-system/pkg/middleware"
	"gmp-system/pkg/service"
)

type Loggers struct {
	Main      *zap.Logger
	Auth      *zap.Logger
	Workflow  *zap.Logger
	Signature *zap.Logger
}

// InitRouter собирает весь граф зависимостей и регистрирует маршруты.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(loggers.Main)

	// --- РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Main)
	caseRepo := repositories.NewCaseRepository(dbConn, loggers.Workflow)
	timelineRepo := repositories.NewTimelineRepository(dbConn)
	auditRepo := repositories.NewAuditRepository(dbConn)
	signatureRepo := repositories.NewSignatureRepository(dbConn)
	batchRepo := repositories.NewBatchRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	signatureService := services.NewSignatureService(
		txManager, signatureRepo, userRepo, auditRepo, cacheRepo,
		workflow.DefaultMeanings(), cfg.SignatureAuth, loggers.Signature,
	)
	guards := services.NewGuardRegistry(batchRepo, signatureRepo)
	executor := services.NewTransitionExecutor(
		txManager, caseRepo, timelineRepo, auditRepo,
		signatureService, guards, bus, loggers.Workflow,
	)
	oosService := services.NewOOSService(executor, caseRepo, batchRepo, userRepo, loggers.Workflow)
	batchRecordService := services.NewBatchRecordService(
		executor, txManager, caseRepo, batchRepo, timelineRepo, auditRepo,
		signatureRepo, signatureService, loggers.Workflow,
	)
	deviationService := services.NewDeviationService(executor, caseRepo, batchRepo, loggers.Workflow)
	timelineService := services.NewTimelineService(caseRepo, timelineRepo, signatureRepo, loggers.Workflow)
	auditService := services.NewAuditService(auditRepo, loggers.Main)
	authService := services.NewAuthService(userRepo, cacheRepo, jwtSvc, cfg.SignatureAuth, loggers.Auth)
	notificationService := services.NewNotificationService(loggers.Main)

	// --- СЛУШАТЕЛИ ---
	listeners.NewNotificationListener(notificationService, loggers.Main).Register(bus)

	// --- КОНТРОЛЛЕРЫ ---
	authController := controllers.NewAuthController(authService, loggers.Auth)
	oosController := controllers.NewOOSController(oosService, loggers.Workflow)
	batchRecordController := controllers.NewBatchRecordController(batchRecordService, loggers.Workflow)
	deviationController := controllers.NewDeviationController(deviationService, loggers.Workflow)
	signatureController := controllers.NewSignatureController(signatureService, loggers.Signature)
	timelineController := controllers.NewTimelineController(timelineService, loggers.Workflow)
	auditController := controllers.NewAuditController(auditService, loggers.Main)

	// --- РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authController)
	runOOSRouter(secureGroup, oosController, timelineController)
	runBatchRecordRouter(secureGroup, batchRecordController, timelineController)
	runDeviationRouter(secureGroup, deviationController, timelineController)
	runSignatureRouter(secureGroup, signatureController)
	runAuditRouter(secureGroup, auditController)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
