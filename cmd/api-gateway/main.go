package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rohitbihal/smart-classroom-api/api/swagger"
	"github.com/rohitbihal/smart-classroom-api/internal/generator"
	"github.com/rohitbihal/smart-classroom-api/internal/handler"
	"github.com/rohitbihal/smart-classroom-api/internal/middleware"
	"github.com/rohitbihal/smart-classroom-api/internal/repository"
	"github.com/rohitbihal/smart-classroom-api/internal/service"
	"github.com/rohitbihal/smart-classroom-api/pkg/cache"
	"github.com/rohitbihal/smart-classroom-api/pkg/config"
	"github.com/rohitbihal/smart-classroom-api/pkg/database"
	"github.com/rohitbihal/smart-classroom-api/pkg/logger"
	corsmiddleware "github.com/rohitbihal/smart-classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rohitbihal/smart-classroom-api/pkg/middleware/requestid"
	"github.com/rohitbihal/smart-classroom-api/pkg/storage"
)

// @title Smart Classroom API
// @version 1.0.0
// @description Constraint-driven classroom timetable scheduling service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	classRepo := repository.NewClassRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	slotSvc := service.NewTimeSlotService(cacheSvc, logr)
	classSvc := service.NewClassService(classRepo, nil, logr)
	facultySvc := service.NewFacultyService(facultyRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, facultyRepo, nil, logr)
	roomSvc := service.NewRoomService(roomRepo, nil, logr)
	constraintSvc := service.NewConstraintService(constraintRepo, classRepo, subjectRepo, roomRepo, slotSvc, nil, logr)

	engine := generator.NewHTTPClient(cfg.Generator, logr)
	generationSvc := service.NewGenerationService(
		classRepo,
		facultyRepo,
		subjectRepo,
		roomRepo,
		timetableRepo,
		constraintSvc,
		slotSvc,
		engine,
		metricsSvc,
		cacheSvc,
		logr,
	)

	analyticsSvc := service.NewAnalyticsService(
		timetableRepo,
		facultyRepo,
		roomRepo,
		classRepo,
		constraintSvc,
		slotSvc,
		cacheSvc,
		logr,
	)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(
		timetableRepo,
		exportStore,
		signer,
		metricsSvc,
		logr,
		cfg.APIPrefix,
		cfg.Exports.WorkerConcurrency,
		cfg.Exports.WorkerRetries,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Exports.Enabled {
		exportSvc.StartWorkers(ctx)
		defer exportSvc.StopWorkers()
		exportSvc.StartCleanup(ctx, cfg.Exports.CleanupInterval)
	}

	classHandler := handler.NewClassHandler(classSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	constraintHandler := handler.NewConstraintHandler(constraintSvc, cfg.Institution.DefaultID)
	timetableHandler := handler.NewTimetableHandler(generationSvc, exportSvc, cfg.Institution.DefaultID)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, cfg.Institution.DefaultID)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/classes", classHandler.List)
		api.POST("/classes", classHandler.Create)
		api.GET("/classes/:id", classHandler.Get)
		api.PUT("/classes/:id", classHandler.Update)
		api.DELETE("/classes/:id", classHandler.Delete)

		api.GET("/faculty", facultyHandler.List)
		api.POST("/faculty", facultyHandler.Create)
		api.GET("/faculty/:id", facultyHandler.Get)
		api.PUT("/faculty/:id", facultyHandler.Update)
		api.DELETE("/faculty/:id", facultyHandler.Delete)

		api.GET("/subjects", subjectHandler.List)
		api.POST("/subjects", subjectHandler.Create)
		api.GET("/subjects/:id", subjectHandler.Get)
		api.PUT("/subjects/:id", subjectHandler.Update)
		api.DELETE("/subjects/:id", subjectHandler.Delete)

		api.GET("/rooms", roomHandler.List)
		api.POST("/rooms", roomHandler.Create)
		api.GET("/rooms/:id", roomHandler.Get)
		api.PUT("/rooms/:id", roomHandler.Update)
		api.DELETE("/rooms/:id", roomHandler.Delete)

		api.GET("/constraints", constraintHandler.Get)
		api.PUT("/constraints/faculty-preferences", constraintHandler.UpsertFacultyPreference)
		api.GET("/constraints/fixed-classes", constraintHandler.ListFixedClasses)
		api.POST("/constraints/fixed-classes", constraintHandler.AddFixedClass)
		api.DELETE("/constraints/fixed-classes/:id", constraintHandler.RemoveFixedClass)
		api.GET("/constraints/custom", constraintHandler.ListCustomConstraints)
		api.POST("/constraints/custom", constraintHandler.CreateCustomConstraint)
		api.PATCH("/constraints/custom/:id", constraintHandler.ToggleCustomConstraint)
		api.DELETE("/constraints/custom/:id", constraintHandler.DeleteCustomConstraint)
		api.GET("/constraints/validation", constraintHandler.Validate)
		api.PUT("/constraints/:category", constraintHandler.UpdateCategory)

		api.POST("/timetable/generate", timetableHandler.Generate)
		api.GET("/timetable", timetableHandler.Current)
		api.GET("/timetable/export", timetableHandler.Export)
		api.POST("/timetable/exports", timetableHandler.CreateExport)
		api.GET("/timetable/exports/download", timetableHandler.DownloadExport)
		api.GET("/timetable/exports/:id", timetableHandler.ExportStatus)

		api.GET("/analytics/room-availability", analyticsHandler.RoomAvailability)
		api.GET("/analytics/faculty-workload", analyticsHandler.FacultyWorkload)
		api.GET("/analytics/room-utilization", analyticsHandler.RoomUtilization)
		api.GET("/analytics/equipment-utilization", analyticsHandler.EquipmentUtilization)
		api.GET("/analytics/unscheduled", analyticsHandler.Unscheduled)
		api.GET("/analytics/reconciliation", analyticsHandler.Reconciliation)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
