package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vigilo-hq/workforce-api/api/swagger"
	"github.com/vigilo-hq/workforce-api/internal/handler"
	"github.com/vigilo-hq/workforce-api/internal/middleware"
	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/repository"
	"github.com/vigilo-hq/workforce-api/internal/service"
	"github.com/vigilo-hq/workforce-api/pkg/cache"
	"github.com/vigilo-hq/workforce-api/pkg/config"
	"github.com/vigilo-hq/workforce-api/pkg/database"
	"github.com/vigilo-hq/workforce-api/pkg/export"
	"github.com/vigilo-hq/workforce-api/pkg/jobs"
	"github.com/vigilo-hq/workforce-api/pkg/logger"
	corsmiddleware "github.com/vigilo-hq/workforce-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vigilo-hq/workforce-api/pkg/middleware/requestid"
	"github.com/vigilo-hq/workforce-api/pkg/storage"
)

// @title Workforce Attendance API
// @version 1.0.0
// @description Role-based workforce attendance and weekly scheduling service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	officeRepo := repository.NewOfficeRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	officeSvc := service.NewOfficeService(officeRepo, userRepo, validate, logr, cfg.Attendance.QRTokenLength)
	employeeSvc := service.NewEmployeeService(employeeRepo, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, cacheRepo, metricsSvc, cfg.Cache.CacheTTL, cfg.Cache.Enabled, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, shiftSvc, employeeSvc, userRepo, validate, logr, cfg.Schedule.DefaultShiftName)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, officeRepo, scheduleRepo, shiftSvc, employeeSvc, validate, logr, service.AttendanceConfig{
		GeofenceRadiusMeters: cfg.Attendance.GeofenceRadiusMeters,
		LateGrace:            cfg.Attendance.LateGrace,
	}, cfg.Schedule.DefaultShiftName)
	statsSvc := service.NewStatsService(statsRepo, shiftSvc, logr, cfg.Schedule.DefaultShiftName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(statsSvc, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, export.NewCSVExporter(), export.NewPDFExporter())

		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(ctx)

		reportSvc = service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	officeHandler := handler.NewOfficeHandler(officeSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleSupervisor, models.RoleAgent)

	users := authed.Group("/users")
	users.GET("", admin, userHandler.List)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.AllowSelf), userHandler.Get)
	users.POST("", admin, middleware.Audit(userRepo, models.AuditActionUserCreate, "users"), userHandler.Create)
	users.PUT("/:id", admin, middleware.Audit(userRepo, models.AuditActionUserUpdate, "users"), userHandler.Update)
	users.DELETE("/:id", admin, middleware.Audit(userRepo, models.AuditActionUserDelete, "users"), userHandler.Delete)

	offices := authed.Group("/despachos")
	offices.GET("", staff, officeHandler.List)
	offices.GET("/:id", staff, officeHandler.Get)
	offices.POST("", admin, officeHandler.Create)
	offices.PUT("/:id", admin, officeHandler.Update)
	offices.POST("/:id/qr", admin, officeHandler.RotateQR)
	offices.DELETE("/:id", admin, officeHandler.Delete)

	employees := authed.Group("/empleados")
	employees.GET("", staff, employeeHandler.List)
	employees.GET("/:id", staff, employeeHandler.Get)
	employees.POST("", admin, employeeHandler.Create)
	employees.PUT("/:id", admin, employeeHandler.Update)
	employees.POST("/:id/baja", admin, employeeHandler.Terminate)
	authed.GET("/puestos", staff, employeeHandler.ListPositions)

	shifts := authed.Group("/turnos")
	shifts.GET("", anyRole, shiftHandler.List)
	shifts.GET("/:id", anyRole, shiftHandler.Get)
	shifts.POST("", admin, shiftHandler.Create)
	shifts.PUT("/:id", admin, shiftHandler.Update)
	shifts.DELETE("/:id", admin, shiftHandler.Delete)

	schedules := authed.Group("/horarios")
	schedules.GET("/empleado/:id", anyRole, scheduleHandler.GetEmployeeWeek)
	schedules.PATCH("/empleado/:id", staff, scheduleHandler.UpdateEmployeeWeek)
	schedules.GET("/despacho/:id", staff, scheduleHandler.GetOfficeWeeks)
	schedules.PATCH("/despacho/:id", staff, scheduleHandler.UpdateOfficeWeeks)

	attendances := authed.Group("/asistencias")
	attendances.POST("/scan", anyRole, attendanceHandler.Scan)
	attendances.GET("", anyRole, attendanceHandler.List)

	stats := authed.Group("/estadisticas")
	stats.GET("/diarias", staff, statsHandler.Daily)
	stats.GET("/rango", staff, statsHandler.Range)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		reports := authed.Group("/reportes")
		reports.POST("", staff, reportHandler.Create)
		reports.GET("/:id", anyRole, reportHandler.Status)
		// Downloads carry their own signed token, no JWT required.
		api.GET("/export/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
