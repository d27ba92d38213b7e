package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/colegio-adm/colegio-api/api/swagger"
	"github.com/colegio-adm/colegio-api/internal/handler"
	"github.com/colegio-adm/colegio-api/internal/middleware"
	"github.com/colegio-adm/colegio-api/internal/models"
	"github.com/colegio-adm/colegio-api/internal/repository"
	"github.com/colegio-adm/colegio-api/internal/service"
	"github.com/colegio-adm/colegio-api/pkg/cache"
	"github.com/colegio-adm/colegio-api/pkg/config"
	"github.com/colegio-adm/colegio-api/pkg/database"
	"github.com/colegio-adm/colegio-api/pkg/logger"
	corsmiddleware "github.com/colegio-adm/colegio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/colegio-adm/colegio-api/pkg/middleware/requestid"
)

// @title Colegio ADM API
// @version 1.0.0
// @description School administration backend: students, grades, attendance and payments
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)
	guardianRepo := repository.NewGuardianRepository(db)
	statsRepo := repository.NewStatsRepository(db, paymentRepo)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "colegio-api",
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, subjectRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, metricsSvc, validate, logr, cfg.Payments.FolioPrefix)
	userSvc := service.NewUserService(userRepo, validate, logr)
	guardianSvc := service.NewGuardianService(guardianRepo, userRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:   studentSvc,
		Grades:     gradeSvc,
		GradeRows:  gradeRepo,
		Attendance: attendanceSvc,
		Payments:   paymentSvc,
		Counters:   statsRepo,
		Metrics:    metricsSvc,
		Cache:      cacheSvc,
		Logger:     logr,
		Config:     service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	exportSvc := service.NewExportService(studentSvc, gradeSvc, paymentRepo, service.ExportServiceConfig{
		InstitutionName: cfg.Exports.InstitutionName,
	}, logr)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	paymentSvc.StartOverdueSweep(sweepCtx, cfg.Payments.SweepInterval)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	userHandler := handler.NewUserHandler(userSvc)
	guardianHandler := handler.NewGuardianHandler(guardianSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector, models.RoleSecretary)
	academics := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector, models.RoleSecretary, models.RoleTeacher)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleDirector, models.RoleSecretary, models.RoleTeacher, models.RoleStudent, models.RoleParent)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		students := protected.Group("/students")
		{
			students.GET("", academics, studentHandler.List)
			students.GET("/:id", anyRole, studentHandler.Get)
			students.POST("", staff, studentHandler.Create)
			students.PUT("/:id", staff, studentHandler.Update)
			students.DELETE("/:id", staff, studentHandler.Archive)
		}

		teachers := protected.Group("/teachers")
		{
			teachers.GET("", academics, teacherHandler.List)
			teachers.GET("/:id", academics, teacherHandler.Get)
			teachers.POST("", staff, teacherHandler.Create)
			teachers.PUT("/:id", staff, teacherHandler.Update)
			teachers.DELETE("/:id", staff, teacherHandler.Archive)
		}

		subjects := protected.Group("/subjects")
		{
			subjects.GET("", anyRole, subjectHandler.List)
			subjects.GET("/:id", anyRole, subjectHandler.Get)
			subjects.POST("", staff, subjectHandler.Create)
			subjects.PUT("/:id", staff, subjectHandler.Update)
			subjects.DELETE("/:id", staff, subjectHandler.Archive)
		}

		groups := protected.Group("/groups")
		{
			groups.GET("", academics, groupHandler.List)
			groups.GET("/:id", academics, groupHandler.Get)
			groups.POST("", staff, groupHandler.Create)
			groups.PUT("/:id", staff, groupHandler.Update)
			groups.DELETE("/:id", staff, groupHandler.Archive)
			groups.GET("/:id/members", academics, groupHandler.Members)
			groups.POST("/:id/members", staff, groupHandler.Enroll)
			groups.DELETE("/:id/members/:studentId", staff, groupHandler.Withdraw)
			groups.GET("/:id/subjects", academics, groupHandler.Subjects)
			groups.POST("/:id/subjects", staff, groupHandler.AssignSubject)
			groups.DELETE("/:id/subjects/:subjectId", staff, groupHandler.UnassignSubject)
		}

		grades := protected.Group("/grades")
		{
			grades.GET("", academics, gradeHandler.List)
			grades.GET("/types", anyRole, gradeHandler.Types)
			grades.GET("/report-card/:studentId", anyRole, gradeHandler.ReportCard)
			grades.POST("", academics, gradeHandler.Create)
			grades.PUT("/:id", academics, gradeHandler.Update)
			grades.DELETE("/:id", staff, gradeHandler.Delete)
		}

		attendance := protected.Group("/attendance")
		{
			attendance.GET("", academics, attendanceHandler.List)
			attendance.GET("/summary/:studentId", anyRole, attendanceHandler.StudentSummary)
			attendance.POST("", academics, attendanceHandler.Record)
			attendance.POST("/roll-call", academics, attendanceHandler.RollCall)
			attendance.PUT("/:id", academics, attendanceHandler.Update)
			attendance.DELETE("/:id", staff, attendanceHandler.Delete)
		}

		payments := protected.Group("/payments")
		{
			payments.GET("", staff, paymentHandler.List)
			payments.GET("/:id", staff, paymentHandler.Get)
			payments.GET("/folio/:folio", staff, paymentHandler.GetByFolio)
			payments.GET("/summary/:studentId", anyRole, paymentHandler.Summary)
			payments.POST("", staff, paymentHandler.Register)
			payments.POST("/:id/pay", staff, paymentHandler.RecordPayment)
			payments.PATCH("/:id/status", staff, paymentHandler.Transition)
			payments.POST("/mark-overdue", staff, paymentHandler.MarkOverdue)
		}

		guardians := protected.Group("/guardians")
		{
			guardians.GET("", staff, guardianHandler.List)
			guardians.GET("/my-students", anyRole, guardianHandler.MyStudents)
			guardians.POST("", staff, guardianHandler.Link)
			guardians.PATCH("/:id/authorize", staff, guardianHandler.Authorize)
			guardians.DELETE("/:id", staff, guardianHandler.Unlink)
		}

		users := protected.Group("/users")
		{
			users.GET("", staff, userHandler.List)
			users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleDirector), "SELF"), userHandler.Get)
			users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
			users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Update)
			users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Archive)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/student/:studentId", anyRole, dashboardHandler.Student)
			dashboard.GET("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleDirector), dashboardHandler.Admin)
		}

		exports := protected.Group("/exports")
		{
			exports.GET("/report-card/:studentId", anyRole, exportHandler.ReportCard)
			exports.GET("/receipt/:id", staff, exportHandler.Receipt)
			exports.GET("/receipt/folio/:folio", staff, exportHandler.ReceiptByFolio)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
