package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/srisai/college-api/api/swagger"
	"github.com/srisai/college-api/internal/handler"
	"github.com/srisai/college-api/internal/middleware"
	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/repository"
	"github.com/srisai/college-api/internal/service"
	"github.com/srisai/college-api/pkg/cache"
	"github.com/srisai/college-api/pkg/config"
	"github.com/srisai/college-api/pkg/database"
	"github.com/srisai/college-api/pkg/logger"
	corsmiddleware "github.com/srisai/college-api/pkg/middleware/cors"
	reqidmiddleware "github.com/srisai/college-api/pkg/middleware/requestid"
)

// @title College Records API
// @version 1.0.0
// @description Role-based academic records service
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	resultRepo := repository.NewResultRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "college-api",
		Audience:           []string{"college-api"},
	})
	courseSvc := service.NewCourseService(courseRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, sequenceRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, courseRepo, teacherRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, subjectRepo, sequenceRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, subjectRepo, nil, logr)
	examSvc := service.NewExamService(examRepo, subjectRepo, nil, logr)
	resultSvc := service.NewResultService(resultRepo, examRepo, subjectRepo, nil, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, nil, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Counts:        dashboardRepo,
		Announcements: announcementRepo,
		Exams:         examRepo,
		Teachers:      teacherRepo,
		Students:      studentRepo,
		Subjects:      subjectRepo,
		Results:       resultRepo,
		Attendance:    attendanceRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		CacheTTL:      cfg.Dashboard.CacheTTL,
	})
	reportSvc := service.NewReportService(studentRepo, resultRepo, attendanceRepo, cfg.Reports.InstitutionName, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, subjectSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, subjectSvc, attendanceSvc, resultSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, teacherSvc)
	examHandler := handler.NewExamHandler(examSvc, teacherSvc)
	resultHandler := handler.NewResultHandler(resultSvc, teacherSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, metricsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public auth endpoints.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	teaching := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	studentOnly := middleware.RequireRoles(models.RoleStudent)

	// Courses.
	authed.GET("/courses", courseHandler.List)
	authed.GET("/courses/:id", courseHandler.Get)
	authed.POST("/courses", adminOnly, courseHandler.Create)
	authed.PUT("/courses/:id", adminOnly, courseHandler.Update)
	authed.DELETE("/courses/:id", adminOnly, courseHandler.Delete)

	// Subjects.
	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/:id", subjectHandler.Get)
	authed.POST("/subjects", adminOnly, subjectHandler.Create)
	authed.PUT("/subjects/:id", adminOnly, subjectHandler.Update)
	authed.DELETE("/subjects/:id", adminOnly, subjectHandler.Delete)

	// Teachers.
	authed.GET("/teachers", adminOnly, teacherHandler.List)
	authed.GET("/teachers/me/subjects", middleware.RequireRoles(models.RoleTeacher), teacherHandler.MySubjects)
	authed.GET("/teachers/:id", adminOnly, teacherHandler.Get)
	authed.POST("/teachers", adminOnly, teacherHandler.Create)
	authed.PUT("/teachers/:id", adminOnly, teacherHandler.Update)
	authed.DELETE("/teachers/:id", adminOnly, teacherHandler.Delete)

	// Students.
	authed.GET("/students", adminOnly, studentHandler.List)
	authed.GET("/students/me/subjects", studentOnly, studentHandler.MySubjects)
	authed.GET("/students/me/attendance", studentOnly, studentHandler.MyAttendance)
	authed.GET("/students/me/results", studentOnly, studentHandler.MyResults)
	authed.GET("/students/:id", adminOnly, studentHandler.Get)
	authed.GET("/students/:id/attendance", adminOnly, studentHandler.Attendance)
	authed.GET("/students/:id/results", adminOnly, studentHandler.Results)
	authed.POST("/students", adminOnly, studentHandler.Create)
	authed.PUT("/students/:id", adminOnly, studentHandler.Update)
	authed.DELETE("/students/:id", adminOnly, studentHandler.Delete)

	// Enrollments.
	authed.GET("/enrollments", adminOnly, enrollmentHandler.List)
	authed.GET("/students/:id/enrollments", adminOnly, enrollmentHandler.ListByStudent)

	// Attendance.
	authed.GET("/subjects/:id/attendance/roster", teaching, attendanceHandler.Roster)
	authed.POST("/subjects/:id/attendance", teaching, attendanceHandler.Mark)

	// Exams.
	authed.GET("/exams", examHandler.List)
	authed.GET("/exams/:id", examHandler.Get)
	authed.POST("/exams", teaching, examHandler.Create)
	authed.PUT("/exams/:id", teaching, examHandler.Update)
	authed.DELETE("/exams/:id", adminOnly, examHandler.Delete)

	// Results.
	authed.GET("/exams/:id/results/roster", teaching, resultHandler.Roster)
	authed.GET("/exams/:id/results", teaching, resultHandler.ListByExam)
	authed.POST("/exams/:id/results", teaching, resultHandler.Submit)

	// Announcements.
	authed.GET("/announcements", announcementHandler.List)
	authed.GET("/announcements/:id", announcementHandler.Get)
	authed.POST("/announcements", adminOnly, announcementHandler.Create)
	authed.PUT("/announcements/:id", adminOnly, announcementHandler.Update)
	authed.DELETE("/announcements/:id", adminOnly, announcementHandler.Delete)

	// Dashboards.
	authed.GET("/dashboards/me", dashboardHandler.Me)
	authed.GET("/dashboards/admin", adminOnly, dashboardHandler.Admin)
	authed.GET("/dashboards/teacher", middleware.RequireRoles(models.RoleTeacher), dashboardHandler.Teacher)
	authed.GET("/dashboards/student", studentOnly, dashboardHandler.Student)
	authed.GET("/dashboards/system", adminOnly, dashboardHandler.SystemMetrics)
	authed.POST("/dashboards/refresh", adminOnly, dashboardHandler.Refresh)

	// Reports.
	authed.GET("/reports/students/:id/report-card", adminOnly, reportHandler.ReportCard)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
