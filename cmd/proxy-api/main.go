package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-proxy-api/api/swagger"
	"github.com/noah-isme/sma-proxy-api/internal/engine"
	"github.com/noah-isme/sma-proxy-api/internal/handler"
	"github.com/noah-isme/sma-proxy-api/internal/middleware"
	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/notify"
	"github.com/noah-isme/sma-proxy-api/internal/repository"
	"github.com/noah-isme/sma-proxy-api/internal/service"
	"github.com/noah-isme/sma-proxy-api/internal/state"
	"github.com/noah-isme/sma-proxy-api/internal/suggest"
	"github.com/noah-isme/sma-proxy-api/pkg/cache"
	"github.com/noah-isme/sma-proxy-api/pkg/config"
	"github.com/noah-isme/sma-proxy-api/pkg/database"
	"github.com/noah-isme/sma-proxy-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-proxy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-proxy-api/pkg/middleware/requestid"
)

// @title SMA Proxy API
// @version 0.1.0
// @description Substitute teacher assignment and workload engine
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

	teacherRepo := repository.NewTeacherRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)

	store := state.NewStore()
	if err := bootstrap(context.Background(), store, teacherRepo, timetableRepo, assignmentRepo, attendanceRepo, substitutionRepo); err != nil {
		logr.Sugar().Fatalw("failed to bootstrap state", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	// Optional collaborators stay nil interfaces when disabled.
	var notifier interface {
		AssignmentCommitted(ctx context.Context, record models.SubstitutionRecord)
	}
	if cfg.Notify.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		notifier = notify.NewPublisher(redisClient, cfg.Notify.Channel, logr, metricsSvc)
	}

	var advisory interface {
		Fetch(ctx context.Context, date time.Time) ([]suggest.Proposal, error)
	}
	if cfg.Advisory.Enabled {
		advisory = suggest.NewClient(cfg.Advisory.BaseURL, cfg.Advisory.Timeout)
	}

	substitutionSvc := service.NewSubstitutionService(
		store,
		substitutionRepo,
		attendanceRepo,
		notifier,
		advisory,
		metricsSvc,
		nil,
		logr,
		cfg.Engine.WeeklyCap,
	)
	workloadSvc := service.NewWorkloadService(store, logr, cfg.Engine.WeeklyCap)
	lifecycleSvc := service.NewLifecycleService(store, substitutionRepo, nil, logr)

	substitutionHandler := handler.NewSubstitutionHandler(substitutionSvc)
	workloadHandler := handler.NewWorkloadHandler(workloadSvc)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		subs := api.Group("/substitutions")
		subs.POST("/scan", substitutionHandler.Scan)
		subs.GET("", substitutionHandler.List)
		subs.GET("/:id/candidates", substitutionHandler.Candidates)
		subs.POST("/:id/commit", substitutionHandler.Commit)
		subs.POST("/proposals/apply", substitutionHandler.ApplyProposals)
		subs.POST("/archive", lifecycleHandler.Archive)
		subs.DELETE("/:id", lifecycleHandler.Purge)

		teachers := api.Group("/teachers")
		teachers.GET("/:id/workload", workloadHandler.Workload)
		teachers.GET("/:id/availability", workloadHandler.Availability)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// bootstrap fills the in-memory store from the durable tables. Attendance is
// limited to the current work week; scans refresh it again per request.
func bootstrap(
	ctx context.Context,
	store *state.Store,
	teacherRepo *repository.TeacherRepository,
	timetableRepo *repository.TimetableRepository,
	assignmentRepo *repository.AssignmentRepository,
	attendanceRepo *repository.AttendanceRepository,
	substitutionRepo *repository.SubstitutionRepository,
) error {
	teachers, err := teacherRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load teachers: %w", err)
	}
	entries, err := timetableRepo.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("load timetable entries: %w", err)
	}
	blocks, err := timetableRepo.ListBlocks(ctx)
	if err != nil {
		return fmt.Errorf("load combined blocks: %w", err)
	}
	assignments, err := assignmentRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load assignments: %w", err)
	}
	weekStart, weekEnd := engine.WorkWeekOf(time.Now().UTC())
	attendance, err := attendanceRepo.ListByDateRange(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	substitutions, err := substitutionRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load substitutions: %w", err)
	}

	store.Bootstrap(teachers, entries, assignments, attendance, substitutions, blocks)
	return nil
}
