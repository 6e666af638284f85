// @title        Literacy Tracker API
// @version      1.0
// @description  Tiered literacy and math assessment tracking with benchmark-based support prioritization.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/literacy-tracker-api/api/swagger"
	"github.com/noah-isme/literacy-tracker-api/internal/handler"
	"github.com/noah-isme/literacy-tracker-api/internal/models"
	"github.com/noah-isme/literacy-tracker-api/internal/repository"
	"github.com/noah-isme/literacy-tracker-api/internal/scoring"
	"github.com/noah-isme/literacy-tracker-api/internal/service"
	"github.com/noah-isme/literacy-tracker-api/pkg/cache"
	"github.com/noah-isme/literacy-tracker-api/pkg/config"
	"github.com/noah-isme/literacy-tracker-api/pkg/database"
	"github.com/noah-isme/literacy-tracker-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard degrades to uncached computation without Redis.
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	metrics := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheService = service.NewCacheService(
			repository.NewCacheRepository(redisClient, log),
			metrics, cfg.Dashboard.CacheTTL, log, true)
	}

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	userRepo := repository.NewUserRepository(db)

	supportService := service.NewSupportService(service.SupportServiceParams{
		Enrollments:   enrollmentRepo,
		Assessments:   assessmentRepo,
		Thresholds:    benchmarkRepo,
		Interventions: interventionRepo,
		Scoring:       cfg.Scoring,
		Logger:        log,
	})
	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Evaluator: supportService,
		Snapshots: snapshotRepo,
		Cache:     cacheService,
		Config:    cfg.Dashboard,
		Scoring:   cfg.Scoring,
		Logger:    log,
	})
	assessmentService := service.NewAssessmentService(service.AssessmentServiceParams{
		Assessments: assessmentRepo,
		Enrollments: enrollmentRepo,
		Normalizer:  scoring.NewNormalizer(),
		Cache:       cacheService,
		Logger:      log,
	})
	snapshotService := service.NewSnapshotService(service.SnapshotServiceParams{
		Evaluator: supportService,
		Snapshots: snapshotRepo,
		Metrics:   metrics,
		Config:    cfg.Snapshot,
		Logger:    log,
	})
	authService := service.NewAuthService(service.AuthServiceParams{
		Users:  userRepo,
		JWT:    cfg.JWT,
		Logger: log,
	})
	exportService := service.NewExportService(service.ExportServiceParams{
		Priorities: supportService,
		Config:     cfg.Exports,
		Logger:     log,
	})
	identityService := service.NewIdentityService(enrollmentRepo, log)

	router := handler.NewRouter(handler.RouterParams{
		Config:    cfg,
		Logger:    log,
		Auth:      authService,
		Metrics:   metrics,
		Health:    handler.NewHealthHandler(db, redisClient),
		AuthH:     handler.NewAuthHandler(authService),
		Students:  handler.NewStudentHandler(supportService, assessmentService, identityService),
		Dashboard: handler.NewDashboardHandler(dashboardService, exportService),
		Admin:     handler.NewAdminHandler(snapshotService),
	})

	stopScheduler := make(chan struct{})
	if cfg.Snapshot.Enabled {
		snapshotService.Start()
		defer snapshotService.Stop()
		go runSnapshotScheduler(snapshotService, cfg.Snapshot.Interval, log, stopScheduler)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stopScheduler)

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// runSnapshotScheduler periodically snapshots both subjects for the current
// academic term. Runs are keyed upserts, so the repetition just refreshes
// the same rows until the period advances.
func runSnapshotScheduler(snapshots *service.SnapshotService, interval time.Duration, log *zap.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			schoolYear, period := service.CurrentAcademicTerm(time.Now())
			for _, subject := range []models.Subject{models.SubjectReading, models.SubjectMath} {
				if err := snapshots.Schedule(service.SnapshotRun{
					Subject:    subject,
					SchoolYear: schoolYear,
					Period:     period,
				}); err != nil {
					log.Warn("snapshot schedule failed",
						zap.String("subject", string(subject)), zap.Error(err))
				}
			}
		}
	}
}
