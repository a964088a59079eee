package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/sistemafic/sistemafic-api/api/swagger"
	"github.com/sistemafic/sistemafic-api/internal/handler"
	"github.com/sistemafic/sistemafic-api/internal/repository"
	"github.com/sistemafic/sistemafic-api/internal/router"
	"github.com/sistemafic/sistemafic-api/internal/scheduler"
	"github.com/sistemafic/sistemafic-api/internal/service"
	"github.com/sistemafic/sistemafic-api/pkg/cache"
	"github.com/sistemafic/sistemafic-api/pkg/config"
	"github.com/sistemafic/sistemafic-api/pkg/database"
	"github.com/sistemafic/sistemafic-api/pkg/jobs"
	"github.com/sistemafic/sistemafic-api/pkg/logger"
	"github.com/sistemafic/sistemafic-api/pkg/mailer"
	"github.com/sistemafic/sistemafic-api/pkg/resettoken"
	"github.com/sistemafic/sistemafic-api/pkg/storage"
)

// @title SistemaFIC API
// @version 1.0.0
// @description Plataforma de cursos FIC: contas, cursos e inscrições
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
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	geographyRepo := repository.NewGeographyRepository(db)

	mailQueue := buildMailQueue(cfg, logr)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if mailQueue != nil {
		mailQueue.Start(ctx)
		defer mailQueue.Stop()
	}

	resetSigner := resettoken.NewSigner(cfg.JWT.Secret, cfg.Reset.TokenTTL)

	var mailEnqueuer service.MailEnqueuer
	if mailQueue != nil {
		mailEnqueuer = mailQueue
	}
	authService := service.NewAuthService(userRepo, resetSigner, mailEnqueuer, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		ResetLinkBase:      cfg.Reset.LinkBase,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, geographyRepo, validate, logr)
	professorService := service.NewProfessorService(professorRepo, userRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, professorRepo, redisClient, cfg.Courses.CacheTTL, metrics, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, store, validate, logr)
	geographyService := service.NewGeographyService(geographyRepo)
	exportService := service.NewExportService(enrollmentRepo, courseRepo, professorRepo, logr)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Students:    handler.NewStudentHandler(studentService),
		Professors:  handler.NewProfessorHandler(professorService),
		Courses:     handler.NewCourseHandler(courseService, exportService),
		Enrollments: handler.NewEnrollmentHandler(enrollmentService),
		Geography:   handler.NewGeographyHandler(geographyService),
		Metrics:     handler.NewMetricsHandler(metrics),
	}

	engine := router.New(cfg, logr, authService, metrics, handlers)

	var statusScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		statusScheduler = scheduler.New(courseService, metrics, cfg.Scheduler.CronSpec, logr)
		if err := statusScheduler.Start(); err != nil {
			logr.Sugar().Fatalw("failed to start status scheduler", "error", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	if statusScheduler != nil {
		statusScheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func buildMailQueue(cfg *config.Config, logr *zap.Logger) *jobs.Queue {
	sender, err := mailer.New(cfg.SMTP)
	if err != nil {
		logr.Sugar().Warnw("smtp unavailable, outbound mail disabled", "error", err)
		return nil
	}

	return jobs.NewQueue("mail", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mailer.Message)
		if !ok {
			logr.Sugar().Errorw("mail job carries unexpected payload", "job_id", job.ID)
			return nil
		}
		return sender.Send(msg)
	}, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
		RetryDelay: cfg.Mail.RetryDelay,
		Logger:     logr,
	})
}
