package main

import (
	"context"
	"log"
	"time"

	"github.com/sistemafic/sistemafic-api/internal/repository"
	"github.com/sistemafic/sistemafic-api/internal/service"
	"github.com/sistemafic/sistemafic-api/pkg/config"
	"github.com/sistemafic/sistemafic-api/pkg/database"
	"github.com/sistemafic/sistemafic-api/pkg/logger"
)

// One-shot runner for the course status transitions. Meant for crontab or
// manual execution alongside (or instead of) the in-process scheduler.
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

	courseRepo := repository.NewCourseRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	courseService := service.NewCourseService(courseRepo, professorRepo, nil, 0, nil, nil, logr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	counts, err := courseService.AdvanceStatuses(ctx, time.Now())
	if err != nil {
		logr.Sugar().Fatalw("status advancement failed", "error", err)
	}
	logr.Sugar().Infow("status advancement finished",
		"abertas", counts.Opened,
		"iniciadas", counts.Started,
		"finalizadas", counts.Finished,
		"total", counts.Total())
}
