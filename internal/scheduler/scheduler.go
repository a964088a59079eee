package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/service"
)

// Scheduler periodically advances course statuses through their time-driven
// lifecycle transitions.
type Scheduler struct {
	cron     *cron.Cron
	courses  *service.CourseService
	metrics  *service.MetricsService
	cronSpec string
	logger   *zap.Logger
}

// New builds the scheduler. cronSpec uses the six-field form with seconds.
func New(courses *service.CourseService, metrics *service.MetricsService, cronSpec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		courses:  courses,
		metrics:  metrics,
		cronSpec: cronSpec,
		logger:   logger,
	}
}

// Start registers the advancement job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronSpec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("status scheduler started", zap.String("spec", s.cronSpec))
	return nil
}

// Stop halts the cron loop, waiting briefly for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.logger.Warn("status scheduler stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := s.courses.AdvanceStatuses(ctx, time.Now())
	if err != nil {
		s.logger.Error("status advancement pass failed", zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordStatusTransitions(counts)
	}
}
