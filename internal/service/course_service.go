package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error
	AdvanceStatuses(ctx context.Context, now time.Time) (models.StatusTransitionCounts, error)
}

type professorProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.ProfessorProfile, error)
}

const openCoursesCacheKey = "cursos:abertos"

// CreateCourseRequest describes course creation payload. Status is not
// accepted from the client: courses always start AGENDADO.
type CreateCourseRequest struct {
	Nome                 string    `json:"nome" validate:"required"`
	Descricao            string    `json:"descricao"`
	CargaHoraria         int       `json:"carga_horaria" validate:"required,gt=0"`
	VagasInternas        int       `json:"vagas_internas" validate:"gte=0"`
	VagasExternas        int       `json:"vagas_externas" validate:"gte=0"`
	DataInicioInscricoes time.Time `json:"data_inicio_inscricoes" validate:"required"`
	DataFimInscricoes    time.Time `json:"data_fim_inscricoes" validate:"required"`
	DataInicioCurso      time.Time `json:"data_inicio_curso" validate:"required"`
	DataFimCurso         time.Time `json:"data_fim_curso" validate:"required"`
}

// UpdateCourseRequest rewrites the mutable course fields.
type UpdateCourseRequest struct {
	Nome                 string    `json:"nome" validate:"required"`
	Descricao            string    `json:"descricao"`
	CargaHoraria         int       `json:"carga_horaria" validate:"required,gt=0"`
	VagasInternas        int       `json:"vagas_internas" validate:"gte=0"`
	VagasExternas        int       `json:"vagas_externas" validate:"gte=0"`
	DataInicioInscricoes time.Time `json:"data_inicio_inscricoes" validate:"required"`
	DataFimInscricoes    time.Time `json:"data_fim_inscricoes" validate:"required"`
	DataInicioCurso      time.Time `json:"data_inicio_curso" validate:"required"`
	DataFimCurso         time.Time `json:"data_fim_curso" validate:"required"`
}

// CourseService orchestrates course lifecycle workflows.
type CourseService struct {
	repo       courseRepository
	professors professorProfileReader
	cache      *redis.Client
	cacheTTL   time.Duration
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCourseService constructs CourseService. The cache client is optional.
func NewCourseService(repo courseRepository, professors professorProfileReader, cache *redis.Client, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}
	return &CourseService{repo: repo, professors: professors, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Create registers a new course owned by the calling professor.
func (s *CourseService) Create(ctx context.Context, principal models.Principal, req CreateCourseRequest) (*models.CourseDetail, error) {
	if !principal.IsProfessor() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only professors may create courses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.DataFimInscricoes.Before(req.DataInicioInscricoes) || req.DataFimCurso.Before(req.DataInicioCurso) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduling windows are inverted")
	}

	profile, err := s.professors.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "professor profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor profile")
	}

	course := &models.Course{
		Nome:                 req.Nome,
		Descricao:            req.Descricao,
		CargaHoraria:         req.CargaHoraria,
		VagasInternas:        req.VagasInternas,
		VagasExternas:        req.VagasExternas,
		DataInicioInscricoes: req.DataInicioInscricoes,
		DataFimInscricoes:    req.DataFimInscricoes,
		DataInicioCurso:      req.DataInicioCurso,
		DataFimCurso:         req.DataFimCurso,
		Status:               models.CourseStatusAgendado,
		CriadorID:            profile.ID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.invalidateOpenCoursesCache(ctx)

	detail, err := s.repo.FindDetailByID(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course detail")
	}
	return detail, nil
}

// List returns courses visible to the principal: professors see their own,
// coordinators see everything, everyone else sees only open enrollments.
func (s *CourseService) List(ctx context.Context, principal models.Principal, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	switch {
	case principal.IsAdmin():
		// no extra filtering
	case principal.IsProfessor():
		profile, err := s.professors.FindByUserID(ctx, principal.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				return []models.CourseDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor profile")
		}
		filter.CriadorID = profile.ID
	default:
		filter.Status = models.CourseStatusInscricoesAbertas
		if cached, pagination, ok := s.openCoursesFromCache(ctx, filter); ok {
			return cached, pagination, nil
		}
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if !principal.IsAdmin() && !principal.IsProfessor() {
		s.storeOpenCoursesCache(ctx, filter, courses, pagination)
	}
	return courses, pagination, nil
}

// Get returns one course with creator info.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return detail, nil
}

// Update rewrites course fields; only the owning professor or a coordinator
// may update, and finished or cancelled courses are immutable.
func (s *CourseService) Update(ctx context.Context, principal models.Principal, id string, req UpdateCourseRequest) (*models.CourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Status == models.CourseStatusFinalizado || course.Status == models.CourseStatusCancelado {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "course can no longer be updated")
	}
	if err := s.authorizeOwnership(ctx, principal, course); err != nil {
		return nil, err
	}

	course.Nome = req.Nome
	course.Descricao = req.Descricao
	course.CargaHoraria = req.CargaHoraria
	course.VagasInternas = req.VagasInternas
	course.VagasExternas = req.VagasExternas
	course.DataInicioInscricoes = req.DataInicioInscricoes
	course.DataFimInscricoes = req.DataFimInscricoes
	course.DataInicioCurso = req.DataInicioCurso
	course.DataFimCurso = req.DataFimCurso

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidateOpenCoursesCache(ctx)

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course detail")
	}
	return detail, nil
}

// Cancel marks a course CANCELADO. Terminal, coordinator-only.
func (s *CourseService) Cancel(ctx context.Context, principal models.Principal, id string) (*models.CourseDetail, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may cancel courses")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Status == models.CourseStatusCancelado || course.Status == models.CourseStatusFinalizado {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "course is already closed")
	}

	if err := s.repo.UpdateStatus(ctx, id, models.CourseStatusCancelado); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel course")
	}
	s.invalidateOpenCoursesCache(ctx)
	s.logger.Info("course cancelled", zap.String("curso_id", id))

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course detail")
	}
	return detail, nil
}

// AdvanceStatuses runs the three time-driven transition passes and reports
// counts per transition. Safe to run repeatedly for the same instant.
func (s *CourseService) AdvanceStatuses(ctx context.Context, now time.Time) (models.StatusTransitionCounts, error) {
	counts, err := s.repo.AdvanceStatuses(ctx, now.UTC())
	if err != nil {
		return counts, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance course statuses")
	}
	if counts.Total() > 0 {
		s.invalidateOpenCoursesCache(ctx)
	}
	s.logger.Info("course statuses advanced",
		zap.Int64("abertas", counts.Opened),
		zap.Int64("iniciadas", counts.Started),
		zap.Int64("finalizadas", counts.Finished))
	return counts, nil
}

func (s *CourseService) authorizeOwnership(ctx context.Context, principal models.Principal, course *models.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.IsProfessor() {
		return appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}
	profile, err := s.professors.FindByUserID(ctx, principal.UserID)
	if err != nil || profile.ID != course.CriadorID {
		return appErrors.Clone(appErrors.ErrForbidden, "course belongs to another professor")
	}
	return nil
}

type cachedCourseList struct {
	Courses    []models.CourseDetail `json:"courses"`
	Pagination models.Pagination     `json:"pagination"`
}

func (s *CourseService) openCoursesFromCache(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, bool) {
	if s.cache == nil || filter.Search != "" || filter.Page > 1 {
		return nil, nil, false
	}
	start := time.Now()
	raw, err := s.cache.Get(ctx, openCoursesCacheKey).Bytes()
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, time.Since(start))
	}
	if !hit {
		return nil, nil, false
	}
	var cached cachedCourseList
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, nil, false
	}
	pagination := cached.Pagination
	return cached.Courses, &pagination, true
}

func (s *CourseService) storeOpenCoursesCache(ctx context.Context, filter models.CourseFilter, courses []models.CourseDetail, pagination *models.Pagination) {
	if s.cache == nil || filter.Search != "" || filter.Page > 1 {
		return
	}
	raw, err := json.Marshal(cachedCourseList{Courses: courses, Pagination: *pagination})
	if err != nil {
		return
	}
	start := time.Now()
	if err := s.cache.Set(ctx, openCoursesCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache open courses", zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
}

func (s *CourseService) invalidateOpenCoursesCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, openCoursesCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate course cache", zap.Error(err))
	}
}
