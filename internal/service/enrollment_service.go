package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type enrollmentRepository interface {
	CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment, documents []models.Document) error
	Validate(ctx context.Context, id string, approve bool) (*models.Enrollment, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	ListDocuments(ctx context.Context, enrollmentID string) ([]models.Document, error)
}

type studentProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type documentStore interface {
	SaveStream(relPath string, r io.Reader) (string, error)
	DeleteDir(relDir string) error
}

// RequestEnrollmentInput describes an enrollment request payload.
type RequestEnrollmentInput struct {
	CursoID   string `form:"curso_id" validate:"required"`
	TipoVaga  string `form:"tipo_vaga" validate:"required,oneof=INTERNO EXTERNO"`
	Matricula string `form:"matricula"`
}

// ValidateEnrollmentInput carries the admin decision.
type ValidateEnrollmentInput struct {
	Aprovar *bool `json:"aprovar" validate:"required"`
}

// EnrollmentService orchestrates admission and validation workflows.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentProfileReader
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentProfileReader, store documentStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, store: store, validator: validate, logger: logger}
}

// Request admits a new enrollment for the calling student. Validation happens
// before any persistence; the capacity and duplicate checks run inside the
// repository's course lock.
func (s *EnrollmentService) Request(ctx context.Context, principal models.Principal, input RequestEnrollmentInput, files []*multipart.FileHeader) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	seatType := models.SeatType(input.TipoVaga)
	if seatType == models.SeatTypeInterno && input.Matricula == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "matricula is required for internal seats")
	}

	profile, err := s.students.FindByUserID(ctx, principal.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student profile must be completed before enrolling")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	enrollment := &models.Enrollment{
		AlunoID:  profile.ID,
		CursoID:  input.CursoID,
		TipoVaga: seatType,
	}
	if input.Matricula != "" {
		enrollment.Matricula = &input.Matricula
	}

	documents, docDir, err := s.storeFiles(enrollment, files)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithinCapacity(ctx, enrollment, documents); err != nil {
		if docDir != "" {
			if cleanupErr := s.store.DeleteDir(docDir); cleanupErr != nil {
				s.logger.Warn("failed to clean up documents after rejected admission", zap.Error(cleanupErr))
			}
		}
		if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.logger.Info("enrollment requested",
		zap.String("inscricao_id", enrollment.ID),
		zap.String("curso_id", enrollment.CursoID),
		zap.String("tipo_vaga", string(enrollment.TipoVaga)))

	detail, err := s.repo.FindDetailByID(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// Validate applies the admin decision to an enrollment awaiting validation.
func (s *EnrollmentService) Validate(ctx context.Context, principal models.Principal, id string, input ValidateEnrollmentInput) (*models.Enrollment, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may validate enrollments")
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}

	enrollment, err := s.repo.Validate(ctx, id, *input.Aprovar)
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code != appErrors.ErrInternal.Code {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}

	s.logger.Info("enrollment validated",
		zap.String("inscricao_id", enrollment.ID),
		zap.Bool("aprovada", *input.Aprovar))
	return enrollment, nil
}

// List returns enrollments visible to the principal. Students see their own;
// professors and coordinators may filter freely.
func (s *EnrollmentService) List(ctx context.Context, principal models.Principal, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	if principal.IsAluno() {
		profile, err := s.students.FindByUserID(ctx, principal.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				return []models.EnrollmentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		filter.AlunoID = profile.ID
	}

	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one enrollment, enforcing ownership for students.
func (s *EnrollmentService) Get(ctx context.Context, principal models.Principal, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if principal.IsAluno() {
		profile, err := s.students.FindByUserID(ctx, principal.UserID)
		if err != nil || profile.ID != detail.AlunoID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another student")
		}
	}
	return detail, nil
}

// Documents lists the files attached to an enrollment.
func (s *EnrollmentService) Documents(ctx context.Context, principal models.Principal, id string) ([]models.Document, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	documents, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return documents, nil
}

func (s *EnrollmentService) storeFiles(enrollment *models.Enrollment, files []*multipart.FileHeader) ([]models.Document, string, error) {
	if len(files) == 0 {
		return nil, "", nil
	}
	// Reserve the ID up front so files land under the enrollment's directory.
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	docDir := filepath.Join("inscricoes", enrollment.ID)

	documents := make([]models.Document, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, docDir, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read uploaded file")
		}
		relPath := filepath.Join(docDir, fmt.Sprintf("%d_%s", len(documents), filepath.Base(header.Filename)))
		_, err = s.store.SaveStream(relPath, file)
		file.Close() //nolint:errcheck
		if err != nil {
			return nil, docDir, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded file")
		}
		documents = append(documents, models.Document{
			StoragePath:  relPath,
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			SizeBytes:    header.Size,
		})
	}
	return documents, docDir, nil
}
