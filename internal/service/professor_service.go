package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type professorRepository interface {
	List(ctx context.Context) ([]models.ProfessorDetail, error)
	FindByID(ctx context.Context, id string) (*models.ProfessorDetail, error)
	Create(ctx context.Context, profile *models.ProfessorProfile) error
	Update(ctx context.Context, profile *models.ProfessorProfile) error
	Delete(ctx context.Context, id string) error
}

type professorUserWriter interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CreateProfessorRequest registers a professor account plus profile.
// Coordinator-only: professors never self-register.
type CreateProfessorRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	FullName  string     `json:"nome_completo" validate:"required"`
	Password  string     `json:"password" validate:"required,min=6"`
	SIAPE     string     `json:"siape" validate:"required"`
	CPF       string     `json:"cpf" validate:"required,len=11,numeric"`
	BirthDate *time.Time `json:"data_nascimento"`
}

// UpdateProfessorRequest rewrites profile fields.
type UpdateProfessorRequest struct {
	SIAPE     string     `json:"siape" validate:"required"`
	CPF       string     `json:"cpf" validate:"required,len=11,numeric"`
	BirthDate *time.Time `json:"data_nascimento"`
}

// ProfessorService manages professor accounts, restricted to coordinators.
type ProfessorService struct {
	repo      professorRepository
	users     professorUserWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService constructs a ProfessorService.
func NewProfessorService(repo professorRepository, users professorUserWriter, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfessorService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns every professor with account info.
func (s *ProfessorService) List(ctx context.Context, principal models.Principal) ([]models.ProfessorDetail, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may manage professors")
	}
	professors, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list professors")
	}
	return professors, nil
}

// Get returns a professor by profile ID.
func (s *ProfessorService) Get(ctx context.Context, principal models.Principal, id string) (*models.ProfessorDetail, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may manage professors")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	return detail, nil
}

// Create registers the user account and professor profile together.
func (s *ProfessorService) Create(ctx context.Context, principal models.Principal, req CreateProfessorRequest) (*models.ProfessorDetail, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may register professors")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(passwordHash),
		FullName:     req.FullName,
		Role:         models.RoleProfessor,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor account")
	}

	profile := &models.ProfessorProfile{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		SIAPE:     req.SIAPE,
		CPF:       req.CPF,
		BirthDate: req.BirthDate,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back professor account", zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create professor profile")
	}

	s.logger.Info("professor registered", zap.String("professor_id", profile.ID))
	return s.repo.FindByID(ctx, profile.ID)
}

// Update rewrites the professor profile.
func (s *ProfessorService) Update(ctx context.Context, principal models.Principal, id string, req UpdateProfessorRequest) (*models.ProfessorDetail, error) {
	if !principal.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators may manage professors")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid professor payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}

	profile := existing.ProfessorProfile
	profile.SIAPE = req.SIAPE
	profile.CPF = req.CPF
	profile.BirthDate = req.BirthDate
	if err := s.repo.Update(ctx, &profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update professor")
	}
	return s.repo.FindByID(ctx, id)
}

// Delete removes the professor profile and the backing account.
func (s *ProfessorService) Delete(ctx context.Context, principal models.Principal, id string) error {
	if !principal.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only coordinators may manage professors")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "professor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if err := s.users.Delete(ctx, existing.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete professor account")
	}
	return nil
}
