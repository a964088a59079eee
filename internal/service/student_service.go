package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type studentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	FindDetailByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error)
	Upsert(ctx context.Context, profile *models.StudentProfile) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type geographyReader interface {
	FindEstadoByID(ctx context.Context, id int64) (*models.Estado, error)
}

// UpsertStudentProfileRequest completes or updates the aluno profile.
type UpsertStudentProfileRequest struct {
	BirthDate      *time.Time `json:"data_nascimento"`
	Sex            string     `json:"sexo" validate:"required,oneof=F M O N"`
	CPF            *string    `json:"cpf" validate:"omitempty,len=11,numeric"`
	IdentityNumber string     `json:"numero_identidade" validate:"required"`
	IssuingBody    string     `json:"orgao_expedidor" validate:"required,oneof=SSP SSPDS PC DETRAN IGP OUTRO"`
	IssuingStateID *int64     `json:"uf_expedidor_id"`
	BirthplaceID   *int64     `json:"naturalidade_id"`
	CEP            string     `json:"cep" validate:"required,len=8,numeric"`
	Street         string     `json:"logradouro" validate:"required"`
	AddressNumber  string     `json:"numero_endereco" validate:"required"`
	District       string     `json:"bairro" validate:"required"`
	CityID         *int64     `json:"cidade_id"`
	MobilePhone    string     `json:"telefone_celular" validate:"required,min=10,max=11,numeric"`
}

// StudentService manages the aluno profile linked to an account.
type StudentService struct {
	repo      studentRepository
	geography geographyReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, geography geographyReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, geography: geography, validator: validate, logger: logger}
}

// GetProfile returns the caller's profile with account info.
func (s *StudentService) GetProfile(ctx context.Context, principal models.Principal) (*models.StudentProfileDetail, error) {
	if !principal.IsAluno() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students have an aluno profile")
	}
	detail, err := s.repo.FindDetailByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not completed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return detail, nil
}

// UpsertProfile creates or rewrites the caller's profile. Enrollment requires
// a completed profile, so this is the student's first step after sign-up.
func (s *StudentService) UpsertProfile(ctx context.Context, principal models.Principal, req UpsertStudentProfileRequest) (*models.StudentProfileDetail, error) {
	if !principal.IsAluno() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students have an aluno profile")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	if req.IssuingStateID != nil {
		if _, err := s.geography.FindEstadoByID(ctx, *req.IssuingStateID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown issuing state")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check issuing state")
		}
	}

	profile := &models.StudentProfile{
		ID:             uuid.NewString(),
		UserID:         principal.UserID,
		BirthDate:      req.BirthDate,
		Sex:            req.Sex,
		CPF:            req.CPF,
		IdentityNumber: req.IdentityNumber,
		IssuingBody:    req.IssuingBody,
		IssuingStateID: req.IssuingStateID,
		BirthplaceID:   req.BirthplaceID,
		CEP:            req.CEP,
		Street:         req.Street,
		AddressNumber:  req.AddressNumber,
		District:       req.District,
		CityID:         req.CityID,
		MobilePhone:    req.MobilePhone,
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student profile")
	}

	detail, err := s.repo.FindDetailByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	return detail, nil
}

// DeleteProfile removes the caller's profile. The account itself stays.
func (s *StudentService) DeleteProfile(ctx context.Context, principal models.Principal) error {
	if !principal.IsAluno() {
		return appErrors.Clone(appErrors.ErrForbidden, "only students have an aluno profile")
	}
	if _, err := s.repo.FindByUserID(ctx, principal.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student profile not completed")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	if err := s.repo.DeleteByUserID(ctx, principal.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student profile")
	}
	s.logger.Info("student profile deleted", zap.String("user_id", principal.UserID))
	return nil
}
