package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type geographyRepository interface {
	ListEstados(ctx context.Context) ([]models.Estado, error)
	FindEstadoByID(ctx context.Context, id int64) (*models.Estado, error)
	ListMunicipios(ctx context.Context, estadoID int64) ([]models.Municipio, error)
}

// GeographyService serves the read-only IBGE reference data.
type GeographyService struct {
	repo geographyRepository
}

// NewGeographyService constructs a GeographyService.
func NewGeographyService(repo geographyRepository) *GeographyService {
	return &GeographyService{repo: repo}
}

// ListEstados returns every state ordered by name.
func (s *GeographyService) ListEstados(ctx context.Context) ([]models.Estado, error) {
	estados, err := s.repo.ListEstados(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list states")
	}
	return estados, nil
}

// ListMunicipios returns cities, optionally restricted to one state.
func (s *GeographyService) ListMunicipios(ctx context.Context, estadoID int64) ([]models.Municipio, error) {
	if estadoID > 0 {
		if _, err := s.repo.FindEstadoByID(ctx, estadoID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "state not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check state")
		}
	}
	municipios, err := s.repo.ListMunicipios(ctx, estadoID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cities")
	}
	return municipios, nil
}
