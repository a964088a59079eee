package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sistemafic/sistemafic-api/internal/models"
)

// GeographyRepository serves the read-only estados/municipios lookups.
type GeographyRepository struct {
	db *sqlx.DB
}

// NewGeographyRepository constructs the repository.
func NewGeographyRepository(db *sqlx.DB) *GeographyRepository {
	return &GeographyRepository{db: db}
}

// ListEstados returns all states ordered by name.
func (r *GeographyRepository) ListEstados(ctx context.Context) ([]models.Estado, error) {
	const query = `SELECT id, id_ibge, nome, uf, regiao, pais FROM estados ORDER BY nome`
	var estados []models.Estado
	if err := r.db.SelectContext(ctx, &estados, query); err != nil {
		return nil, fmt.Errorf("list estados: %w", err)
	}
	return estados, nil
}

// FindEstadoByID returns a single state.
func (r *GeographyRepository) FindEstadoByID(ctx context.Context, id int64) (*models.Estado, error) {
	const query = `SELECT id, id_ibge, nome, uf, regiao, pais FROM estados WHERE id = $1`
	var estado models.Estado
	if err := r.db.GetContext(ctx, &estado, query, id); err != nil {
		return nil, err
	}
	return &estado, nil
}

// ListMunicipios returns municipalities, optionally filtered by state.
func (r *GeographyRepository) ListMunicipios(ctx context.Context, estadoID int64) ([]models.Municipio, error) {
	query := `SELECT id, nome, estado_id, codigo_ibge, capital FROM municipios`
	var args []interface{}
	if estadoID > 0 {
		query += ` WHERE estado_id = $1`
		args = append(args, estadoID)
	}
	query += ` ORDER BY nome`
	var municipios []models.Municipio
	if err := r.db.SelectContext(ctx, &municipios, query, args...); err != nil {
		return nil, fmt.Errorf("list municipios: %w", err)
	}
	return municipios, nil
}
