package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sistemafic/sistemafic-api/internal/models"
)

// ProfessorRepository handles persistence of professor profiles.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs the repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// List returns all professors joined with account data.
func (r *ProfessorRepository) List(ctx context.Context) ([]models.ProfessorDetail, error) {
	const query = `SELECT p.id, p.user_id, p.siape, p.cpf, p.data_nascimento, p.created_at, p.updated_at,
        u.email, u.nome_completo
        FROM professores p JOIN usuarios u ON u.id = p.user_id ORDER BY u.nome_completo`
	var professors []models.ProfessorDetail
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// FindByID returns a professor profile by its ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.ProfessorDetail, error) {
	const query = `SELECT p.id, p.user_id, p.siape, p.cpf, p.data_nascimento, p.created_at, p.updated_at,
        u.email, u.nome_completo
        FROM professores p JOIN usuarios u ON u.id = p.user_id WHERE p.id = $1`
	var professor models.ProfessorDetail
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByUserID returns the professor profile owned by the given user.
func (r *ProfessorRepository) FindByUserID(ctx context.Context, userID string) (*models.ProfessorProfile, error) {
	const query = `SELECT id, user_id, siape, cpf, data_nascimento, created_at, updated_at
        FROM professores WHERE user_id = $1`
	var profile models.ProfessorProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create persists a new professor profile.
func (r *ProfessorRepository) Create(ctx context.Context, profile *models.ProfessorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO professores (id, user_id, siape, cpf, data_nascimento, created_at, updated_at)
        VALUES (:id, :user_id, :siape, :cpf, :data_nascimento, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create professor profile: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile fields.
func (r *ProfessorRepository) Update(ctx context.Context, profile *models.ProfessorProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE professores SET siape = :siape, cpf = :cpf, data_nascimento = :data_nascimento,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update professor profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update professor result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a professor profile.
func (r *ProfessorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM professores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete professor profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete professor result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
