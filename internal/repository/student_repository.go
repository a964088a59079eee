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

// StudentRepository handles persistence of aluno profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `a.id, a.user_id, a.data_nascimento, a.sexo, a.cpf, a.numero_identidade,
        a.orgao_expedidor, a.uf_expedidor_id, a.naturalidade_id, a.cep, a.logradouro,
        a.numero_endereco, a.bairro, a.cidade_id, a.telefone_celular, a.created_at, a.updated_at`

// FindByUserID returns the profile owned by the given user.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM alunos a WHERE a.user_id = $1`, studentColumns)
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindDetailByUserID returns the profile joined with account data.
func (r *StudentRepository) FindDetailByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error) {
	query := fmt.Sprintf(`SELECT %s, u.email, u.nome_completo
        FROM alunos a JOIN usuarios u ON u.id = a.user_id WHERE a.user_id = $1`, studentColumns)
	var detail models.StudentProfileDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Upsert creates the profile on first write and updates it afterwards,
// matching the create-or-update semantics of the profile endpoint.
func (r *StudentRepository) Upsert(ctx context.Context, profile *models.StudentProfile) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	const query = `INSERT INTO alunos (id, user_id, data_nascimento, sexo, cpf, numero_identidade,
        orgao_expedidor, uf_expedidor_id, naturalidade_id, cep, logradouro, numero_endereco,
        bairro, cidade_id, telefone_celular, created_at, updated_at)
        VALUES (:id, :user_id, :data_nascimento, :sexo, :cpf, :numero_identidade,
        :orgao_expedidor, :uf_expedidor_id, :naturalidade_id, :cep, :logradouro, :numero_endereco,
        :bairro, :cidade_id, :telefone_celular, :created_at, :updated_at)
        ON CONFLICT (user_id) DO UPDATE SET
        data_nascimento = EXCLUDED.data_nascimento, sexo = EXCLUDED.sexo, cpf = EXCLUDED.cpf,
        numero_identidade = EXCLUDED.numero_identidade, orgao_expedidor = EXCLUDED.orgao_expedidor,
        uf_expedidor_id = EXCLUDED.uf_expedidor_id, naturalidade_id = EXCLUDED.naturalidade_id,
        cep = EXCLUDED.cep, logradouro = EXCLUDED.logradouro, numero_endereco = EXCLUDED.numero_endereco,
        bairro = EXCLUDED.bairro, cidade_id = EXCLUDED.cidade_id,
        telefone_celular = EXCLUDED.telefone_celular, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert student profile: %w", err)
	}
	return nil
}

// DeleteByUserID removes the profile for the given user.
func (r *StudentRepository) DeleteByUserID(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alunos WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete student profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student profile result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
