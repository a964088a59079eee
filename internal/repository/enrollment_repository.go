package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

// EnrollmentRepository handles persistence of inscricoes and their documents.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// lockCourse acquires the exclusive course row lock that serializes every
// capacity-sensitive operation on a course. Held until the transaction ends.
func lockCourse(ctx context.Context, tx *sqlx.Tx, courseID string) (*models.Course, error) {
	const query = `SELECT id, nome, descricao, carga_horaria, vagas_internas, vagas_externas,
        data_inicio_inscricoes, data_fim_inscricoes, data_inicio_curso, data_fim_curso,
        status, criador_id, created_at, updated_at FROM cursos WHERE id = $1 FOR UPDATE`
	var course models.Course
	if err := tx.GetContext(ctx, &course, query, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

func confirmedCount(ctx context.Context, tx *sqlx.Tx, courseID string, seatType models.SeatType) (int, error) {
	const query = `SELECT COUNT(*) FROM inscricoes_aluno WHERE curso_id = $1 AND tipo_vaga = $2 AND status = $3`
	var count int
	if err := tx.GetContext(ctx, &count, query, courseID, seatType, models.EnrollmentStatusConfirmada); err != nil {
		return 0, fmt.Errorf("count confirmed enrollments: %w", err)
	}
	return count, nil
}

// CreateWithinCapacity admits a new enrollment atomically. The course row is
// locked first so concurrent admissions for the same course serialize; the
// duplicate and capacity checks run under that lock, and the enrollment plus
// its document rows commit together.
func (r *EnrollmentRepository) CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment, documents []models.Document) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admission: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	course, err := lockCourse(ctx, tx, enrollment.CursoID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return fmt.Errorf("lock course: %w", err)
	}
	if course.Status != models.CourseStatusInscricoesAbertas {
		return appErrors.Clone(appErrors.ErrInvalidState, "course is not accepting enrollments")
	}

	var existing int
	const dupQuery = `SELECT 1 FROM inscricoes_aluno WHERE aluno_id = $1 AND curso_id = $2 LIMIT 1`
	if err = tx.GetContext(ctx, &existing, dupQuery, enrollment.AlunoID, enrollment.CursoID); err == nil {
		return appErrors.Clone(appErrors.ErrValidation, "enrollment already requested for this course")
	} else if err != sql.ErrNoRows {
		return fmt.Errorf("check duplicate enrollment: %w", err)
	}
	err = nil

	limit := course.VagasExternas
	if enrollment.TipoVaga == models.SeatTypeInterno {
		limit = course.VagasInternas
	}
	confirmed, err := confirmedCount(ctx, tx, enrollment.CursoID, enrollment.TipoVaga)
	if err != nil {
		return err
	}
	if confirmed >= limit {
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "no seats left for this quota")
	}

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	enrollment.Status = models.EnrollmentStatusAguardando

	const insertQuery = `INSERT INTO inscricoes_aluno (id, aluno_id, curso_id, status, tipo_vaga, matricula, created_at)
        VALUES (:id, :aluno_id, :curso_id, :status, :tipo_vaga, :matricula, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, enrollment); err != nil {
		// Unique (aluno, curso) constraint is the backstop for a racing
		// duplicate that slipped past the check above.
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrValidation, "enrollment already requested for this course")
		}
		return fmt.Errorf("create enrollment: %w", err)
	}

	const docQuery = `INSERT INTO documentos (id, inscricao_id, storage_path, nome_original, content_type, size_bytes, uploaded_at)
        VALUES (:id, :inscricao_id, :storage_path, :nome_original, :content_type, :size_bytes, :uploaded_at)`
	for i := range documents {
		doc := &documents[i]
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		doc.InscricaoID = enrollment.ID
		if doc.UploadedAt.IsZero() {
			doc.UploadedAt = time.Now().UTC()
		}
		if _, err = tx.NamedExecContext(ctx, docQuery, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit admission: %w", err)
	}
	return nil
}

// Validate finalizes an enrollment awaiting validation. Approval re-checks
// remaining capacity under the same course lock admission uses, so two
// concurrent approvals can never confirm past the quota.
func (r *EnrollmentRepository) Validate(ctx context.Context, id string, approve bool) (enrollment *models.Enrollment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin validation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Enrollment
	const findQuery = `SELECT id, aluno_id, curso_id, status, tipo_vaga, matricula, created_at
        FROM inscricoes_aluno WHERE id = $1`
	if err = tx.GetContext(ctx, &current, findQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	if current.Status != models.EnrollmentStatusAguardando {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is no longer awaiting validation")
	}

	target := models.EnrollmentStatusCancelada
	if approve {
		course, lockErr := lockCourse(ctx, tx, current.CursoID)
		if lockErr != nil {
			err = fmt.Errorf("lock course: %w", lockErr)
			return nil, err
		}
		limit := course.VagasExternas
		if current.TipoVaga == models.SeatTypeInterno {
			limit = course.VagasInternas
		}
		confirmed, countErr := confirmedCount(ctx, tx, current.CursoID, current.TipoVaga)
		if countErr != nil {
			err = countErr
			return nil, err
		}
		if confirmed >= limit {
			err = appErrors.Clone(appErrors.ErrCapacityExceeded, "quota already fully confirmed")
			return nil, err
		}
		target = models.EnrollmentStatusConfirmada
	}

	const updateQuery = `UPDATE inscricoes_aluno SET status = $2 WHERE id = $1 AND status = $3`
	result, err := tx.ExecContext(ctx, updateQuery, id, target, models.EnrollmentStatusAguardando)
	if err != nil {
		return nil, fmt.Errorf("update enrollment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("validation result: %w", err)
	}
	if affected == 0 {
		err = appErrors.Clone(appErrors.ErrInvalidState, "enrollment is no longer awaiting validation")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit validation: %w", err)
	}
	current.Status = target
	return &current, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, aluno_id, curso_id, status, tipo_vaga, matricula, created_at
        FROM inscricoes_aluno WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with contextual info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	const query = `SELECT i.id, i.aluno_id, i.curso_id, i.status, i.tipo_vaga, i.matricula, i.created_at,
        u.nome_completo AS aluno_nome, u.email AS aluno_email, c.nome AS curso_nome
        FROM inscricoes_aluno i
        LEFT JOIN alunos a ON a.id = i.aluno_id
        LEFT JOIN usuarios u ON u.id = a.user_id
        LEFT JOIN cursos c ON c.id = i.curso_id
        WHERE i.id = $1`
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM inscricoes_aluno i
LEFT JOIN alunos a ON a.id = i.aluno_id
LEFT JOIN usuarios u ON u.id = a.user_id
LEFT JOIN cursos c ON c.id = i.curso_id`
	var conditions []string
	var args []interface{}

	if filter.AlunoID != "" {
		conditions = append(conditions, fmt.Sprintf("i.aluno_id = $%d", len(args)+1))
		args = append(args, filter.AlunoID)
	}
	if filter.CursoID != "" {
		conditions = append(conditions, fmt.Sprintf("i.curso_id = $%d", len(args)+1))
		args = append(args, filter.CursoID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.TipoVaga != "" {
		conditions = append(conditions, fmt.Sprintf("i.tipo_vaga = $%d", len(args)+1))
		args = append(args, filter.TipoVaga)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "i.created_at",
		"aluno_nome": "u.nome_completo",
		"curso_nome": "c.nome",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "i.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT i.id, i.aluno_id, i.curso_id, i.status, i.tipo_vaga, i.matricula, i.created_at,
        COALESCE(u.nome_completo, '') AS aluno_nome, COALESCE(u.email, '') AS aluno_email, COALESCE(c.nome, '') AS curso_nome
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListByCourse returns all enrollments for a course, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT i.id, i.aluno_id, i.curso_id, i.status, i.tipo_vaga, i.matricula, i.created_at,
        COALESCE(u.nome_completo, '') AS aluno_nome, COALESCE(u.email, '') AS aluno_email, COALESCE(c.nome, '') AS curso_nome
        FROM inscricoes_aluno i
        LEFT JOIN alunos a ON a.id = i.aluno_id
        LEFT JOIN usuarios u ON u.id = a.user_id
        LEFT JOIN cursos c ON c.id = i.curso_id
        WHERE i.curso_id = $1 ORDER BY i.created_at DESC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}

// ListDocuments returns the documents attached to an enrollment.
func (r *EnrollmentRepository) ListDocuments(ctx context.Context, enrollmentID string) ([]models.Document, error) {
	const query = `SELECT id, inscricao_id, storage_path, nome_original, content_type, size_bytes, uploaded_at
        FROM documentos WHERE inscricao_id = $1 ORDER BY uploaded_at`
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
