package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sistemafic/sistemafic-api/internal/models"
)

// CourseRepository handles persistence of cursos.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `c.id, c.nome, c.descricao, c.carga_horaria, c.vagas_internas, c.vagas_externas,
        c.data_inicio_inscricoes, c.data_fim_inscricoes, c.data_inicio_curso, c.data_fim_curso,
        c.status, c.criador_id, c.created_at, c.updated_at`

// List returns courses filtered by the provided criteria.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	base := `FROM cursos c
LEFT JOIN professores p ON p.id = c.criador_id
LEFT JOIN usuarios u ON u.id = p.user_id`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.CriadorID != "" {
		conditions = append(conditions, fmt.Sprintf("c.criador_id = $%d", len(args)+1))
		args = append(args, filter.CriadorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("c.nome ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"nome":              "c.nome",
		"inicio_inscricoes": "c.data_inicio_inscricoes",
		"inicio_curso":      "c.data_inicio_curso",
		"created_at":        "c.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "c.data_inicio_inscricoes"
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

	query := fmt.Sprintf(`SELECT %s, COALESCE(u.nome_completo, '') AS criador_nome, COALESCE(p.siape, '') AS criador_siape
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, courseColumns, base+clause, orderBy, order, size, offset)

	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, nome, descricao, carga_horaria, vagas_internas, vagas_externas,
        data_inicio_inscricoes, data_fim_inscricoes, data_inicio_curso, data_fim_curso,
        status, criador_id, created_at, updated_at FROM cursos WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailByID returns a course joined with creator info.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	query := fmt.Sprintf(`SELECT %s, COALESCE(u.nome_completo, '') AS criador_nome, COALESCE(p.siape, '') AS criador_siape
        FROM cursos c
        LEFT JOIN professores p ON p.id = c.criador_id
        LEFT JOIN usuarios u ON u.id = p.user_id
        WHERE c.id = $1`, courseColumns)
	var detail models.CourseDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create persists a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusAgendado
	}
	const query = `INSERT INTO cursos (id, nome, descricao, carga_horaria, vagas_internas, vagas_externas,
        data_inicio_inscricoes, data_fim_inscricoes, data_inicio_curso, data_fim_curso,
        status, criador_id, created_at, updated_at)
        VALUES (:id, :nome, :descricao, :carga_horaria, :vagas_internas, :vagas_externas,
        :data_inicio_inscricoes, :data_fim_inscricoes, :data_inicio_curso, :data_fim_curso,
        :status, :criador_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cursos SET nome = :nome, descricao = :descricao, carga_horaria = :carga_horaria,
        vagas_internas = :vagas_internas, vagas_externas = :vagas_externas,
        data_inicio_inscricoes = :data_inicio_inscricoes, data_fim_inscricoes = :data_fim_inscricoes,
        data_inicio_curso = :data_inicio_curso, data_fim_curso = :data_fim_curso,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus sets the lifecycle status of a single course.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error {
	const query = `UPDATE cursos SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update course status: %w", err)
	}
	return nil
}

// AdvanceStatuses performs the three time-driven transition passes as bulk
// conditional updates. Only rows matching the source status and date
// predicate are touched, which makes the routine idempotent at a fixed now.
func (r *CourseRepository) AdvanceStatuses(ctx context.Context, now time.Time) (models.StatusTransitionCounts, error) {
	counts := models.StatusTransitionCounts{RanAt: now}
	today := now.Truncate(24 * time.Hour)

	opened, err := r.transition(ctx,
		`UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_inicio_inscricoes <= $3`,
		models.CourseStatusInscricoesAbertas, models.CourseStatusAgendado, now)
	if err != nil {
		return counts, fmt.Errorf("open enrollments: %w", err)
	}
	counts.Opened = opened

	started, err := r.transition(ctx,
		`UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_inicio_curso <= $3`,
		models.CourseStatusEmAndamento, models.CourseStatusInscricoesAbertas, today)
	if err != nil {
		return counts, fmt.Errorf("start courses: %w", err)
	}
	counts.Started = started

	finished, err := r.transition(ctx,
		`UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_fim_curso < $3`,
		models.CourseStatusFinalizado, models.CourseStatusEmAndamento, today)
	if err != nil {
		return counts, fmt.Errorf("finish courses: %w", err)
	}
	counts.Finished = finished

	return counts, nil
}

func (r *CourseRepository) transition(ctx context.Context, query string, target, source models.CourseStatus, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, target, source, cutoff, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
