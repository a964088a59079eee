package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func courseRows(status models.CourseStatus, vagasInternas, vagasExternas int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "nome", "descricao", "carga_horaria", "vagas_internas", "vagas_externas",
		"data_inicio_inscricoes", "data_fim_inscricoes", "data_inicio_curso", "data_fim_curso",
		"status", "criador_id", "created_at", "updated_at",
	}).AddRow(
		"curso-1", "Curso de Extensao", "", 40, vagasInternas, vagasExternas,
		now.Add(-48*time.Hour), now.Add(48*time.Hour), now.Add(72*time.Hour), now.Add(240*time.Hour),
		status, "prof-1", now, now,
	)
}

func expectCourseLock(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM cursos WHERE id = $1 FOR UPDATE")).
		WithArgs("curso-1").
		WillReturnRows(rows)
}

func TestEnrollmentRepositoryCreateWithinCapacity(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, courseRows(models.CourseStatusInscricoesAbertas, 2, 10))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscricoes_aluno WHERE aluno_id = $1 AND curso_id = $2 LIMIT 1")).
		WithArgs("aluno-1", "curso-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM inscricoes_aluno WHERE curso_id = $1 AND tipo_vaga = $2 AND status = $3")).
		WithArgs("curso-1", models.SeatTypeInterno, models.EnrollmentStatusConfirmada).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO inscricoes_aluno")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documentos")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	matricula := "20240001"
	enrollment := &models.Enrollment{
		AlunoID:   "aluno-1",
		CursoID:   "curso-1",
		TipoVaga:  models.SeatTypeInterno,
		Matricula: &matricula,
	}
	documents := []models.Document{{
		StoragePath:  "inscricoes/x/1_rg.pdf",
		OriginalName: "rg.pdf",
		ContentType:  "application/pdf",
		SizeBytes:    2048,
	}}

	err := repo.CreateWithinCapacity(context.Background(), enrollment, documents)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusAguardando, enrollment.Status)
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, enrollment.ID, documents[0].InscricaoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCapacityExceeded(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, courseRows(models.CourseStatusInscricoesAbertas, 1, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscricoes_aluno")).
		WithArgs("aluno-1", "curso-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("curso-1", models.SeatTypeInterno, models.EnrollmentStatusConfirmada).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateWithinCapacity(context.Background(), &models.Enrollment{
		AlunoID:  "aluno-1",
		CursoID:  "curso-1",
		TipoVaga: models.SeatTypeInterno,
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateCourseNotOpen(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, courseRows(models.CourseStatusAgendado, 5, 5))
	mock.ExpectRollback()

	err := repo.CreateWithinCapacity(context.Background(), &models.Enrollment{
		AlunoID:  "aluno-1",
		CursoID:  "curso-1",
		TipoVaga: models.SeatTypeExterno,
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	expectCourseLock(mock, courseRows(models.CourseStatusInscricoesAbertas, 5, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM inscricoes_aluno")).
		WithArgs("aluno-1", "curso-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateWithinCapacity(context.Background(), &models.Enrollment{
		AlunoID:  "aluno-1",
		CursoID:  "curso-1",
		TipoVaga: models.SeatTypeExterno,
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func enrollmentRow(status models.EnrollmentStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "aluno_id", "curso_id", "status", "tipo_vaga", "matricula", "created_at"}).
		AddRow("insc-1", "aluno-1", "curso-1", status, models.SeatTypeInterno, nil, time.Now())
}

func TestEnrollmentRepositoryValidateApprove(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscricoes_aluno WHERE id = $1")).
		WithArgs("insc-1").
		WillReturnRows(enrollmentRow(models.EnrollmentStatusAguardando))
	expectCourseLock(mock, courseRows(models.CourseStatusInscricoesAbertas, 2, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("curso-1", models.SeatTypeInterno, models.EnrollmentStatusConfirmada).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inscricoes_aluno SET status = $2 WHERE id = $1 AND status = $3")).
		WithArgs("insc-1", models.EnrollmentStatusConfirmada, models.EnrollmentStatusAguardando).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := repo.Validate(context.Background(), "insc-1", true)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusConfirmada, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryValidateApproveQuotaFull(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscricoes_aluno WHERE id = $1")).
		WithArgs("insc-1").
		WillReturnRows(enrollmentRow(models.EnrollmentStatusAguardando))
	expectCourseLock(mock, courseRows(models.CourseStatusInscricoesAbertas, 1, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("curso-1", models.SeatTypeInterno, models.EnrollmentStatusConfirmada).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Validate(context.Background(), "insc-1", true)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryValidateReject(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscricoes_aluno WHERE id = $1")).
		WithArgs("insc-1").
		WillReturnRows(enrollmentRow(models.EnrollmentStatusAguardando))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inscricoes_aluno SET status = $2 WHERE id = $1 AND status = $3")).
		WithArgs("insc-1", models.EnrollmentStatusCancelada, models.EnrollmentStatusAguardando).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enrollment, err := repo.Validate(context.Background(), "insc-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelada, enrollment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryValidateAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM inscricoes_aluno WHERE id = $1")).
		WithArgs("insc-1").
		WillReturnRows(enrollmentRow(models.EnrollmentStatusConfirmada))
	mock.ExpectRollback()

	_, err := repo.Validate(context.Background(), "insc-1", true)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
	assert.NoError(t, mock.ExpectationsWereMet())
}
