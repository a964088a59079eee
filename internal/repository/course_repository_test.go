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
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestCourseRepositoryAdvanceStatuses(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_inicio_inscricoes <= $3")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_inicio_curso <= $3")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cursos SET status = $1, updated_at = $4 WHERE status = $2 AND data_fim_curso < $3")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	counts, err := repo.AdvanceStatuses(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Opened)
	assert.Equal(t, int64(2), counts.Started)
	assert.Equal(t, int64(1), counts.Finished)
	assert.Equal(t, int64(6), counts.Total())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryAdvanceStatusesIdempotentWhenNothingDue(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("data_inicio_inscricoes <= $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("data_inicio_curso <= $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("data_fim_curso < $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	counts, err := repo.AdvanceStatuses(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateDefaultsToAgendado(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cursos")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		Nome:                 "Curso de Extensao",
		CargaHoraria:         40,
		VagasInternas:        10,
		VagasExternas:        20,
		DataInicioInscricoes: time.Now().Add(24 * time.Hour),
		DataFimInscricoes:    time.Now().Add(72 * time.Hour),
		DataInicioCurso:      time.Now().Add(96 * time.Hour),
		DataFimCurso:         time.Now().Add(30 * 24 * time.Hour),
		CriadorID:            "prof-1",
	}

	err := repo.Create(context.Background(), course)
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusAgendado, course.Status)
	assert.NotEmpty(t, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateStatusCancel(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cursos SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("curso-1", models.CourseStatusCancelado, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "curso-1", models.CourseStatusCancelado)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
