package service

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	documents   map[string][]models.Document
	createErr   error
	created     *models.Enrollment
	validated   map[string]bool
	confirmed   int
	limit       int
}

func (m *mockEnrollmentRepo) CreateWithinCapacity(ctx context.Context, enrollment *models.Enrollment, documents []models.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "insc-new"
	}
	enrollment.Status = models.EnrollmentStatusAguardando
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	if m.documents == nil {
		m.documents = make(map[string][]models.Document)
	}
	m.documents[enrollment.ID] = documents
	return nil
}

func (m *mockEnrollmentRepo) Validate(ctx context.Context, id string, approve bool) (*models.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if e.Status != models.EnrollmentStatusAguardando {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is no longer awaiting validation")
	}
	if approve {
		if m.confirmed >= m.limit {
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "quota already fully confirmed")
		}
		m.confirmed++
		e.Status = models.EnrollmentStatusConfirmada
	} else {
		e.Status = models.EnrollmentStatusCancelada
	}
	m.enrollments[id] = e
	if m.validated == nil {
		m.validated = make(map[string]bool)
	}
	m.validated[id] = approve
	return &e, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if filter.AlunoID != "" && e.AlunoID != filter.AlunoID {
			continue
		}
		out = append(out, models.EnrollmentDetail{Enrollment: e})
	}
	return out, len(out), nil
}

func (m *mockEnrollmentRepo) ListDocuments(ctx context.Context, enrollmentID string) ([]models.Document, error) {
	return m.documents[enrollmentID], nil
}

type mockStudentProfiles struct {
	profiles map[string]*models.StudentProfile
}

func (m *mockStudentProfiles) FindByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type mockDocumentStore struct {
	saved   []string
	deleted []string
}

func (m *mockDocumentStore) SaveStream(relPath string, r io.Reader) (string, error) {
	m.saved = append(m.saved, relPath)
	return relPath, nil
}

func (m *mockDocumentStore) DeleteDir(relDir string) error {
	m.deleted = append(m.deleted, relDir)
	return nil
}

func studentPrincipal() models.Principal {
	return models.Principal{UserID: "user-1", Email: "aluno@example.com", Role: models.RoleAluno}
}

func adminPrincipal() models.Principal {
	return models.Principal{UserID: "cca-1", Email: "cca@example.com", Role: models.RoleCCA}
}

func newEnrollmentServiceForTest(repo *mockEnrollmentRepo, students *mockStudentProfiles) (*EnrollmentService, *mockDocumentStore) {
	store := &mockDocumentStore{}
	svc := NewEnrollmentService(repo, students, store, nil, nil)
	return svc, store
}

func TestEnrollmentRequestHappyPath(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students := &mockStudentProfiles{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "aluno-1", UserID: "user-1"},
	}}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	detail, err := svc.Request(context.Background(), studentPrincipal(), RequestEnrollmentInput{
		CursoID:  "curso-1",
		TipoVaga: "EXTERNO",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusAguardando, detail.Status)
	assert.Equal(t, "aluno-1", repo.created.AlunoID)
	assert.Equal(t, models.SeatTypeExterno, repo.created.TipoVaga)
	assert.Nil(t, repo.created.Matricula)
}

func TestEnrollmentRequestInternalRequiresMatricula(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students := &mockStudentProfiles{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "aluno-1", UserID: "user-1"},
	}}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	_, err := svc.Request(context.Background(), studentPrincipal(), RequestEnrollmentInput{
		CursoID:  "curso-1",
		TipoVaga: "INTERNO",
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestEnrollmentRequestWithoutProfile(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students := &mockStudentProfiles{}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	_, err := svc.Request(context.Background(), studentPrincipal(), RequestEnrollmentInput{
		CursoID:  "curso-1",
		TipoVaga: "EXTERNO",
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestEnrollmentRequestCapacityErrorPassesThrough(t *testing.T) {
	repo := &mockEnrollmentRepo{createErr: appErrors.Clone(appErrors.ErrCapacityExceeded, "no seats left for this quota")}
	students := &mockStudentProfiles{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "aluno-1", UserID: "user-1"},
	}}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	_, err := svc.Request(context.Background(), studentPrincipal(), RequestEnrollmentInput{
		CursoID:  "curso-1",
		TipoVaga: "EXTERNO",
	}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
}

func TestEnrollmentValidateRequiresCoordinator(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc, _ := newEnrollmentServiceForTest(repo, &mockStudentProfiles{})

	approve := true
	_, err := svc.Validate(context.Background(), studentPrincipal(), "insc-1", ValidateEnrollmentInput{Aprovar: &approve})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestEnrollmentValidateApproveAndSecondOverQuotaFails(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{
			"insc-1": {ID: "insc-1", AlunoID: "aluno-1", CursoID: "curso-1", Status: models.EnrollmentStatusAguardando, TipoVaga: models.SeatTypeInterno},
			"insc-2": {ID: "insc-2", AlunoID: "aluno-2", CursoID: "curso-1", Status: models.EnrollmentStatusAguardando, TipoVaga: models.SeatTypeInterno},
		},
		limit: 1,
	}
	svc, _ := newEnrollmentServiceForTest(repo, &mockStudentProfiles{})

	approve := true
	first, err := svc.Validate(context.Background(), adminPrincipal(), "insc-1", ValidateEnrollmentInput{Aprovar: &approve})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusConfirmada, first.Status)

	_, err = svc.Validate(context.Background(), adminPrincipal(), "insc-2", ValidateEnrollmentInput{Aprovar: &approve})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, 1, repo.confirmed)
}

func TestEnrollmentValidateRejectDoesNotConsumeSeat(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{
			"insc-1": {ID: "insc-1", AlunoID: "aluno-1", CursoID: "curso-1", Status: models.EnrollmentStatusAguardando, TipoVaga: models.SeatTypeExterno},
		},
		limit: 5,
	}
	svc, _ := newEnrollmentServiceForTest(repo, &mockStudentProfiles{})

	reject := false
	enrollment, err := svc.Validate(context.Background(), adminPrincipal(), "insc-1", ValidateEnrollmentInput{Aprovar: &reject})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelada, enrollment.Status)
	assert.Equal(t, 0, repo.confirmed)
}

func TestEnrollmentValidateAlreadyDecided(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{
			"insc-1": {ID: "insc-1", Status: models.EnrollmentStatusConfirmada},
		},
		limit: 5,
	}
	svc, _ := newEnrollmentServiceForTest(repo, &mockStudentProfiles{})

	approve := true
	_, err := svc.Validate(context.Background(), adminPrincipal(), "insc-1", ValidateEnrollmentInput{Aprovar: &approve})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestEnrollmentListScopesStudentToOwnRows(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{
			"insc-1": {ID: "insc-1", AlunoID: "aluno-1"},
			"insc-2": {ID: "insc-2", AlunoID: "aluno-2"},
		},
	}
	students := &mockStudentProfiles{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "aluno-1", UserID: "user-1"},
	}}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	list, pagination, err := svc.List(context.Background(), studentPrincipal(), models.EnrollmentFilter{AlunoID: "aluno-2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "aluno-1", list[0].AlunoID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestEnrollmentGetBlocksOtherStudents(t *testing.T) {
	repo := &mockEnrollmentRepo{
		enrollments: map[string]models.Enrollment{
			"insc-1": {ID: "insc-1", AlunoID: "aluno-2"},
		},
	}
	students := &mockStudentProfiles{profiles: map[string]*models.StudentProfile{
		"user-1": {ID: "aluno-1", UserID: "user-1"},
	}}
	svc, _ := newEnrollmentServiceForTest(repo, students)

	_, err := svc.Get(context.Background(), studentPrincipal(), "insc-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
