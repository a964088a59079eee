package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
)

type mockCourseRepo struct {
	courses     map[string]models.Course
	lastFilter  models.CourseFilter
	counts      models.StatusTransitionCounts
	advanceErr  error
	advancedAt  time.Time
	statusSetTo models.CourseStatus
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	m.lastFilter = filter
	var out []models.CourseDetail
	for _, c := range m.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.CriadorID != "" && c.CriadorID != filter.CriadorID {
			continue
		}
		out = append(out, models.CourseDetail{Course: c})
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindDetailByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := m.courses[id]; ok {
		return &models.CourseDetail{Course: c}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "curso-new"
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error {
	c := m.courses[id]
	c.Status = status
	m.courses[id] = c
	m.statusSetTo = status
	return nil
}

func (m *mockCourseRepo) AdvanceStatuses(ctx context.Context, now time.Time) (models.StatusTransitionCounts, error) {
	m.advancedAt = now
	return m.counts, m.advanceErr
}

type mockProfessorProfiles struct {
	profiles map[string]*models.ProfessorProfile
}

func (m *mockProfessorProfiles) FindByUserID(ctx context.Context, userID string) (*models.ProfessorProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func professorPrincipal() models.Principal {
	return models.Principal{UserID: "user-prof", Email: "prof@example.com", Role: models.RoleProfessor}
}

func validCourseRequest() CreateCourseRequest {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return CreateCourseRequest{
		Nome:                 "Introducao a Redes",
		CargaHoraria:         40,
		VagasInternas:        20,
		VagasExternas:        10,
		DataInicioInscricoes: base,
		DataFimInscricoes:    base.AddDate(0, 0, 15),
		DataInicioCurso:      base.AddDate(0, 1, 0),
		DataFimCurso:         base.AddDate(0, 2, 0),
	}
}

func TestCourseCreateStartsScheduled(t *testing.T) {
	repo := &mockCourseRepo{}
	professors := &mockProfessorProfiles{profiles: map[string]*models.ProfessorProfile{
		"user-prof": {ID: "prof-1", UserID: "user-prof"},
	}}
	svc := NewCourseService(repo, professors, nil, 0, nil, nil, nil)

	detail, err := svc.Create(context.Background(), professorPrincipal(), validCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusAgendado, detail.Status)
	assert.Equal(t, "prof-1", detail.CriadorID)
}

func TestCourseCreateRejectsNonProfessors(t *testing.T) {
	svc := NewCourseService(&mockCourseRepo{}, &mockProfessorProfiles{}, nil, 0, nil, nil, nil)

	_, err := svc.Create(context.Background(), studentPrincipal(), validCourseRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestCourseCreateRejectsInvertedWindows(t *testing.T) {
	professors := &mockProfessorProfiles{profiles: map[string]*models.ProfessorProfile{
		"user-prof": {ID: "prof-1", UserID: "user-prof"},
	}}
	svc := NewCourseService(&mockCourseRepo{}, professors, nil, 0, nil, nil, nil)

	req := validCourseRequest()
	req.DataFimInscricoes = req.DataInicioInscricoes.AddDate(0, 0, -1)
	_, err := svc.Create(context.Background(), professorPrincipal(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCourseListScopesByRole(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"curso-1": {ID: "curso-1", Status: models.CourseStatusInscricoesAbertas, CriadorID: "prof-1"},
		"curso-2": {ID: "curso-2", Status: models.CourseStatusAgendado, CriadorID: "prof-2"},
	}}
	professors := &mockProfessorProfiles{profiles: map[string]*models.ProfessorProfile{
		"user-prof": {ID: "prof-1", UserID: "user-prof"},
	}}
	svc := NewCourseService(repo, professors, nil, 0, nil, nil, nil)

	admin, _, err := svc.List(context.Background(), adminPrincipal(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, admin, 2)

	own, _, err := svc.List(context.Background(), professorPrincipal(), models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "curso-1", own[0].ID)

	open, _, err := svc.List(context.Background(), studentPrincipal(), models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, models.CourseStatusInscricoesAbertas, open[0].Status)
	assert.Equal(t, models.CourseStatusInscricoesAbertas, repo.lastFilter.Status)
}

func TestCourseUpdateBlockedWhenClosed(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"curso-1": {ID: "curso-1", Status: models.CourseStatusFinalizado, CriadorID: "prof-1"},
	}}
	svc := NewCourseService(repo, &mockProfessorProfiles{}, nil, 0, nil, nil, nil)

	req := validCourseRequest()
	_, err := svc.Update(context.Background(), adminPrincipal(), "curso-1", UpdateCourseRequest(req))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestCourseUpdateRejectsNonOwner(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"curso-1": {ID: "curso-1", Status: models.CourseStatusAgendado, CriadorID: "prof-2"},
	}}
	professors := &mockProfessorProfiles{profiles: map[string]*models.ProfessorProfile{
		"user-prof": {ID: "prof-1", UserID: "user-prof"},
	}}
	svc := NewCourseService(repo, professors, nil, 0, nil, nil, nil)

	req := validCourseRequest()
	_, err := svc.Update(context.Background(), professorPrincipal(), "curso-1", UpdateCourseRequest(req))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestCourseCancelCoordinatorOnly(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"curso-1": {ID: "curso-1", Status: models.CourseStatusInscricoesAbertas},
	}}
	svc := NewCourseService(repo, &mockProfessorProfiles{}, nil, 0, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), professorPrincipal(), "curso-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	detail, err := svc.Cancel(context.Background(), adminPrincipal(), "curso-1")
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusCancelado, detail.Status)
	assert.Equal(t, models.CourseStatusCancelado, repo.statusSetTo)
}

func TestCourseCancelAlreadyClosed(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"curso-1": {ID: "curso-1", Status: models.CourseStatusCancelado},
	}}
	svc := NewCourseService(repo, &mockProfessorProfiles{}, nil, 0, nil, nil, nil)

	_, err := svc.Cancel(context.Background(), adminPrincipal(), "curso-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidState))
}

func TestCourseAdvanceStatusesUsesUTC(t *testing.T) {
	repo := &mockCourseRepo{counts: models.StatusTransitionCounts{Opened: 2, Started: 1}}
	svc := NewCourseService(repo, &mockProfessorProfiles{}, nil, 0, nil, nil, nil)

	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 3, 10, 22, 0, 0, 0, loc)
	counts, err := svc.AdvanceStatuses(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Total())
	assert.Equal(t, time.UTC, repo.advancedAt.Location())
	assert.True(t, repo.advancedAt.Equal(now))
}
