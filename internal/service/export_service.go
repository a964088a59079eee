package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sistemafic/sistemafic-api/internal/models"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/export"
)

type rosterEnrollmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type rosterCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type rosterOwnershipReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.ProfessorProfile, error)
}

// ExportFormat identifies supported roster outputs.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and response metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders course rosters for download.
type ExportService struct {
	enrollments rosterEnrollmentReader
	courses     rosterCourseReader
	professors  rosterOwnershipReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(enrollments rosterEnrollmentReader, courses rosterCourseReader, professors rosterOwnershipReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		courses:     courses,
		professors:  professors,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// CourseRoster renders the enrollment list of a course. Only the owning
// professor or a coordinator may export it.
func (s *ExportService) CourseRoster(ctx context.Context, principal models.Principal, courseID string, format ExportFormat) (*ExportResult, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.authorize(ctx, principal, course); err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{
		Headers: []string{"Aluno", "Email", "Tipo de Vaga", "Matricula", "Status", "Data de Inscricao"},
	}
	for _, e := range enrollments {
		matricula := ""
		if e.Matricula != nil {
			matricula = *e.Matricula
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Aluno":             e.AlunoNome,
			"Email":             e.AlunoEmail,
			"Tipo de Vaga":      string(e.TipoVaga),
			"Matricula":         matricula,
			"Status":            string(e.Status),
			"Data de Inscricao": e.CreatedAt.Format("02/01/2006 15:04"),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	base := fmt.Sprintf("inscricoes_%s_%s", slugify(course.Nome), stamp)

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, "Inscricoes - "+course.Nome)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ExportService) authorize(ctx context.Context, principal models.Principal, course *models.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if !principal.IsProfessor() {
		return appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}
	profile, err := s.professors.FindByUserID(ctx, principal.UserID)
	if err != nil || profile.ID != course.CriadorID {
		return appErrors.Clone(appErrors.ErrForbidden, "course belongs to another professor")
	}
	return nil
}

func slugify(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, name)
	if out == "" {
		out = "curso"
	}
	return out
}
