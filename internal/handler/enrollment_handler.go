package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sistemafic/sistemafic-api/internal/models"
	"github.com/sistemafic/sistemafic-api/internal/service"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Request godoc
// @Summary Request enrollment
// @Description Multipart request carrying curso_id, tipo_vaga, optional matricula and document files
// @Tags Enrollments
// @Accept mpfd
// @Produce json
// @Param curso_id formData string true "Course ID"
// @Param tipo_vaga formData string true "INTERNO or EXTERNO"
// @Param matricula formData string false "Institutional registration, required for INTERNO"
// @Param documentos formData file false "Supporting documents"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /inscricoes-aluno [post]
func (h *EnrollmentHandler) Request(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input service.RequestEnrollmentInput
	if err := c.ShouldBind(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart form required"))
		return
	}
	files := form.File["documentos"]

	enrollment, err := h.enrollments.Request(c.Request.Context(), principal, input, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// List godoc
// @Summary List enrollments
// @Description Students see their own enrollments, coordinators see everything
// @Tags Enrollments
// @Produce json
// @Param curso_id query string false "Filter by course"
// @Param status query string false "Filter by status"
// @Param tipo_vaga query string false "Filter by seat type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /inscricoes-aluno [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.EnrollmentFilter
	filter.CursoID = c.Query("curso_id")
	filter.AlunoID = c.Query("aluno_id")
	filter.Status = models.EnrollmentStatus(strings.ToUpper(c.Query("status")))
	filter.TipoVaga = models.SeatType(strings.ToUpper(c.Query("tipo_vaga")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), principal, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /inscricoes-aluno/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.enrollments.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Validate godoc
// @Summary Validate enrollment
// @Description Approve or reject a pending enrollment. Coordinator-only.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.ValidateEnrollmentInput true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /inscricoes-aluno/{id}/validar [post]
func (h *EnrollmentHandler) Validate(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input service.ValidateEnrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}

	enrollment, err := h.enrollments.Validate(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Documents godoc
// @Summary List enrollment documents
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /inscricoes-aluno/{id}/documentos [get]
func (h *EnrollmentHandler) Documents(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	documents, err := h.enrollments.Documents(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents, nil)
}
