package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sistemafic/sistemafic-api/internal/service"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/response"
)

// StudentHandler exposes aluno profile endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// GetProfile godoc
// @Summary Get own student profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /aluno/me [get]
func (h *StudentHandler) GetProfile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.students.GetProfile(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpsertProfile godoc
// @Summary Complete or update own student profile
// @Description Required before requesting any enrollment
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpsertStudentProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /aluno/me [put]
func (h *StudentHandler) UpsertProfile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpsertStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.students.UpsertProfile(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// DeleteProfile godoc
// @Summary Delete own student profile
// @Tags Students
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /aluno/me [delete]
func (h *StudentHandler) DeleteProfile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.students.DeleteProfile(c.Request.Context(), principal); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
