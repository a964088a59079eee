package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sistemafic/sistemafic-api/internal/service"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/response"
)

// ProfessorHandler exposes professor management endpoints.
type ProfessorHandler struct {
	professors *service.ProfessorService
}

// NewProfessorHandler constructs ProfessorHandler.
func NewProfessorHandler(professors *service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professors: professors}
}

// List godoc
// @Summary List professors
// @Tags Professors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /professores [get]
func (h *ProfessorHandler) List(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	professors, err := h.professors.List(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professors, nil)
}

// Get godoc
// @Summary Get professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professores/{id} [get]
func (h *ProfessorHandler) Get(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	professor, err := h.professors.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Create godoc
// @Summary Register professor
// @Description Coordinator-only. Creates the account and the professor profile.
// @Tags Professors
// @Accept json
// @Produce json
// @Param payload body service.CreateProfessorRequest true "Professor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /professores [post]
func (h *ProfessorHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}

	professor, err := h.professors.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, professor)
}

// Update godoc
// @Summary Update professor
// @Tags Professors
// @Accept json
// @Produce json
// @Param id path string true "Professor ID"
// @Param payload body service.UpdateProfessorRequest true "Professor payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /professores/{id} [put]
func (h *ProfessorHandler) Update(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid professor payload"))
		return
	}

	professor, err := h.professors.Update(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, professor, nil)
}

// Delete godoc
// @Summary Delete professor
// @Tags Professors
// @Produce json
// @Param id path string true "Professor ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /professores/{id} [delete]
func (h *ProfessorHandler) Delete(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.professors.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
