package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sistemafic/sistemafic-api/internal/service"
	appErrors "github.com/sistemafic/sistemafic-api/pkg/errors"
	"github.com/sistemafic/sistemafic-api/pkg/response"
)

// GeographyHandler serves the read-only state and city reference data.
type GeographyHandler struct {
	geography *service.GeographyService
}

// NewGeographyHandler constructs GeographyHandler.
func NewGeographyHandler(geography *service.GeographyService) *GeographyHandler {
	return &GeographyHandler{geography: geography}
}

// ListEstados godoc
// @Summary List states
// @Tags Geography
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /estados [get]
func (h *GeographyHandler) ListEstados(c *gin.Context) {
	estados, err := h.geography.ListEstados(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, estados, nil)
}

// ListMunicipios godoc
// @Summary List cities
// @Tags Geography
// @Produce json
// @Param estado_id query int false "Filter by state"
// @Success 200 {object} response.Envelope
// @Router /municipios [get]
func (h *GeographyHandler) ListMunicipios(c *gin.Context) {
	var estadoID int64
	if raw := c.Query("estado_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "estado_id must be numeric"))
			return
		}
		estadoID = parsed
	}

	municipios, err := h.geography.ListMunicipios(c.Request.Context(), estadoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, municipios, nil)
}

// ListMunicipiosByEstado godoc
// @Summary List cities of a state
// @Tags Geography
// @Produce json
// @Param id path int true "State ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /estados/{id}/municipios [get]
func (h *GeographyHandler) ListMunicipiosByEstado(c *gin.Context) {
	estadoID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "state id must be numeric"))
		return
	}

	municipios, err := h.geography.ListMunicipios(c.Request.Context(), estadoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, municipios, nil)
}
