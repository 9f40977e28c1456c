package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// SetorHandler exposes setor endpoints.
type SetorHandler struct {
	setores *service.SetorService
}

// NewSetorHandler constructs SetorHandler.
func NewSetorHandler(setores *service.SetorService) *SetorHandler {
	return &SetorHandler{setores: setores}
}

// List godoc
// @Summary List setores
// @Tags Setores
// @Produce json
// @Param secretaria_id query string false "Filter by secretaria"
// @Param search query string false "Search by name"
// @Param ativo query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /setores [get]
func (h *SetorHandler) List(c *gin.Context) {
	var filter models.SetorFilter
	filter.SecretariaID = c.Query("secretaria_id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if ativo := c.Query("ativo"); ativo != "" {
		v := ativo == "true"
		filter.Ativo = &v
	}
	setores, err := h.setores.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setores, nil)
}

// Get godoc
// @Summary Get setor
// @Tags Setores
// @Produce json
// @Param id path string true "Setor ID"
// @Success 200 {object} response.Envelope
// @Router /setores/{id} [get]
func (h *SetorHandler) Get(c *gin.Context) {
	setor, err := h.setores.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setor, nil)
}

// Create godoc
// @Summary Create setor
// @Tags Setores
// @Accept json
// @Produce json
// @Param payload body service.SetorRequest true "Setor payload"
// @Success 201 {object} response.Envelope
// @Router /setores [post]
func (h *SetorHandler) Create(c *gin.Context) {
	var req service.SetorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	setor, err := h.setores.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, setor)
}

// Update godoc
// @Summary Update setor
// @Tags Setores
// @Accept json
// @Produce json
// @Param id path string true "Setor ID"
// @Param payload body service.SetorRequest true "Setor payload"
// @Success 200 {object} response.Envelope
// @Router /setores/{id} [put]
func (h *SetorHandler) Update(c *gin.Context) {
	var req service.SetorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	setor, err := h.setores.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setor, nil)
}

// Delete godoc
// @Summary Deactivate setor
// @Tags Setores
// @Produce json
// @Param id path string true "Setor ID"
// @Success 204 {object} response.Envelope
// @Router /setores/{id} [delete]
func (h *SetorHandler) Delete(c *gin.Context) {
	if err := h.setores.Desativar(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
