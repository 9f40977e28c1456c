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

// SecretariaHandler exposes secretaria endpoints.
type SecretariaHandler struct {
	secretarias *service.SecretariaService
}

// NewSecretariaHandler constructs SecretariaHandler.
func NewSecretariaHandler(secretarias *service.SecretariaService) *SecretariaHandler {
	return &SecretariaHandler{secretarias: secretarias}
}

// List godoc
// @Summary List secretarias
// @Tags Secretarias
// @Produce json
// @Param search query string false "Search by name or sigla"
// @Param ativo query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /secretarias [get]
func (h *SecretariaHandler) List(c *gin.Context) {
	var filter models.SecretariaFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if ativo := c.Query("ativo"); ativo != "" {
		v := ativo == "true"
		filter.Ativo = &v
	}
	secretarias, err := h.secretarias.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, secretarias, nil)
}

// Get godoc
// @Summary Get secretaria
// @Tags Secretarias
// @Produce json
// @Param id path string true "Secretaria ID"
// @Success 200 {object} response.Envelope
// @Router /secretarias/{id} [get]
func (h *SecretariaHandler) Get(c *gin.Context) {
	secretaria, err := h.secretarias.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, secretaria, nil)
}

// Create godoc
// @Summary Create secretaria
// @Tags Secretarias
// @Accept json
// @Produce json
// @Param payload body service.SecretariaRequest true "Secretaria payload"
// @Success 201 {object} response.Envelope
// @Router /secretarias [post]
func (h *SecretariaHandler) Create(c *gin.Context) {
	var req service.SecretariaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	secretaria, err := h.secretarias.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, secretaria)
}

// Update godoc
// @Summary Update secretaria
// @Tags Secretarias
// @Accept json
// @Produce json
// @Param id path string true "Secretaria ID"
// @Param payload body service.SecretariaRequest true "Secretaria payload"
// @Success 200 {object} response.Envelope
// @Router /secretarias/{id} [put]
func (h *SecretariaHandler) Update(c *gin.Context) {
	var req service.SecretariaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	secretaria, err := h.secretarias.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, secretaria, nil)
}

// Delete godoc
// @Summary Deactivate secretaria
// @Tags Secretarias
// @Produce json
// @Param id path string true "Secretaria ID"
// @Success 204 {object} response.Envelope
// @Router /secretarias/{id} [delete]
func (h *SecretariaHandler) Delete(c *gin.Context) {
	if err := h.secretarias.Desativar(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
