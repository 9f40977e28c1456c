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

// SolicitacaoHandler exposes the request-type catalog endpoints.
type SolicitacaoHandler struct {
	solicitacoes *service.SolicitacaoService
}

// NewSolicitacaoHandler constructs SolicitacaoHandler.
func NewSolicitacaoHandler(solicitacoes *service.SolicitacaoService) *SolicitacaoHandler {
	return &SolicitacaoHandler{solicitacoes: solicitacoes}
}

// List godoc
// @Summary List request types
// @Tags Solicitacoes
// @Produce json
// @Param secretaria_id query string false "Filter by secretaria"
// @Param search query string false "Search by name"
// @Param ativo query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes [get]
func (h *SolicitacaoHandler) List(c *gin.Context) {
	var filter models.SolicitacaoFilter
	filter.SecretariaID = c.Query("secretaria_id")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if ativo := c.Query("ativo"); ativo != "" {
		v := ativo == "true"
		filter.Ativo = &v
	}
	solicitacoes, err := h.solicitacoes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitacoes, nil)
}

// Get godoc
// @Summary Get request type
// @Tags Solicitacoes
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id} [get]
func (h *SolicitacaoHandler) Get(c *gin.Context) {
	solicitacao, err := h.solicitacoes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitacao, nil)
}

// Create godoc
// @Summary Create request type
// @Tags Solicitacoes
// @Accept json
// @Produce json
// @Param payload body service.SolicitacaoRequest true "Solicitacao payload"
// @Success 201 {object} response.Envelope
// @Router /solicitacoes [post]
func (h *SolicitacaoHandler) Create(c *gin.Context) {
	var req service.SolicitacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	solicitacao, err := h.solicitacoes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, solicitacao)
}

// Update godoc
// @Summary Update request type
// @Tags Solicitacoes
// @Accept json
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Param payload body service.SolicitacaoRequest true "Solicitacao payload"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id} [put]
func (h *SolicitacaoHandler) Update(c *gin.Context) {
	var req service.SolicitacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	solicitacao, err := h.solicitacoes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitacao, nil)
}

// Delete godoc
// @Summary Remove a request type without protocols
// @Tags Solicitacoes
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Success 204 {object} response.Envelope
// @Router /solicitacoes/{id} [delete]
func (h *SolicitacaoHandler) Delete(c *gin.Context) {
	if err := h.solicitacoes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListDocumentos godoc
// @Summary List required documents of a request type
// @Tags Solicitacoes
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id}/documentos [get]
func (h *SolicitacaoHandler) ListDocumentos(c *gin.Context) {
	documentos, err := h.solicitacoes.ListDocumentos(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documentos, nil)
}

// AddDocumento godoc
// @Summary Add required document to a request type
// @Tags Solicitacoes
// @Accept json
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Param payload body service.DocumentoRequest true "Documento payload"
// @Success 201 {object} response.Envelope
// @Router /solicitacoes/{id}/documentos [post]
func (h *SolicitacaoHandler) AddDocumento(c *gin.Context) {
	var req service.DocumentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	documento, err := h.solicitacoes.AddDocumento(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, documento)
}

// UpdateDocumento godoc
// @Summary Update required document of a request type
// @Tags Solicitacoes
// @Accept json
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Param documentoId path string true "Documento ID"
// @Param payload body service.DocumentoRequest true "Documento payload"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id}/documentos/{documentoId} [put]
func (h *SolicitacaoHandler) UpdateDocumento(c *gin.Context) {
	var req service.DocumentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	documento, err := h.solicitacoes.UpdateDocumento(c.Request.Context(), c.Param("id"), c.Param("documentoId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documento, nil)
}

// RemoveDocumento godoc
// @Summary Remove required document from a request type
// @Tags Solicitacoes
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Param documentoId path string true "Documento ID"
// @Success 204 {object} response.Envelope
// @Router /solicitacoes/{id}/documentos/{documentoId} [delete]
func (h *SolicitacaoHandler) RemoveDocumento(c *gin.Context) {
	if err := h.solicitacoes.RemoveDocumento(c.Request.Context(), c.Param("id"), c.Param("documentoId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
