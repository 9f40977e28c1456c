package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// SolicitanteHandler exposes requester endpoints for staff screens.
type SolicitanteHandler struct {
	solicitantes *service.SolicitanteService
	protocolos   *service.ProtocoloService
}

// NewSolicitanteHandler constructs SolicitanteHandler.
func NewSolicitanteHandler(solicitantes *service.SolicitanteService, protocolos *service.ProtocoloService) *SolicitanteHandler {
	return &SolicitanteHandler{solicitantes: solicitantes, protocolos: protocolos}
}

// List godoc
// @Summary List requesters
// @Tags Solicitantes
// @Produce json
// @Param search query string false "Search by name or e-mail"
// @Param documento query string false "Filter by CPF/CNPJ"
// @Param tipo_pessoa query string false "FISICA or JURIDICA"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /solicitantes [get]
func (h *SolicitanteHandler) List(c *gin.Context) {
	var filter models.SolicitanteFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Documento = c.Query("documento")
	if tipo := c.Query("tipo_pessoa"); tipo != "" {
		t := models.TipoPessoa(tipo)
		filter.TipoPessoa = &t
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	solicitantes, pagination, err := h.solicitantes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitantes, pagination)
}

// Get godoc
// @Summary Get requester
// @Tags Solicitantes
// @Produce json
// @Param id path string true "Solicitante ID"
// @Success 200 {object} response.Envelope
// @Router /solicitantes/{id} [get]
func (h *SolicitanteHandler) Get(c *gin.Context) {
	solicitante, err := h.solicitantes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitante, nil)
}

// Create godoc
// @Summary Register a requester
// @Tags Solicitantes
// @Accept json
// @Produce json
// @Param payload body service.SolicitanteRequest true "Requester data"
// @Success 201 {object} response.Envelope
// @Router /solicitantes [post]
func (h *SolicitanteHandler) Create(c *gin.Context) {
	var req service.SolicitanteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payload inválido"))
		return
	}
	solicitante, err := h.solicitantes.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, solicitante)
}

// Update godoc
// @Summary Update requester data
// @Tags Solicitantes
// @Accept json
// @Produce json
// @Param id path string true "Solicitante ID"
// @Param payload body service.SolicitanteRequest true "Requester data"
// @Success 200 {object} response.Envelope
// @Router /solicitantes/{id} [put]
func (h *SolicitanteHandler) Update(c *gin.Context) {
	var req service.SolicitanteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payload inválido"))
		return
	}
	solicitante, err := h.solicitantes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitante, nil)
}
