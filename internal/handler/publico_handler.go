package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// PublicoHandler serves the unauthenticated citizen portal.
type PublicoHandler struct {
	publico      *service.PublicoService
	municipio    *service.MunicipioService
	solicitacoes *service.SolicitacaoService
	metrics      *service.MetricsService
}

// NewPublicoHandler constructs PublicoHandler.
func NewPublicoHandler(publico *service.PublicoService, municipio *service.MunicipioService, solicitacoes *service.SolicitacaoService, metrics *service.MetricsService) *PublicoHandler {
	return &PublicoHandler{publico: publico, municipio: municipio, solicitacoes: solicitacoes, metrics: metrics}
}

// Municipio godoc
// @Summary Portal branding
// @Description Municipality name, logo and theme tokens for the portal shell
// @Tags Publico
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /publico/municipio [get]
func (h *PublicoHandler) Municipio(c *gin.Context) {
	view, err := h.municipio.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Solicitacoes godoc
// @Summary Active request-type catalog
// @Tags Publico
// @Produce json
// @Param secretaria_id query string false "Filter by secretaria"
// @Success 200 {object} response.Envelope
// @Router /publico/solicitacoes [get]
func (h *PublicoHandler) Solicitacoes(c *gin.Context) {
	ativo := true
	filter := models.SolicitacaoFilter{
		SecretariaID: c.Query("secretaria_id"),
		Ativo:        &ativo,
	}
	solicitacoes, err := h.solicitacoes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitacoes, nil)
}

// Documentos godoc
// @Summary Required documents of a request type
// @Tags Publico
// @Produce json
// @Param id path string true "Solicitacao ID"
// @Success 200 {object} response.Envelope
// @Router /publico/solicitacoes/{id}/documentos [get]
func (h *PublicoHandler) Documentos(c *gin.Context) {
	documentos, err := h.solicitacoes.ListDocumentos(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documentos, nil)
}

// Abrir godoc
// @Summary Open a protocol
// @Description Citizen intake: requester data and the request in one submission
// @Tags Publico
// @Accept json
// @Produce json
// @Param payload body service.AbrirProtocoloRequest true "Intake payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /publico/protocolos [post]
func (h *PublicoHandler) Abrir(c *gin.Context) {
	var req service.AbrirProtocoloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	res, err := h.publico.AbrirProtocolo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ProtocoloAberto()
	response.Created(c, res)
}

// Consultar godoc
// @Summary Track a protocol by consultation code
// @Tags Publico
// @Produce json
// @Param codigo path string true "Consultation code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /publico/protocolos/{codigo} [get]
func (h *PublicoHandler) Consultar(c *gin.Context) {
	view, err := h.publico.Consultar(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ConsultarPorNumero godoc
// @Summary Track a protocol by number plus requester document
// @Tags Publico
// @Produce json
// @Param numero query string true "Protocol number NNNNNN/YYYY"
// @Param documento query string true "Requester CPF/CNPJ"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /publico/consulta [get]
func (h *PublicoHandler) ConsultarPorNumero(c *gin.Context) {
	numero := c.Query("numero")
	documento := c.Query("documento")
	if numero == "" || documento == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "numero e documento são obrigatórios"))
		return
	}
	view, err := h.publico.ConsultarPorNumero(c.Request.Context(), numero, documento)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// MeusProtocolos godoc
// @Summary List protocols of one requester document
// @Tags Publico
// @Produce json
// @Param documento query string true "Requester CPF/CNPJ"
// @Success 200 {object} response.Envelope
// @Router /publico/meus-protocolos [get]
func (h *PublicoHandler) MeusProtocolos(c *gin.Context) {
	documento := c.Query("documento")
	if documento == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "documento obrigatório"))
		return
	}
	views, err := h.publico.MeusProtocolos(c.Request.Context(), documento)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Prefill godoc
// @Summary Stored contact data for the intake form
// @Tags Publico
// @Produce json
// @Param documento query string true "Requester CPF/CNPJ"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /publico/prefill [get]
func (h *PublicoHandler) Prefill(c *gin.Context) {
	documento := c.Query("documento")
	if documento == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "documento obrigatório"))
		return
	}
	solicitante, err := h.publico.Prefill(c.Request.Context(), documento)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, solicitante, nil)
}
