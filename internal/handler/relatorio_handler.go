package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// RelatorioHandler exposes the async export endpoints.
type RelatorioHandler struct {
	relatorios *service.RelatorioService
}

// NewRelatorioHandler constructs RelatorioHandler.
func NewRelatorioHandler(relatorios *service.RelatorioService) *RelatorioHandler {
	return &RelatorioHandler{relatorios: relatorios}
}

// Solicitar godoc
// @Summary Queue a protocol-listing export
// @Tags Relatorios
// @Accept json
// @Produce json
// @Param payload body service.SolicitarRelatorioRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Router /relatorios [post]
func (h *RelatorioHandler) Solicitar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SolicitarRelatorioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	relatorio, err := h.relatorios.Solicitar(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, relatorio, nil)
}

// Listar godoc
// @Summary List own exports with download tokens
// @Tags Relatorios
// @Produce json
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /relatorios [get]
func (h *RelatorioHandler) Listar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	relatorios, err := h.relatorios.Listar(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, relatorios, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Relatorios
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /relatorios/download [get]
func (h *RelatorioHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token obrigatório"))
		return
	}
	relatorio, file, err := h.relatorios.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	contentType := "application/pdf"
	ext := "pdf"
	if relatorio.Formato == "CSV" {
		contentType = "text/csv"
		ext = "csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("relatorio_%s.%s", relatorio.ID, ext)))
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, relatorio.ID, relatorio.UpdatedAt, file)
}
