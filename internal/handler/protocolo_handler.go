package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/models"
	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// ProtocoloHandler exposes the staff protocol endpoints.
type ProtocoloHandler struct {
	protocolos *service.ProtocoloService
	anexos     *service.AnexoService
	usuarios   *service.UsuarioService
	metrics    *service.MetricsService
}

// NewProtocoloHandler constructs ProtocoloHandler.
func NewProtocoloHandler(protocolos *service.ProtocoloService, anexos *service.AnexoService, usuarios *service.UsuarioService, metrics *service.MetricsService) *ProtocoloHandler {
	return &ProtocoloHandler{protocolos: protocolos, anexos: anexos, usuarios: usuarios, metrics: metrics}
}

// List godoc
// @Summary List protocols
// @Description Staff listing with filters. USUARIO profiles only see their own setor queue.
// @Tags Protocolos
// @Produce json
// @Param status_id query string false "Filter by status"
// @Param secretaria_id query string false "Filter by secretaria"
// @Param setor_id query string false "Filter by setor"
// @Param documento query string false "Filter by requester CPF/CNPJ"
// @Param numero query string false "Filter by protocol number"
// @Param data_inicio query string false "Opened from (RFC 3339)"
// @Param data_fim query string false "Opened until (RFC 3339)"
// @Param atrasados query bool false "Only overdue"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /protocolos [get]
func (h *ProtocoloHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)

	var filter models.ProtocoloFilter
	filter.StatusID = c.Query("status_id")
	filter.SecretariaID = c.Query("secretaria_id")
	filter.SetorID = c.Query("setor_id")
	filter.Documento = c.Query("documento")
	filter.Numero = c.Query("numero")
	filter.Atrasados = c.Query("atrasados") == "true"
	if inicio := c.Query("data_inicio"); inicio != "" {
		if ts, err := time.Parse(time.RFC3339, inicio); err == nil {
			filter.DataInicio = &ts
		}
	}
	if fim := c.Query("data_fim"); fim != "" {
		if ts, err := time.Parse(time.RFC3339, fim); err == nil {
			filter.DataFim = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	setorID, err := h.callerSetor(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	protocolos, pagination, err := h.protocolos.List(c.Request.Context(), filter, claims, setorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, protocolos, pagination)
}

// Get godoc
// @Summary Get protocol with movement history
// @Tags Protocolos
// @Produce json
// @Param id path string true "Protocolo ID"
// @Success 200 {object} response.Envelope
// @Router /protocolos/{id} [get]
func (h *ProtocoloHandler) Get(c *gin.Context) {
	protocolo, movimentacoes, err := h.protocolos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"protocolo":     protocolo,
		"movimentacoes": movimentacoes,
	}, nil)
}

// ListMovimentacoes godoc
// @Summary List the movement history of a protocol
// @Tags Protocolos
// @Produce json
// @Param id path string true "Protocolo ID"
// @Success 200 {object} response.Envelope
// @Router /protocolos/{id}/movimentacoes [get]
func (h *ProtocoloHandler) ListMovimentacoes(c *gin.Context) {
	_, movimentacoes, err := h.protocolos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movimentacoes, nil)
}

// Create godoc
// @Summary Open a protocol on behalf of a requester
// @Tags Protocolos
// @Accept json
// @Produce json
// @Param payload body service.CreateProtocoloRequest true "Protocolo payload"
// @Success 201 {object} response.Envelope
// @Router /protocolos [post]
func (h *ProtocoloHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateProtocoloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	protocolo, err := h.protocolos.Create(c.Request.Context(), req, &claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ProtocoloAberto()
	response.Created(c, protocolo)
}

// Update godoc
// @Summary Edit protocol description and deadline
// @Tags Protocolos
// @Accept json
// @Produce json
// @Param id path string true "Protocolo ID"
// @Param payload body service.UpdateProtocoloRequest true "Protocolo payload"
// @Success 200 {object} response.Envelope
// @Router /protocolos/{id} [put]
func (h *ProtocoloHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateProtocoloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	protocolo, err := h.protocolos.Update(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, protocolo, nil)
}

// Tramitar godoc
// @Summary Route a protocol
// @Description Apply a status change, a transfer to another setor, a note, or any combination
// @Tags Protocolos
// @Accept json
// @Produce json
// @Param id path string true "Protocolo ID"
// @Param payload body service.TramitarRequest true "Routing payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /protocolos/{id}/tramitar [post]
func (h *ProtocoloHandler) Tramitar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.TramitarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	protocolo, err := h.protocolos.Tramitar(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, protocolo, nil)
}

// Delete godoc
// @Summary Remove a protocol and its history
// @Tags Protocolos
// @Produce json
// @Param id path string true "Protocolo ID"
// @Success 204 {object} response.Envelope
// @Router /protocolos/{id} [delete]
func (h *ProtocoloHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.protocolos.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Comprovante godoc
// @Summary Download the protocol receipt PDF
// @Tags Protocolos
// @Produce application/pdf
// @Param id path string true "Protocolo ID"
// @Success 200 {file} binary
// @Router /protocolos/{id}/comprovante [get]
func (h *ProtocoloHandler) Comprovante(c *gin.Context) {
	pdf, filename, err := h.protocolos.ComprovantePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ListAnexos godoc
// @Summary List protocol attachments with download tokens
// @Tags Protocolos
// @Produce json
// @Param id path string true "Protocolo ID"
// @Success 200 {object} response.Envelope
// @Router /protocolos/{id}/anexos [get]
func (h *ProtocoloHandler) ListAnexos(c *gin.Context) {
	anexos, err := h.anexos.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, anexos, nil)
}

// UploadAnexo godoc
// @Summary Attach a file to a protocol
// @Tags Protocolos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Protocolo ID"
// @Param arquivo formData file true "File"
// @Param movimentacao_id formData string false "Movement the file belongs to"
// @Success 201 {object} response.Envelope
// @Router /protocolos/{id}/anexos [post]
func (h *ProtocoloHandler) UploadAnexo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := c.FormFile("arquivo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "arquivo obrigatório"))
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "falha ao ler arquivo"))
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "falha ao ler arquivo"))
		return
	}

	var movimentacaoID *string
	if raw := c.PostForm("movimentacao_id"); raw != "" {
		movimentacaoID = &raw
	}

	anexo, err := h.anexos.Upload(c.Request.Context(), c.Param("id"), service.AnexoUpload{
		Filename: file.Filename,
		MimeType: file.Header.Get("Content-Type"),
		Data:     data,
	}, claims.UserID, movimentacaoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, anexo)
}

// DeleteAnexo godoc
// @Summary Remove an attachment
// @Tags Protocolos
// @Produce json
// @Param id path string true "Protocolo ID"
// @Param anexoId path string true "Anexo ID"
// @Success 204 {object} response.Envelope
// @Router /protocolos/{id}/anexos/{anexoId} [delete]
func (h *ProtocoloHandler) DeleteAnexo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.anexos.Delete(c.Request.Context(), c.Param("anexoId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadAnexo godoc
// @Summary Download an attachment via signed token
// @Tags Protocolos
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /anexos/download [get]
func (h *ProtocoloHandler) DownloadAnexo(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token obrigatório"))
		return
	}
	anexo, file, err := h.anexos.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", anexo.NomeArquivo))
	c.Header("Content-Type", anexo.MimeType)
	http.ServeContent(c.Writer, c.Request, anexo.NomeArquivo, anexo.CreatedAt, file)
}

// callerSetor resolves the setor of the authenticated USUARIO profile.
func (h *ProtocoloHandler) callerSetor(c *gin.Context, claims *models.JWTClaims) (*string, error) {
	if claims == nil || claims.Perfil != models.PerfilUsuario {
		return nil, nil
	}
	usuario, err := h.usuarios.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, err
	}
	return usuario.SetorID, nil
}
