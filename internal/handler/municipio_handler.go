package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// MunicipioHandler exposes the municipality configuration endpoints.
type MunicipioHandler struct {
	municipio *service.MunicipioService
}

// NewMunicipioHandler constructs MunicipioHandler.
func NewMunicipioHandler(municipio *service.MunicipioService) *MunicipioHandler {
	return &MunicipioHandler{municipio: municipio}
}

// Get godoc
// @Summary Get municipality settings with theme tokens
// @Tags Municipio
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /municipio [get]
func (h *MunicipioHandler) Get(c *gin.Context) {
	view, err := h.municipio.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Update municipality settings
// @Tags Municipio
// @Accept json
// @Produce json
// @Param payload body service.MunicipioRequest true "Municipio payload"
// @Success 200 {object} response.Envelope
// @Router /municipio [put]
func (h *MunicipioHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.MunicipioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	view, err := h.municipio.Update(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UploadLogo godoc
// @Summary Upload municipality logo
// @Tags Municipio
// @Accept multipart/form-data
// @Produce json
// @Param logo formData file true "Logo image"
// @Success 200 {object} response.Envelope
// @Router /municipio/logo [post]
func (h *MunicipioHandler) UploadLogo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := c.FormFile("logo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "arquivo de logo obrigatório"))
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

	view, err := h.municipio.UpdateLogo(c.Request.Context(), file.Filename, data, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
