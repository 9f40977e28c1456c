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

// UsuarioHandler exposes staff account endpoints.
type UsuarioHandler struct {
	usuarios *service.UsuarioService
}

// NewUsuarioHandler constructs UsuarioHandler.
func NewUsuarioHandler(usuarios *service.UsuarioService) *UsuarioHandler {
	return &UsuarioHandler{usuarios: usuarios}
}

// List godoc
// @Summary List staff accounts
// @Tags Usuarios
// @Produce json
// @Param search query string false "Search by name or e-mail"
// @Param perfil query string false "Filter by profile"
// @Param setor_id query string false "Filter by setor"
// @Param ativo query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /usuarios [get]
func (h *UsuarioHandler) List(c *gin.Context) {
	var filter models.UsuarioFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.SetorID = c.Query("setor_id")
	if perfil := c.Query("perfil"); perfil != "" {
		p := models.Perfil(perfil)
		filter.Perfil = &p
	}
	if ativo := c.Query("ativo"); ativo != "" {
		v := ativo == "true"
		filter.Ativo = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	usuarios, pagination, err := h.usuarios.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usuarios, pagination)
}

// Get godoc
// @Summary Get staff account
// @Tags Usuarios
// @Produce json
// @Param id path string true "Usuario ID"
// @Success 200 {object} response.Envelope
// @Router /usuarios/{id} [get]
func (h *UsuarioHandler) Get(c *gin.Context) {
	usuario, err := h.usuarios.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usuario, nil)
}

// Create godoc
// @Summary Create staff account
// @Tags Usuarios
// @Accept json
// @Produce json
// @Param payload body service.CreateUsuarioRequest true "Usuario payload"
// @Success 201 {object} response.Envelope
// @Router /usuarios [post]
func (h *UsuarioHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	usuario, err := h.usuarios.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, usuario)
}

// Update godoc
// @Summary Update staff account
// @Tags Usuarios
// @Accept json
// @Produce json
// @Param id path string true "Usuario ID"
// @Param payload body service.UpdateUsuarioRequest true "Usuario payload"
// @Success 200 {object} response.Envelope
// @Router /usuarios/{id} [put]
func (h *UsuarioHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	usuario, err := h.usuarios.Update(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usuario, nil)
}

// UpdateMe godoc
// @Summary Update the calling account's name and e-mail
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.PerfilProprioRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /auth/me [put]
func (h *UsuarioHandler) UpdateMe(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PerfilProprioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	usuario, err := h.usuarios.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, usuario, nil)
}

// Deactivate godoc
// @Summary Deactivate staff account
// @Tags Usuarios
// @Produce json
// @Param id path string true "Usuario ID"
// @Success 204 {object} response.Envelope
// @Router /usuarios/{id} [delete]
func (h *UsuarioHandler) Deactivate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.usuarios.Deactivate(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
