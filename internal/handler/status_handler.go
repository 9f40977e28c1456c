package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	appErrors "github.com/prefeitura-aberta/protocolo-api/pkg/errors"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// StatusHandler exposes the status catalog endpoints.
type StatusHandler struct {
	statuses *service.StatusService
}

// NewStatusHandler constructs StatusHandler.
func NewStatusHandler(statuses *service.StatusService) *StatusHandler {
	return &StatusHandler{statuses: statuses}
}

// List godoc
// @Summary List protocol statuses ordered by ordem
// @Tags Status
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /status [get]
func (h *StatusHandler) List(c *gin.Context) {
	statuses, err := h.statuses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses, nil)
}

// Get godoc
// @Summary Get status
// @Tags Status
// @Produce json
// @Param id path string true "Status ID"
// @Success 200 {object} response.Envelope
// @Router /status/{id} [get]
func (h *StatusHandler) Get(c *gin.Context) {
	status, err := h.statuses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Create godoc
// @Summary Create status
// @Tags Status
// @Accept json
// @Produce json
// @Param payload body service.StatusRequest true "Status payload"
// @Success 201 {object} response.Envelope
// @Router /status [post]
func (h *StatusHandler) Create(c *gin.Context) {
	var req service.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	status, err := h.statuses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, status)
}

// Update godoc
// @Summary Update status
// @Tags Status
// @Accept json
// @Produce json
// @Param id path string true "Status ID"
// @Param payload body service.StatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /status/{id} [put]
func (h *StatusHandler) Update(c *gin.Context) {
	var req service.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload inválido"))
		return
	}
	status, err := h.statuses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Delete godoc
// @Summary Delete unused status
// @Tags Status
// @Produce json
// @Param id path string true "Status ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /status/{id} [delete]
func (h *StatusHandler) Delete(c *gin.Context) {
	if err := h.statuses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
