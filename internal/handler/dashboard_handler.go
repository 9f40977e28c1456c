package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-aberta/protocolo-api/internal/service"
	"github.com/prefeitura-aberta/protocolo-api/pkg/response"
)

// DashboardHandler exposes the management dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Resumo godoc
// @Summary Protocol dashboard summary
// @Description Totals, overdue count and breakdowns by status, secretaria and month
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Resumo(c *gin.Context) {
	resumo, err := h.dashboard.Resumo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resumo, nil)
}
