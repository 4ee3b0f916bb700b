package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formdesk/dashboard-gateway/internal/core/ports"
)

type DashboardHandler struct {
	dashboard ports.DashboardAPI
}

func NewDashboardHandler(dashboard ports.DashboardAPI) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Completion proxies the aggregated completion figures for the landing view.
func (h *DashboardHandler) Completion(c echo.Context) error {
	raw, err := h.dashboard.Completion(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}
