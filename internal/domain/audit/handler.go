package audit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medxfer/medxfer/internal/platform/auth"
	"github.com/medxfer/medxfer/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Exact role: not even admin reads the ledger, only the oversight role.
	api.GET("/audit-logs", h.ListAuditLogs, auth.RequireExactRole(auth.RoleGovernment))
}

func (h *Handler) ListAuditLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
