package transfer

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	api.POST("/transfers", h.ExecuteBatch, auth.RequireRole(auth.RoleDoctor))
	api.GET("/transfers/inbox", h.ListInbox, auth.RequireRole(auth.RoleDoctor))
	api.POST("/transfers/inbox/:id/accept", h.Accept, auth.RequireRole(auth.RoleDoctor))
}

type executeBatchRequest struct {
	RecordIDs      []string `json:"record_ids"`
	TargetHospital string   `json:"target_hospital_name"`
}

func (h *Handler) ExecuteBatch(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req executeBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.TargetHospital == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "target_hospital_name is required")
	}

	ids := make([]uuid.UUID, 0, len(req.RecordIDs))
	for _, raw := range req.RecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid record id: "+raw)
		}
		ids = append(ids, id)
	}

	result, err := h.svc.ExecuteBatch(c.Request().Context(), ident, ids, req.TargetHospital)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListInbox(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.Inbox(c.Request().Context(), ident, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Accept(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid entry id")
	}

	accepted, err := h.svc.Accept(c.Request().Context(), ident, entryID)
	switch {
	case errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "inbox entry not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "entry belongs to another facility")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, accepted)
}
