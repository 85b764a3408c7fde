package record

import (
	"errors"
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
	api.POST("/records", h.CreateRecord, auth.RequireRole(auth.RoleDoctor))
	api.GET("/records/mine", h.ListMine, auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
}

type createRecordRequest struct {
	PatientIdentifier string  `json:"patient_identifier"`
	Diagnosis         string  `json:"diagnosis"`
	Prescription      string  `json:"prescription"`
	Notes             *string `json:"notes,omitempty"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	view, err := h.svc.CreateRecord(c.Request().Context(), ident, req.PatientIdentifier, Clinical{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			return echo.NewHTTPError(http.StatusForbidden, "only doctors can create records")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *Handler) ListMine(c echo.Context) error {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	pg := pagination.FromContext(c)
	views, total, err := h.svc.ListMine(c.Request().Context(), ident, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}
