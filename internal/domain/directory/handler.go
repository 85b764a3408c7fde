package directory

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
	api.GET("/hospitals", h.ListHospitals)
	api.POST("/hospitals", h.RegisterHospital, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) RegisterHospital(c echo.Context) error {
	var hosp Hospital
	if err := c.Bind(&hosp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.RegisterHospital(c.Request().Context(), &hosp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, hosp)
}

func (h *Handler) ListHospitals(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListHospitals(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
