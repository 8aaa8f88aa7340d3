package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/validation"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleBilling, auth.RoleReception, auth.RoleDoctor))
	read.GET("/services", h.ListEntries)
	read.GET("/services/:id", h.GetEntry)

	write := api.Group("", auth.RequireRole(auth.RoleBilling))
	write.POST("/services", h.CreateEntry)
}

type createEntryRequest struct {
	Category    string          `json:"category" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description"`
}

func (h *Handler) CreateEntry(c echo.Context) error {
	var req createEntryRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	e := &Entry{Category: req.Category, Name: req.Name, Rate: req.Rate, Description: req.Description}
	if err := h.svc.CreateEntry(c.Request().Context(), e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEntry(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListEntries(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListEntries(c.Request().Context(), c.QueryParam("category"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
