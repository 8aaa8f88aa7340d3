package admission

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	read.GET("/admissions", h.ListAdmissions)
	read.GET("/admissions/:id", h.GetAdmission)

	write := api.Group("", auth.RequireRole(auth.RoleReception))
	write.POST("/admissions", h.Admit)
}

type admitRequest struct {
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name" validate:"required"`
	MRNumber        string    `json:"mr_number" validate:"required"`
	WardName        string    `json:"ward_name" validate:"required"`
	WardTier        string    `json:"ward_tier" validate:"omitempty,oneof=icu surgical private pediatric general"`
	RoomNumber      string    `json:"room_number"`
	BedNumber       string    `json:"bed_number"`
	AdmissionDate   time.Time `json:"admission_date" validate:"required"`
	AttendingDoctor string    `json:"attending_doctor" validate:"required"`
}

func (h *Handler) Admit(c echo.Context) error {
	var req admitRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	p := &Patient{
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		MRNumber:        req.MRNumber,
		WardName:        req.WardName,
		RoomNumber:      req.RoomNumber,
		BedNumber:       req.BedNumber,
		AdmissionDate:   req.AdmissionDate,
		AttendingDoctor: req.AttendingDoctor,
	}
	if req.WardTier != "" {
		t := WardTier(req.WardTier)
		p.WardTier = &t
	}
	if err := h.svc.Admit(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetAdmission(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAdmissions(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
