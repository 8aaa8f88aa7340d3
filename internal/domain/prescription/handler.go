package prescription

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/export"
	"github.com/hms/hms/internal/platform/validation"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc      *Service
	exporter *export.Exporter
}

func NewHandler(svc *Service, exporter *export.Exporter) *Handler {
	return &Handler{svc: svc, exporter: exporter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RolePharmacist, auth.RoleReception))
	read.GET("/prescriptions", h.List)
	read.GET("/prescriptions/:id", h.Get)
	read.GET("/prescriptions/:id/print", h.Print)
	read.GET("/prescriptions/:id/pdf", h.DownloadPDF)
	read.GET("/prescriptions/:id/share", h.Share)

	write := api.Group("", auth.RequireRole(auth.RoleDoctor))
	write.POST("/prescriptions", h.Create)
}

type medicineRequest struct {
	Name         string `json:"name" validate:"required"`
	Dosage       string `json:"dosage" validate:"required"`
	Frequency    string `json:"frequency" validate:"required"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type createRequest struct {
	PatientName  string            `json:"patient_name" validate:"required"`
	MRNumber     string            `json:"mr_number" validate:"required"`
	Age          int               `json:"age" validate:"gte=0,lte=150"`
	Gender       string            `json:"gender" validate:"omitempty,oneof=male female other"`
	Doctor       string            `json:"doctor" validate:"required"`
	Date         time.Time         `json:"date"`
	Diagnosis    string            `json:"diagnosis" validate:"required"`
	Symptoms     string            `json:"symptoms"`
	Medicines    []medicineRequest `json:"medicines" validate:"required,min=1,dive"`
	Advice       string            `json:"advice"`
	FollowUpDate *time.Time        `json:"follow_up_date"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	chk := &Checkup{
		PatientName:  req.PatientName,
		MRNumber:     req.MRNumber,
		Age:          req.Age,
		Gender:       Gender(req.Gender),
		Doctor:       req.Doctor,
		Date:         req.Date,
		Diagnosis:    req.Diagnosis,
		Symptoms:     req.Symptoms,
		Advice:       req.Advice,
		FollowUpDate: req.FollowUpDate,
	}
	for _, m := range req.Medicines {
		chk.Medicines = append(chk.Medicines, Medicine(m))
	}
	if err := h.svc.Create(c.Request().Context(), chk); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, chk)
}

func (h *Handler) load(c echo.Context) (*Checkup, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	chk, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "checkup not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return chk, nil
}

func (h *Handler) Get(c echo.Context) error {
	chk, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chk)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("mr_number"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func exportFailed(c echo.Context, chk *Checkup, format string, err error) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("checkup_id", chk.ID.String()).Str("format", format).Msg("prescription export failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
}

func (h *Handler) Print(c echo.Context) error {
	chk, err := h.load(c)
	if err != nil {
		return err
	}
	page, err := h.exporter.PrintHTML(chk.Document())
	if err != nil {
		return exportFailed(c, chk, "html", err)
	}
	return export.WritePrint(c, page)
}

func (h *Handler) DownloadPDF(c echo.Context) error {
	chk, err := h.load(c)
	if err != nil {
		return err
	}
	f, err := h.exporter.PDF(chk.Document())
	if err != nil {
		return exportFailed(c, chk, "pdf", err)
	}
	return export.WriteAttachment(c, f)
}

func (h *Handler) Share(c echo.Context) error {
	chk, err := h.load(c)
	if err != nil {
		return err
	}
	payload, err := h.exporter.Share(chk.Document())
	if err != nil {
		return exportFailed(c, chk, "share", err)
	}
	return c.JSON(http.StatusOK, payload)
}
