package billing

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/admission"
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
	// Read endpoints: billing desk and reception
	read := api.Group("", auth.RequireRole(auth.RoleBilling, auth.RoleReception))
	read.GET("/bills", h.ListBills)
	read.GET("/bills/export.xlsx", h.ExportRegister)
	read.GET("/bills/by-number/:number", h.GetBillByNumber)
	read.GET("/bills/:id", h.GetBill)
	read.GET("/bills/:id/summary", h.GetSummary)
	read.GET("/bills/:id/payment-draft", h.GetPaymentDraft)
	read.GET("/bills/:id/print", h.PrintBill)
	read.GET("/bills/:id/pdf", h.DownloadPDF)
	read.GET("/bills/:id/share", h.ShareBill)
	read.GET("/tariffs", h.ListTariffs)
	read.GET("/admissions/:id/default-items", h.PreviewDefaultItems)

	// Write endpoints: billing desk
	write := api.Group("", auth.RequireRole(auth.RoleBilling))
	write.POST("/bills", h.CreateBill)
	write.POST("/bills/:id/items", h.AddItem)
	write.DELETE("/bills/:id/items/:itemId", h.RemoveItem)
	write.POST("/bills/:id/payments", h.RecordPayment)
}

// httpError maps service errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, admission.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBillSettled), errors.Is(err, ErrBillLocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrOverpayment):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

type itemRequest struct {
	CatalogID   *uuid.UUID      `json:"catalog_id"`
	Category    string          `json:"category" validate:"required_without=CatalogID"`
	Description string          `json:"description" validate:"required_without=CatalogID"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate"`
}

func (r itemRequest) input() ItemInput {
	return ItemInput{
		CatalogID:   r.CatalogID,
		Category:    r.Category,
		Description: r.Description,
		Quantity:    r.Quantity,
		Rate:        r.Rate,
	}
}

type createBillRequest struct {
	AdmissionID     string          `json:"admission_id" validate:"required,uuid"`
	Items           []itemRequest   `json:"items" validate:"dive"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	GeneratedDate   *time.Time      `json:"generated_date"`
	DischargeDate   *time.Time      `json:"discharge_date"`
}

func (h *Handler) CreateBill(c echo.Context) error {
	var req createBillRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	in := CreateBillInput{
		AdmissionID:     uuid.MustParse(req.AdmissionID),
		DiscountPercent: req.DiscountPercent,
		GeneratedDate:   req.GeneratedDate,
		DischargeDate:   req.DischargeDate,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, it.input())
	}
	d, err := h.svc.CreateBill(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetBill(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetBillByNumber(c echo.Context) error {
	d, err := h.svc.GetBillByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func filterFromQuery(c echo.Context) Filter {
	return Filter{
		Status:    Status(c.QueryParam("status")),
		PatientID: c.QueryParam("patient_id"),
		Query:     c.QueryParam("q"),
	}
}

func (h *Handler) ListBills(c echo.Context) error {
	pg := pagination.FromContext(c)
	bills, total, err := h.svc.ListBills(c.Request().Context(), filterFromQuery(c), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(bills, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetSummary(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	sum, err := h.svc.Summary(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) AddItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req itemRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	d, err := h.svc.AddItem(c.Request().Context(), id, req.input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) RemoveItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}
	d, err := h.svc.RemoveItem(c.Request().Context(), id, itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) GetPaymentDraft(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	draft, err := h.svc.PaymentDraft(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, draft)
}

type paymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,oneof=cash card upi insurance bank_transfer"`
	Reference string          `json:"reference" validate:"max=64"`
	PaidAt    *time.Time      `json:"paid_at"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	d, err := h.svc.RecordPayment(ctx, id, PaymentInput{
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		RecordedBy: auth.UserIDFromContext(ctx),
		PaidAt:     req.PaidAt,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) document(c echo.Context) (*export.Document, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	d, err := h.svc.GetBill(c.Request().Context(), id)
	if err != nil {
		return nil, httpError(err)
	}
	return d.Document(), nil
}

func exportFailed(c echo.Context, doc *export.Document, format string, err error) error {
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("bill_id", doc.ID).Str("format", format).Msg("bill export failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
}

func (h *Handler) PrintBill(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	page, err := h.exporter.PrintHTML(doc)
	if err != nil {
		return exportFailed(c, doc, "html", err)
	}
	return export.WritePrint(c, page)
}

func (h *Handler) DownloadPDF(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	f, err := h.exporter.PDF(doc)
	if err != nil {
		return exportFailed(c, doc, "pdf", err)
	}
	return export.WriteAttachment(c, f)
}

func (h *Handler) ShareBill(c echo.Context) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	payload, err := h.exporter.Share(doc)
	if err != nil {
		return exportFailed(c, doc, "share", err)
	}
	return c.JSON(http.StatusOK, payload)
}

// ExportRegister downloads every bill matching the list filters as a
// spreadsheet.
func (h *Handler) ExportRegister(c echo.Context) error {
	ctx := c.Request().Context()
	f := filterFromQuery(c)
	var all []*Bill
	for offset := 0; ; offset += pagination.MaxLimit {
		page, total, err := h.svc.ListBills(ctx, f, pagination.MaxLimit, offset)
		if err != nil {
			return httpError(err)
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
	}
	data, err := h.exporter.Workbook(RegisterSheet(all))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("format", "xlsx").Msg("bill register export failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
	}
	return export.WriteAttachment(c, &export.File{
		Name:        "bill-register-" + h.svc.clock().Format("20060102") + ".xlsx",
		ContentType: export.XLSXContentType,
		Data:        data,
	})
}

func (h *Handler) ListTariffs(c echo.Context) error {
	return c.JSON(http.StatusOK, Tariffs())
}

func (h *Handler) PreviewDefaultItems(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	preview, err := h.svc.PreviewDefaultItems(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, preview)
}
