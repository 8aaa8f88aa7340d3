package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/domain/prescription"
	"github.com/hms/hms/internal/platform/auth"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Stores are the services seeded records are written through, so seeded
// bills obey the same rules as bills created over the API.
type Stores struct {
	Admissions    *admission.Service
	Catalog       *catalog.Service
	Billing       *billing.Service
	Prescriptions *prescription.Service
}

// SeedResult summarises a load.
type SeedResult struct {
	Admissions int           `json:"admissions"`
	Services   int           `json:"services"`
	Bills      int           `json:"bills"`
	Payments   int           `json:"payments"`
	Checkups   int           `json:"checkups"`
	BillIDs    []uuid.UUID   `json:"bill_ids"`
	Duration   time.Duration `json:"duration"`
}

// Load builds the data set anchored at now and writes it through stores.
func Load(ctx context.Context, now time.Time, stores Stores) (*SeedResult, error) {
	return LoadDataset(ctx, Build(now), stores)
}

// LoadDataset writes ds through stores in dependency order.
func LoadDataset(ctx context.Context, ds *Dataset, stores Stores) (*SeedResult, error) {
	start := time.Now()
	result := &SeedResult{}

	admissionIDs := make([]uuid.UUID, len(ds.Admissions))
	for i := range ds.Admissions {
		p := ds.Admissions[i]
		if err := stores.Admissions.Admit(ctx, &p); err != nil {
			return nil, fmt.Errorf("admission %s: %w", p.MRNumber, err)
		}
		admissionIDs[i] = p.ID
		result.Admissions++
	}

	serviceIDs := make(map[string]uuid.UUID, len(ds.Services))
	for i := range ds.Services {
		e := ds.Services[i]
		if err := stores.Catalog.CreateEntry(ctx, &e); err != nil {
			return nil, fmt.Errorf("service %s: %w", e.Name, err)
		}
		serviceIDs[e.Name] = e.ID
		result.Services++
	}

	for i, seed := range ds.Bills {
		if seed.Admission < 0 || seed.Admission >= len(admissionIDs) {
			return nil, fmt.Errorf("bill %d: admission index %d out of range", i+1, seed.Admission)
		}
		generated := seed.GeneratedDate
		det, err := stores.Billing.CreateBill(ctx, billing.CreateBillInput{
			AdmissionID:     admissionIDs[seed.Admission],
			DiscountPercent: seed.DiscountPercent,
			GeneratedDate:   &generated,
			DischargeDate:   seed.DischargeDate,
		})
		if err != nil {
			return nil, fmt.Errorf("bill %d: %w", i+1, err)
		}
		for _, name := range seed.Services {
			id, ok := serviceIDs[name]
			if !ok {
				return nil, fmt.Errorf("bill %d: unknown service %q", i+1, name)
			}
			if _, err := stores.Billing.AddItem(ctx, det.Bill.ID, billing.ItemInput{CatalogID: &id, Quantity: 1}); err != nil {
				return nil, fmt.Errorf("bill %d: add %s: %w", i+1, name, err)
			}
		}
		for _, p := range seed.Payments {
			paidAt := p.PaidAt
			_, err := stores.Billing.RecordPayment(ctx, det.Bill.ID, billing.PaymentInput{
				Amount:     p.Amount,
				Method:     p.Method,
				Reference:  p.Reference,
				RecordedBy: "sandbox",
				PaidAt:     &paidAt,
			})
			if err != nil {
				return nil, fmt.Errorf("bill %d: payment: %w", i+1, err)
			}
			result.Payments++
		}
		result.Bills++
		result.BillIDs = append(result.BillIDs, det.Bill.ID)
	}

	for i := range ds.Checkups {
		c := ds.Checkups[i]
		c.Medicines = append([]prescription.Medicine(nil), c.Medicines...)
		if err := stores.Prescriptions.Create(ctx, &c); err != nil {
			return nil, fmt.Errorf("checkup %s: %w", c.MRNumber, err)
		}
		result.Checkups++
	}

	result.Duration = time.Since(start)
	zerolog.Ctx(ctx).Info().
		Int("admissions", result.Admissions).
		Int("services", result.Services).
		Int("bills", result.Bills).
		Int("payments", result.Payments).
		Int("checkups", result.Checkups).
		Dur("duration", result.Duration).
		Msg("demo data loaded")
	return result, nil
}

// ExportNDJSON writes every record of ds as one JSON object per line,
// tagged with its record type.
func ExportNDJSON(w io.Writer, ds *Dataset) error {
	enc := json.NewEncoder(w)
	write := func(kind string, v interface{}) error {
		if err := enc.Encode(map[string]interface{}{"type": kind, "record": v}); err != nil {
			return fmt.Errorf("encoding %s: %w", kind, err)
		}
		return nil
	}
	for _, r := range ds.Admissions {
		if err := write("admission", r); err != nil {
			return err
		}
	}
	for _, r := range ds.Services {
		if err := write("service", r); err != nil {
			return err
		}
	}
	for _, r := range ds.Bills {
		if err := write("bill", r); err != nil {
			return err
		}
	}
	for _, r := range ds.Checkups {
		if err := write("checkup", r); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// SeedHandler: Echo HTTP handlers
// ---------------------------------------------------------------------------

// SeedHandler lets an administrator load the demo data into a running
// server.
type SeedHandler struct {
	stores Stores
	clock  func() time.Time
	mu     sync.Mutex
}

func NewSeedHandler(stores Stores) *SeedHandler {
	return &SeedHandler{stores: stores, clock: time.Now}
}

func (h *SeedHandler) RegisterRoutes(g *echo.Group) {
	admin := g.Group("/sandbox", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/seed", h.handleSeed)
	admin.GET("/export/ndjson", h.handleExportNDJSON)
}

func (h *SeedHandler) handleSeed(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := Load(c.Request().Context(), h.clock(), h.stores)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SeedHandler) handleExportNDJSON(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)
	return ExportNDJSON(c.Response().Writer, Build(h.clock()))
}
