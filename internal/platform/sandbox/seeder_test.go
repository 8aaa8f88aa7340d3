package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/domain/prescription"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/sequence"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStores() Stores {
	clock := func() time.Time { return testNow }
	adm := admission.NewService(admission.NewMemoryRepo())
	adm.SetClock(clock)
	cat := catalog.NewService(catalog.NewMemoryRepo())
	bills := billing.NewMemoryStore()
	bsvc := billing.NewService(bills, bills, adm, cat, sequence.NewCounter(10001))
	bsvc.SetClock(clock)
	rx := prescription.NewService(prescription.NewMemoryRepo(), sequence.NewCounter(1))
	rx.SetClock(clock)
	return Stores{Admissions: adm, Catalog: cat, Billing: bsvc, Prescriptions: rx}
}

func TestBuild_IsStable(t *testing.T) {
	a, b := Build(testNow), Build(testNow)
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if !bytes.Equal(ja, jb) {
		t.Error("expected identical data sets for the same anchor")
	}
	if len(a.Admissions) != 5 || len(a.Services) != 12 || len(a.Bills) != 4 || len(a.Checkups) != 2 {
		t.Errorf("unexpected sizes: %d admissions, %d services, %d bills, %d checkups",
			len(a.Admissions), len(a.Services), len(a.Bills), len(a.Checkups))
	}
}

func TestBuild_DatesRelativeToNow(t *testing.T) {
	ds := Build(testNow)
	for _, p := range ds.Admissions {
		if !p.AdmissionDate.Before(testNow) {
			t.Errorf("%s admitted in the future", p.PatientName)
		}
	}
	if got := billing.DaysAdmitted(ds.Admissions[0].AdmissionDate, testNow); got != 3 {
		t.Errorf("expected 3 days for the general ward patient, got %d", got)
	}
	later := Build(testNow.Add(48 * time.Hour))
	if !later.Admissions[0].AdmissionDate.Equal(ds.Admissions[0].AdmissionDate.Add(48 * time.Hour)) {
		t.Error("expected admission dates to move with the anchor")
	}
}

func TestLoad(t *testing.T) {
	stores := newTestStores()
	ctx := context.Background()

	result, err := Load(ctx, testNow, stores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Admissions != 5 || result.Services != 12 || result.Bills != 4 || result.Payments != 4 || result.Checkups != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	wantStatus := []billing.Status{billing.StatusPaid, billing.StatusPartial, billing.StatusPending, billing.StatusPartial}
	for i, id := range result.BillIDs {
		det, err := stores.Billing.GetBill(ctx, id)
		if err != nil {
			t.Fatalf("bill %d: %v", i, err)
		}
		if det.Bill.Status != wantStatus[i] {
			t.Errorf("bill %d: expected %s, got %s", i, wantStatus[i], det.Bill.Status)
		}
		if det.Bill.Status != det.Summary.Status {
			t.Errorf("bill %d: stored status %s disagrees with derived %s", i, det.Bill.Status, det.Summary.Status)
		}
		if !det.Bill.TotalAmount.Equal(det.Summary.Subtotal) {
			t.Errorf("bill %d: stored total %s disagrees with items %s", i, det.Bill.TotalAmount, det.Summary.Subtotal)
		}
	}

	first, _ := stores.Billing.GetBill(ctx, result.BillIDs[0])
	if first.Bill.TotalAmount.String() != "7300" {
		t.Errorf("expected the general ward bill to total 7300, got %s", first.Bill.TotalAmount)
	}
	icu, _ := stores.Billing.GetBill(ctx, result.BillIDs[1])
	if len(icu.Items) != 6 || icu.Items[4].Description != "ECG" {
		t.Errorf("expected defaults plus catalog services on the ICU bill, got %d items", len(icu.Items))
	}

	_, total, _ := stores.Prescriptions.List(ctx, "", 10, 0)
	if total != 2 {
		t.Errorf("expected 2 checkups, got %d", total)
	}
}

func TestLoadDataset_UnknownService(t *testing.T) {
	ds := Build(testNow)
	ds.Bills[0].Services = []string{"Teleportation"}
	if _, err := LoadDataset(context.Background(), ds, newTestStores()); err == nil {
		t.Error("expected error for unknown catalog service")
	}
}

func TestLoadDataset_BadAdmissionIndex(t *testing.T) {
	ds := Build(testNow)
	ds.Bills[0].Admission = 99
	if _, err := LoadDataset(context.Background(), ds, newTestStores()); err == nil {
		t.Error("expected error for out of range admission")
	}
}

func TestExportNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportNDJSON(&buf, Build(testNow)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := map[string]int{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var line struct {
			Type   string          `json:"type"`
			Record json.RawMessage `json:"record"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("invalid line %q: %v", sc.Text(), err)
		}
		counts[line.Type]++
	}
	if counts["admission"] != 5 || counts["service"] != 12 || counts["bill"] != 4 || counts["checkup"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func setupTestEcho(role string) (*echo.Echo, *SeedHandler) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithUser(c.Request().Context(), "u1", []string{role})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	h := NewSeedHandler(newTestStores())
	h.clock = func() time.Time { return testNow }
	h.RegisterRoutes(e.Group("/api/v1"))
	return e, h
}

func TestSeedHandler_Seed(t *testing.T) {
	e, _ := setupTestEcho(auth.RoleAdmin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sandbox/seed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result SeedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Bills != 4 {
		t.Errorf("expected 4 bills, got %d", result.Bills)
	}
}

func TestSeedHandler_RequiresAdmin(t *testing.T) {
	e, _ := setupTestEcho(auth.RoleBilling)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sandbox/seed", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestSeedHandler_ExportNDJSON(t *testing.T) {
	e, _ := setupTestEcho(auth.RoleAdmin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sandbox/export/ndjson", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/x-ndjson" {
		t.Errorf("unexpected content type %q", ct)
	}
	if lines := bytes.Count(rec.Body.Bytes(), []byte("\n")); lines != 23 {
		t.Errorf("expected 23 records, got %d", lines)
	}
}
