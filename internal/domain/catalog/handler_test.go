package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func TestHandler_CreateEntry(t *testing.T) {
	h := NewHandler(newTestService())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"category":"Procedures","name":"ECG","rate":"350.50"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.CreateEntry(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var got Entry
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if !got.Rate.Equal(decimal.RequireFromString("350.5")) {
		t.Errorf("expected rate 350.5, got %s", got.Rate)
	}
}

func TestHandler_CreateEntry_Invalid(t *testing.T) {
	h := NewHandler(newTestService())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ECG","rate":"-1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := h.CreateEntry(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_GetEntry(t *testing.T) {
	h := NewHandler(newTestService())
	entry := &Entry{Category: "Procedures", Name: "ECG", Rate: decimal.NewFromInt(350)}
	_ = h.svc.CreateEntry(context.Background(), entry)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(entry.ID.String())
	if err := h.GetEntry(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_ListEntries(t *testing.T) {
	h := NewHandler(newTestService())
	_ = h.svc.CreateEntry(context.Background(), &Entry{Category: "Procedures", Name: "ECG", Rate: decimal.NewFromInt(350)})
	_ = h.svc.CreateEntry(context.Background(), &Entry{Category: "Surgery", Name: "Hernia", Rate: decimal.NewFromInt(30000)})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?category=Surgery", nil), rec)
	if err := h.ListEntries(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 1 {
		t.Errorf("expected 1 surgery entry, got %d", resp.Total)
	}
}
