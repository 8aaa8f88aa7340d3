package prescription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/sequence"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestService() *Service {
	svc := NewService(NewMemoryRepo(), sequence.NewCounter(1))
	svc.SetClock(func() time.Time { return testNow })
	return svc
}

func validCheckup() *Checkup {
	follow := testNow.AddDate(0, 0, 7)
	return &Checkup{
		PatientName: "Priya Patel",
		MRNumber:    "MR002",
		Age:         34,
		Gender:      "Female",
		Doctor:      "Dr. Mehta",
		Diagnosis:   "Viral fever",
		Symptoms:    "Fever, body ache",
		Medicines: []Medicine{
			{Name: "Paracetamol", Dosage: "500mg", Frequency: "1-0-1", Duration: "5 days", Instructions: "After food"},
			{Name: "ORS", Dosage: "1 sachet", Frequency: "as needed", Duration: "3 days"},
		},
		Advice:       "Rest and fluids",
		FollowUpDate: &follow,
	}
}

func TestCreate(t *testing.T) {
	svc := newTestService()
	c := validCheckup()
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if c.Number != "RX-0001" {
		t.Errorf("expected RX-0001, got %s", c.Number)
	}
	if !c.Date.Equal(testNow) {
		t.Errorf("expected date defaulted to now, got %v", c.Date)
	}
	if c.Gender != GenderFemale {
		t.Errorf("expected normalized gender, got %q", c.Gender)
	}

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Medicines) != 2 || got.Medicines[0].Name != "Paracetamol" {
		t.Errorf("unexpected medicines %+v", got.Medicines)
	}
}

func TestCreate_Validation(t *testing.T) {
	past := testNow.AddDate(0, 0, -1)
	tests := []struct {
		name   string
		mutate func(c *Checkup)
	}{
		{"no patient", func(c *Checkup) { c.PatientName = " " }},
		{"no mr", func(c *Checkup) { c.MRNumber = "" }},
		{"no doctor", func(c *Checkup) { c.Doctor = "" }},
		{"no diagnosis", func(c *Checkup) { c.Diagnosis = "" }},
		{"negative age", func(c *Checkup) { c.Age = -1 }},
		{"bad gender", func(c *Checkup) { c.Gender = "x" }},
		{"no medicines", func(c *Checkup) { c.Medicines = nil }},
		{"unnamed medicine", func(c *Checkup) { c.Medicines[1].Name = "" }},
		{"no dosage", func(c *Checkup) { c.Medicines[0].Dosage = "" }},
		{"follow-up in past", func(c *Checkup) { c.FollowUpDate = &past }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCheckup()
			tt.mutate(c)
			if err := newTestService().Create(context.Background(), c); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	if _, err := newTestService().Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for i, mr := range []string{"MR002", "MR003", "MR002"} {
		c := validCheckup()
		c.MRNumber = mr
		c.Date = testNow.AddDate(0, 0, -i)
		if err := svc.Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, total, err := svc.List(ctx, "MR002", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 checkups for MR002, got %d", total)
	}
	if !items[0].Date.After(items[1].Date) {
		t.Error("expected newest first")
	}

	_, total, _ = svc.List(ctx, "", 1, 0)
	if total != 3 {
		t.Errorf("expected 3 in total, got %d", total)
	}
}

func TestDocument(t *testing.T) {
	svc := newTestService()
	c := validCheckup()
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	doc := c.Document()
	if doc.FileName() != "prescription-"+c.ID.String()+".pdf" {
		t.Errorf("unexpected file name %s", doc.FileName())
	}
	if doc.Title() != "Prescription - RX-0001" {
		t.Errorf("unexpected title %s", doc.Title())
	}
	if len(doc.Table.Rows) != 2 || doc.Table.Rows[0][4] != "After food" {
		t.Errorf("unexpected rows %v", doc.Table.Rows)
	}
	if len(doc.Summary) != 0 {
		t.Error("prescriptions carry no money summary")
	}
	var gender, follow string
	for _, f := range doc.Fields {
		if f.Key == "gender" {
			gender = f.Value
		}
	}
	for _, n := range doc.Notes {
		if n.Key == "follow_up_date" {
			follow = n.Value
		}
	}
	if gender != "Female" || follow != "17 Mar 2024" {
		t.Errorf("unexpected gender %q follow-up %q", gender, follow)
	}
}

type repeatNumbers struct{ ns []int64 }

func (r *repeatNumbers) Next(context.Context) (int64, error) {
	n := r.ns[0]
	if len(r.ns) > 1 {
		r.ns = r.ns[1:]
	}
	return n, nil
}

func TestCreate_RetriesTakenNumber(t *testing.T) {
	svc := NewService(NewMemoryRepo(), &repeatNumbers{ns: []int64{5, 5, 6}})
	svc.SetClock(func() time.Time { return testNow })
	first, second := validCheckup(), validCheckup()
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Number != "RX-0005" || second.Number != "RX-0006" {
		t.Errorf("expected RX-0005 and RX-0006, got %s and %s", first.Number, second.Number)
	}

	stuck := NewService(NewMemoryRepo(), &repeatNumbers{ns: []int64{9}})
	stuck.SetClock(func() time.Time { return testNow })
	if err := stuck.Create(context.Background(), validCheckup()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := stuck.Create(context.Background(), validCheckup()); err == nil {
		t.Error("expected error once every candidate number is taken")
	}
}
