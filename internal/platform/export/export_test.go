package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func newTestExporter() *Exporter {
	return NewExporter("hms.example.org", "")
}

func sampleBill() *Document {
	return &Document{
		Kind:        KindBill,
		ID:          "4b1c2d3e-0000-4000-8000-000000000001",
		Number:      "IPD-B-10001",
		PatientName: "Rajesh Kumar",
		MRNumber:    "MR001",
		GeneratedAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Fields: []Field{
			{Key: "ward", Label: "Ward", Value: "General Ward"},
			{Key: "room_bed", Label: "Room/Bed", Value: "101 / A"},
			{Key: "doctor", Label: "Doctor", Value: "Dr. Sharma"},
		},
		Table: Table{
			Columns: []string{"Category", "Description", "Qty", "Rate", "Amount"},
			Numeric: map[int]bool{2: true, 3: true, 4: true},
			Rows: [][]string{
				{"Room Charges", "General Ward - Room 101", "3", "₹1,000.00", "₹3,000.00"},
				{"Medications", "Basic Medication Package", "1", "₹1,000.00", "₹1,000.00"},
			},
		},
		Summary: []SummaryLine{
			{Key: "subtotal", Label: "Subtotal", Amount: decimal.NewFromInt(10000)},
			{Key: "discount", Label: "Discount (10%)", Amount: decimal.NewFromInt(1000)},
			{Key: "total", Label: "Total", Amount: decimal.NewFromInt(9000), Strong: true},
			{Key: "paid", Label: "Paid", Amount: decimal.RequireFromString("2500.5")},
			{Key: "balance", Label: "Balance Due", Amount: decimal.RequireFromString("6499.5"), Strong: true},
		},
	}
}

func samplePrescription() *Document {
	return &Document{
		Kind:        KindPrescription,
		ID:          "CHK-7",
		Number:      "RX-0007",
		PatientName: "Priya Patel",
		MRNumber:    "MR002",
		GeneratedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Table: Table{
			Title:   "Medicines",
			Columns: []string{"Medicine", "Dosage", "Frequency", "Duration"},
			Rows:    [][]string{{"Paracetamol", "500mg", "1-0-1", "5 days"}},
		},
		Notes: []Field{{Key: "advice", Label: "Advice", Value: "Rest and fluids"}},
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7300", "₹7,300.00"},
		{"0", "₹0.00"},
		{"1000.5", "₹1,000.50"},
		{"999.999", "₹1,000.00"},
		{"-1250.5", "-₹1,250.50"},
		{"26600", "₹26,600.00"},
		{"12.345", "₹12.35"},
	}
	for _, tt := range tests {
		if got := FormatINR(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatINR(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"₹7,300.00", "7300"},
		{" -₹1,250.50 ", "-1250.5"},
		{"Rs. 9,000.00", "9000"},
		{"42", "42"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseAmount("₹abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestDocument_Naming(t *testing.T) {
	bill := sampleBill()
	if bill.FileName() != "IPD_Bill_IPD-B-10001.pdf" {
		t.Errorf("unexpected bill file name %s", bill.FileName())
	}
	if bill.RootID() != "billing-content" {
		t.Errorf("unexpected bill root id %s", bill.RootID())
	}
	rx := samplePrescription()
	if rx.FileName() != "prescription-CHK-7.pdf" {
		t.Errorf("unexpected prescription file name %s", rx.FileName())
	}
	if rx.RootID() != "prescription-content" {
		t.Errorf("unexpected prescription root id %s", rx.RootID())
	}
}

func TestPrintHTML(t *testing.T) {
	page, err := newTestExporter().PrintHTML(sampleBill())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	html := string(page)
	for _, want := range []string{
		`id="billing-content"`,
		`window.print()`,
		`data-field="subtotal"`,
		`₹3,000.00`,
		`Hospital Management System`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected print html to contain %q", want)
		}
	}
}

func TestPrintHTML_EscapesValues(t *testing.T) {
	doc := sampleBill()
	doc.PatientName = `<script>alert(1)</script>`
	page, err := newTestExporter().PrintHTML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(page), "<script>alert(1)") {
		t.Error("expected patient name to be escaped")
	}
}

func TestPrintHTML_RoundTrip(t *testing.T) {
	doc := sampleBill()
	page, err := newTestExporter().PrintHTML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ParseSummary(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(doc.Summary) {
		t.Fatalf("expected %d summary values, got %d", len(doc.Summary), len(got))
	}
	for _, s := range doc.Summary {
		if !got[s.Key].Equal(s.Amount.Round(2)) {
			t.Errorf("%s: parsed %s, want %s", s.Key, got[s.Key], s.Amount.Round(2))
		}
	}
}

func TestParseFields(t *testing.T) {
	page, _ := newTestExporter().PrintHTML(sampleBill())
	fields, err := ParseFields(page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"number":       "IPD-B-10001",
		"patient_name": "Rajesh Kumar",
		"mr_number":    "MR001",
		"ward":         "General Ward",
		"doctor":       "Dr. Sharma",
		"generated_at": "10 Mar 2024",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, fields[k], v)
		}
	}
}

func TestPrintHTML_Prescription(t *testing.T) {
	page, err := newTestExporter().PrintHTML(samplePrescription())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields, _ := ParseFields(page)
	if fields["advice"] != "Rest and fluids" {
		t.Errorf("expected advice note, got %q", fields["advice"])
	}
	if !strings.Contains(string(page), `id="prescription-content"`) {
		t.Error("expected prescription root id")
	}
}

func TestPDF(t *testing.T) {
	f, err := newTestExporter().PDF(sampleBill())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "IPD_Bill_IPD-B-10001.pdf" || f.ContentType != "application/pdf" {
		t.Errorf("unexpected file metadata %s %s", f.Name, f.ContentType)
	}
	if !bytes.HasPrefix(f.Data, []byte("%PDF-")) {
		t.Error("expected PDF header")
	}
}

func TestPDF_LongTable(t *testing.T) {
	doc := sampleBill()
	for i := 0; i < 120; i++ {
		doc.Table.Rows = append(doc.Table.Rows, []string{"Procedures", "Dressing", "1", "₹200.00", "₹200.00"})
	}
	ex := newTestExporter()
	if y := ex.layoutPDF(doc, a4Height).GetY(); y <= a4Height {
		t.Fatalf("expected 120 rows to overflow A4, content ends at %.1fmm", y)
	}
	f, err := ex.PDF(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(f.Data, []byte("%PDF-")) {
		t.Error("expected PDF header")
	}
	if n := bytes.Count(f.Data, []byte("<</Type /Page\n")); n != 1 {
		t.Errorf("expected a single stretched page, got %d pages", n)
	}
}

func TestPDF_ShortDocumentFitsA4(t *testing.T) {
	if y := newTestExporter().layoutPDF(sampleBill(), a4Height).GetY(); y+pdfMargin > a4Height {
		t.Errorf("expected sample bill to fit on A4, content ends at %.1fmm", y)
	}
	f, err := newTestExporter().PDF(sampleBill())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := bytes.Count(f.Data, []byte("<</Type /Page\n")); n != 1 {
		t.Errorf("expected one page, got %d", n)
	}
}

func TestPNG(t *testing.T) {
	data, err := newTestExporter().PNG(sampleBill())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() < pngMinWidth {
		t.Errorf("expected width >= %d, got %d", pngMinWidth, img.Bounds().Dx())
	}
}

func TestTextLines_ReplacesRupee(t *testing.T) {
	for _, l := range textLines(sampleBill(), DefaultHospitalName) {
		if strings.Contains(l, RupeeSymbol) {
			t.Fatalf("line still contains rupee glyph: %q", l)
		}
	}
}

func TestShare(t *testing.T) {
	p, err := newTestExporter().Share(sampleBill())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "IPD Bill - IPD-B-10001" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if p.Text != "Bill for Rajesh Kumar (MR001)" {
		t.Errorf("unexpected text %q", p.Text)
	}
	if p.URL != "https://hms.example.org/bills/4b1c2d3e-0000-4000-8000-000000000001" {
		t.Errorf("unexpected url %q", p.URL)
	}
	if p.File == nil || p.File.ContentType != "image/png" || p.File.Name != "IPD_Bill_IPD-B-10001.png" {
		t.Errorf("unexpected attachment %+v", p.File)
	}
}

func TestShare_Prescription(t *testing.T) {
	p, err := newTestExporter().Share(samplePrescription())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Prescription - RX-0007" || p.Text != "Prescription for Priya Patel (MR002)" {
		t.Errorf("unexpected payload %q / %q", p.Title, p.Text)
	}
	if !strings.HasSuffix(p.URL, "/prescriptions/CHK-7") {
		t.Errorf("unexpected url %q", p.URL)
	}
}

func TestWorkbook(t *testing.T) {
	data, err := newTestExporter().Workbook(Sheet{
		Name:    "Bills",
		Columns: []string{"Bill Number", "Patient", "Total"},
		Widths:  []float64{16, 24, 12},
		Rows: [][]interface{}{
			{"IPD-B-10001", "Rajesh Kumar", 7300.0},
			{"IPD-B-10002", "Priya Patel", 26600.0},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Bills" {
		t.Fatalf("expected only the Bills sheet, got %v", sheets)
	}
	rows, err := f.GetRows("Bills")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Bill Number" || rows[2][1] != "Priya Patel" || rows[2][2] != "26600" {
		t.Errorf("unexpected rows %v", rows)
	}
}
