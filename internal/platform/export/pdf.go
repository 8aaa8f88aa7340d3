package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	a4Width       = 210.0
	a4Height      = 297.0
	pdfMargin     = 15.0
	pdfLineHeight = 6.0
)

// File is a rendered binary artifact ready for download.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// PDF renders the document on one A4-wide page. Content taller than A4
// stretches the page rather than breaking onto a second one.
func (e *Exporter) PDF(doc *Document) (*File, error) {
	pdf := e.layoutPDF(doc, a4Height)
	if need := pdf.GetY() + pdfMargin; need > a4Height {
		pdf = e.layoutPDF(doc, need)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf %s: %w", doc.Number, err)
	}
	return &File{Name: doc.FileName(), ContentType: "application/pdf", Data: buf.Bytes()}, nil
}

// layoutPDF draws doc on a single page of the given height. The cursor is
// left below the last line so callers can measure the content.
func (e *Exporter) layoutPDF(doc *Document, height float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: a4Width, Ht: height},
	})
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(doc.Title(), true)
	pdf.SetCreator(e.hospital, true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetCatalogSort(true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	txt := func(s string) string { return tr(asciiAmount(s)) }

	pdf.AddPage()
	contentW := a4Width - 2*pdfMargin

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, txt(doc.Title()), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(contentW, pdfLineHeight, txt(e.hospital), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	header := append([]Field{
		{Label: "Number", Value: doc.Number},
		{Label: "Date", Value: doc.GeneratedAt.Format("02 Jan 2006")},
		{Label: "Patient", Value: doc.PatientName},
		{Label: "MR Number", Value: doc.MRNumber},
	}, doc.Fields...)
	half := contentW / 2
	for i, f := range header {
		ln := 0
		if i%2 == 1 || i == len(header)-1 {
			ln = 1
		}
		pdf.CellFormat(half, pdfLineHeight, txt(f.Label+": "+f.Value), "", ln, "L", false, 0, "")
	}
	pdf.Ln(3)

	if t := doc.Table; len(t.Columns) > 0 {
		if t.Title != "" {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(contentW, 8, txt(t.Title), "", 1, "L", false, 0, "")
		}
		widths := columnWidths(t, contentW)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(242, 245, 249)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], 7, txt(c), "1", 0, align(t, i), true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range t.Rows {
			for i := range t.Columns {
				v := ""
				if i < len(row) {
					v = row[i]
				}
				pdf.CellFormat(widths[i], 7, txt(v), "1", 0, align(t, i), false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(3)
	}

	if len(doc.Summary) > 0 {
		labelW, valueW := 50.0, 40.0
		indent := contentW - labelW - valueW
		for _, s := range doc.Summary {
			style := ""
			if s.Strong {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, 10)
			pdf.SetX(pdfMargin + indent)
			pdf.CellFormat(labelW, pdfLineHeight, txt(s.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(valueW, pdfLineHeight, txt(FormatINR(s.Amount)), "", 1, "R", false, 0, "")
		}
	}

	if len(doc.Notes) > 0 {
		pdf.Ln(3)
		for _, n := range doc.Notes {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(contentW, pdfLineHeight, txt(n.Label), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(contentW, 5, txt(n.Value), "", "L", false)
		}
	}

	return pdf
}

func align(t Table, i int) string {
	if t.Numeric[i] {
		return "R"
	}
	return "L"
}

// columnWidths gives text columns twice the share of numeric ones.
func columnWidths(t Table, total float64) []float64 {
	units := 0.0
	for i := range t.Columns {
		if t.Numeric[i] {
			units++
		} else {
			units += 2
		}
	}
	widths := make([]float64, len(t.Columns))
	for i := range t.Columns {
		w := 2.0
		if t.Numeric[i] {
			w = 1
		}
		widths[i] = total * w / units
	}
	return widths
}
