// Package export renders bills and prescriptions into printable HTML, PDF,
// PNG, share payloads and spreadsheets.
package export

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the record a Document was built from.
type Kind string

const (
	KindBill         Kind = "bill"
	KindPrescription Kind = "prescription"
)

// Field is a labelled header value. Key is the machine name emitted as
// data-field in the print output.
type Field struct {
	Key   string
	Label string
	Value string
}

// Table is the body of a document: line items for bills, medicines for
// prescriptions.
type Table struct {
	Title   string
	Columns []string
	// Numeric marks right-aligned columns by index.
	Numeric map[int]bool
	Rows    [][]string
}

// SummaryLine is one money figure under the table.
type SummaryLine struct {
	Key    string
	Label  string
	Amount decimal.Decimal
	Strong bool
}

// Document is the renderer-neutral view of a bill or prescription.
type Document struct {
	Kind        Kind
	ID          string
	Number      string
	PatientName string
	MRNumber    string
	GeneratedAt time.Time
	Fields      []Field
	Table       Table
	Summary     []SummaryLine
	Notes       []Field
}

// TypeLabel is the document type shown in titles, e.g. "IPD Bill".
func (d *Document) TypeLabel() string {
	if d.Kind == KindPrescription {
		return "Prescription"
	}
	return "IPD Bill"
}

// noun is the short name used in share text.
func (d *Document) noun() string {
	if d.Kind == KindPrescription {
		return "Prescription"
	}
	return "Bill"
}

// RootID is the id of the element wrapping the printable content.
func (d *Document) RootID() string {
	if d.Kind == KindPrescription {
		return "prescription-content"
	}
	return "billing-content"
}

// FileName is the download name of the PDF rendition.
func (d *Document) FileName() string {
	if d.Kind == KindPrescription {
		return "prescription-" + d.ID + ".pdf"
	}
	return "IPD_Bill_" + d.Number + ".pdf"
}

// Title is "<type> - <number>".
func (d *Document) Title() string {
	return d.TypeLabel() + " - " + d.Number
}

func (d *Document) sharePath() string {
	if d.Kind == KindPrescription {
		return "/prescriptions/"
	}
	return "/bills/"
}
