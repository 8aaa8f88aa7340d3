package billing

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/platform/export"
)

// Document converts a bill into the exporter's view model.
func (d *Detail) Document() *export.Document {
	b := d.Bill
	fields := []export.Field{
		{Key: "doctor", Label: "Doctor", Value: b.DoctorName},
		{Key: "ward", Label: "Ward", Value: b.WardName},
		{Key: "room", Label: "Room", Value: b.RoomNumber},
		{Key: "bed", Label: "Bed", Value: b.BedNumber},
		{Key: "admission_date", Label: "Admitted", Value: b.AdmissionDate.Format("02 Jan 2006")},
	}
	if b.DischargeDate != nil {
		fields = append(fields, export.Field{Key: "discharge_date", Label: "Discharged", Value: b.DischargeDate.Format("02 Jan 2006")})
	}
	fields = append(fields, export.Field{Key: "status", Label: "Status", Value: string(d.Summary.Status)})

	rows := make([][]string, 0, len(d.Items))
	for _, it := range d.Items {
		rows = append(rows, []string{
			it.Category,
			it.Description,
			strconv.Itoa(it.Quantity),
			export.FormatINR(it.Rate),
			export.FormatINR(it.Amount),
		})
	}

	sum := d.Summary
	return &export.Document{
		Kind:        export.KindBill,
		ID:          b.ID.String(),
		Number:      b.BillNumber,
		PatientName: b.PatientName,
		MRNumber:    b.MRNumber,
		GeneratedAt: b.GeneratedDate,
		Fields:      fields,
		Table: export.Table{
			Columns: []string{"Category", "Description", "Qty", "Rate", "Amount"},
			Numeric: map[int]bool{2: true, 3: true, 4: true},
			Rows:    rows,
		},
		Summary: []export.SummaryLine{
			{Key: "subtotal", Label: "Subtotal", Amount: sum.Subtotal},
			{Key: "discount", Label: fmt.Sprintf("Discount (%s%%)", sum.DiscountPercent.String()), Amount: sum.Discount},
			{Key: "total", Label: "Total", Amount: sum.Total, Strong: true},
			{Key: "paid", Label: "Paid", Amount: sum.Paid},
			{Key: "balance", Label: "Balance Due", Amount: sum.Balance, Strong: true},
		},
	}
}

// RegisterSheet lays bills out as the bill register worksheet.
func RegisterSheet(bills []*Bill) export.Sheet {
	rows := make([][]interface{}, 0, len(bills))
	for _, b := range bills {
		balance := BalanceDue(b.TotalAmount, b.Discount, b.PaidAmount)
		rows = append(rows, []interface{}{
			b.BillNumber,
			b.GeneratedDate.Format("2006-01-02"),
			b.PatientName,
			b.MRNumber,
			b.WardName,
			b.DoctorName,
			money(b.TotalAmount),
			money(b.Discount),
			money(b.PaidAmount),
			money(balance),
			string(b.Status),
		})
	}
	return export.Sheet{
		Name: "Bills",
		Columns: []string{
			"Bill Number", "Date", "Patient", "MR Number", "Ward", "Doctor",
			"Total", "Discount", "Paid", "Balance", "Status",
		},
		Widths: []float64{16, 12, 24, 12, 18, 20, 12, 12, 12, 12, 10},
		Rows:   rows,
	}
}

func money(d decimal.Decimal) float64 {
	return Round(d).InexactFloat64()
}
