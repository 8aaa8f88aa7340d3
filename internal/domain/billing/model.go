package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is always derived from the bill's amounts; see DeriveStatus.
type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusPartial: true, StatusPaid: true,
}

// Line item categories.
const (
	CategoryRoom        = "Room Charges"
	CategoryDoctor      = "Doctor Visits"
	CategoryNursing     = "Nursing Care"
	CategoryMedications = "Medications"
	CategoryProcedures  = "Procedures"
	CategorySurgery     = "Surgery"
)

const billNumberPrefix = "IPD-B-"

// Bill maps to the bill table. Patient, ward and doctor fields are copied
// from the admission when the bill is generated.
type Bill struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	BillNumber      string          `db:"bill_number" json:"bill_number"`
	AdmissionID     *uuid.UUID      `db:"admission_id" json:"admission_id,omitempty"`
	PatientID       string          `db:"patient_id" json:"patient_id"`
	PatientName     string          `db:"patient_name" json:"patient_name"`
	MRNumber        string          `db:"mr_number" json:"mr_number"`
	AdmissionDate   time.Time       `db:"admission_date" json:"admission_date"`
	DischargeDate   *time.Time      `db:"discharge_date" json:"discharge_date,omitempty"`
	WardName        string          `db:"ward_name" json:"ward_name"`
	RoomNumber      string          `db:"room_number" json:"room_number"`
	BedNumber       string          `db:"bed_number" json:"bed_number"`
	DoctorName      string          `db:"doctor_name" json:"doctor_name"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	Discount        decimal.Decimal `db:"discount" json:"discount"`
	PaidAmount      decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	Status          Status          `db:"status" json:"status"`
	GeneratedDate   time.Time       `db:"generated_date" json:"generated_date"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

func (b *Bill) clone() *Bill {
	cp := *b
	if b.AdmissionID != nil {
		id := *b.AdmissionID
		cp.AdmissionID = &id
	}
	if b.DischargeDate != nil {
		d := *b.DischargeDate
		cp.DischargeDate = &d
	}
	return &cp
}

// Item maps to the bill_item table.
type Item struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	BillID      uuid.UUID       `db:"bill_id" json:"bill_id"`
	Sequence    int             `db:"sequence" json:"sequence"`
	CatalogID   *uuid.UUID      `db:"catalog_id" json:"catalog_id,omitempty"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description" json:"description"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

func (it *Item) clone() *Item {
	cp := *it
	if it.CatalogID != nil {
		id := *it.CatalogID
		cp.CatalogID = &id
	}
	return &cp
}

// Payment methods accepted by RecordPayment.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodUPI          = "upi"
	MethodInsurance    = "insurance"
	MethodBankTransfer = "bank_transfer"
)

var validMethods = map[string]bool{
	MethodCash: true, MethodCard: true, MethodUPI: true, MethodInsurance: true, MethodBankTransfer: true,
}

// Payment maps to the bill_payment table.
type Payment struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	BillID     uuid.UUID       `db:"bill_id" json:"bill_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Method     string          `db:"method" json:"method"`
	Reference  string          `db:"reference" json:"reference,omitempty"`
	RecordedBy string          `db:"recorded_by" json:"recorded_by,omitempty"`
	PaidAt     time.Time       `db:"paid_at" json:"paid_at"`
}

// Detail is a bill with everything needed to display it.
type Detail struct {
	Bill     *Bill      `json:"bill"`
	Items    []*Item    `json:"items"`
	Payments []*Payment `json:"payments"`
	Summary  Summary    `json:"summary"`
}

// PaymentDraft pre-fills the payment dialog.
type PaymentDraft struct {
	BillID      uuid.UUID       `json:"bill_id"`
	BillNumber  string          `json:"bill_number"`
	PatientName string          `json:"patient_name"`
	Balance     decimal.Decimal `json:"balance"`
	Method      string          `json:"method"`
	Methods     []string        `json:"methods"`
}
