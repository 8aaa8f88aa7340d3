// Package sandbox provides the fixed demo data set used by development
// servers and UI demos. Records are stable across runs; dates are relative
// to the moment the data set is built.
package sandbox

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/domain/prescription"
)

// ---------------------------------------------------------------------------
// Seed records
// ---------------------------------------------------------------------------

// PaymentSeed is a payment recorded against a seeded bill.
type PaymentSeed struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// BillSeed describes a bill generated for one of the seeded admissions.
// Without Services the bill carries the tariff defaults; each name in
// Services is added from the catalog afterwards.
type BillSeed struct {
	Admission       int             `json:"admission"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	GeneratedDate   time.Time       `json:"generated_date"`
	DischargeDate   *time.Time      `json:"discharge_date,omitempty"`
	Services        []string        `json:"services,omitempty"`
	Payments        []PaymentSeed   `json:"payments,omitempty"`
}

// Dataset is every demo record in load order.
type Dataset struct {
	Admissions []admission.Patient    `json:"admissions"`
	Services   []catalog.Entry        `json:"services"`
	Bills      []BillSeed             `json:"bills"`
	Checkups   []prescription.Checkup `json:"checkups"`
}

func rupees(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(now time.Time, offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

// admitted places an admission one hour inside its oldest day, so
// DaysAdmitted yields daysAgo.
func admitted(now time.Time, daysAgo int) time.Time {
	return now.AddDate(0, 0, -daysAgo).Add(time.Hour)
}

// Build returns the demo data set anchored at now.
func Build(now time.Time) *Dataset {
	discharged := day(now, -1)
	followUp := day(now, 7)

	return &Dataset{
		Admissions: []admission.Patient{
			{PatientID: "P001", PatientName: "Rajesh Kumar", MRNumber: "MR001", WardName: "General Ward",
				RoomNumber: "101", BedNumber: "A", AdmissionDate: admitted(now, 3), AttendingDoctor: "Dr. Anil Sharma"},
			{PatientID: "P002", PatientName: "Priya Patel", MRNumber: "MR002", WardName: "ICU",
				RoomNumber: "ICU-2", BedNumber: "1", AdmissionDate: admitted(now, 5), AttendingDoctor: "Dr. Kavita Mehta"},
			{PatientID: "P003", PatientName: "Amit Singh", MRNumber: "MR003", WardName: "Surgical Ward",
				RoomNumber: "204", BedNumber: "B", AdmissionDate: admitted(now, 2), AttendingDoctor: "Dr. Suresh Rao"},
			{PatientID: "P004", PatientName: "Sneha Reddy", MRNumber: "MR004", WardName: "Private Room",
				RoomNumber: "P-12", BedNumber: "1", AdmissionDate: admitted(now, 1), AttendingDoctor: "Dr. Lakshmi Iyer"},
			{PatientID: "P005", PatientName: "Arjun Nair", MRNumber: "MR005", WardName: "Pediatric Ward",
				RoomNumber: "305", BedNumber: "C", AdmissionDate: admitted(now, 4), AttendingDoctor: "Dr. Neha Kapoor"},
		},
		Services: []catalog.Entry{
			{Category: billing.CategoryRoom, Name: "General Ward Bed", Rate: rupees(1000), Description: "Per day"},
			{Category: billing.CategoryRoom, Name: "ICU Bed", Rate: rupees(5000), Description: "Per day, includes monitoring"},
			{Category: billing.CategoryDoctor, Name: "Doctor Consultation", Rate: rupees(500)},
			{Category: billing.CategoryDoctor, Name: "Specialist Consultation", Rate: rupees(1000)},
			{Category: billing.CategoryNursing, Name: "Nursing Care", Rate: rupees(600), Description: "Per day"},
			{Category: billing.CategoryMedications, Name: "Basic Medication Package", Rate: rupees(1000)},
			{Category: billing.CategoryProcedures, Name: "X-Ray", Rate: rupees(800)},
			{Category: billing.CategoryProcedures, Name: "ECG", Rate: rupees(350)},
			{Category: billing.CategoryProcedures, Name: "Complete Blood Count", Rate: rupees(450)},
			{Category: billing.CategoryProcedures, Name: "MRI Scan", Rate: rupees(6500)},
			{Category: billing.CategorySurgery, Name: "Appendectomy", Rate: rupees(45000)},
			{Category: billing.CategorySurgery, Name: "Minor Surgery", Rate: rupees(15000)},
		},
		Bills: []BillSeed{
			{
				Admission:     0,
				GeneratedDate: now,
				DischargeDate: &discharged,
				Payments: []PaymentSeed{
					{Amount: rupees(7300), Method: billing.MethodUPI, Reference: "UPI-552901", PaidAt: now},
				},
			},
			{
				Admission:       1,
				DiscountPercent: rupees(10),
				GeneratedDate:   now,
				Services:        []string{"ECG", "Complete Blood Count"},
				Payments: []PaymentSeed{
					{Amount: rupees(15000), Method: billing.MethodCard, Reference: "POS-1187", PaidAt: day(now, -2)},
					{Amount: rupees(5000), Method: billing.MethodCash, PaidAt: now},
				},
			},
			{
				Admission:     2,
				GeneratedDate: now,
				Services:      []string{"Appendectomy", "X-Ray"},
			},
			{
				Admission:       4,
				DiscountPercent: rupees(5),
				GeneratedDate:   day(now, -1),
				Payments: []PaymentSeed{
					{Amount: rupees(2000), Method: billing.MethodInsurance, Reference: "CLM-2024-0091", PaidAt: day(now, -1)},
				},
			},
		},
		Checkups: []prescription.Checkup{
			{
				PatientName: "Meera Joshi", MRNumber: "MR101", Age: 34, Gender: prescription.GenderFemale,
				Doctor: "Dr. Anil Sharma", Date: now, Diagnosis: "Viral fever", Symptoms: "Fever, body ache, fatigue",
				Medicines: []prescription.Medicine{
					{Name: "Paracetamol 500mg", Dosage: "1 tablet", Frequency: "1-1-1", Duration: "5 days", Instructions: "After food"},
					{Name: "ORS", Dosage: "1 sachet", Frequency: "As needed", Duration: "3 days"},
				},
				Advice:       "Rest and plenty of fluids",
				FollowUpDate: &followUp,
			},
			{
				PatientName: "Vikram Desai", MRNumber: "MR102", Age: 58, Gender: prescription.GenderMale,
				Doctor: "Dr. Kavita Mehta", Date: day(now, -3), Diagnosis: "Hypertension",
				Medicines: []prescription.Medicine{
					{Name: "Amlodipine 5mg", Dosage: "1 tablet", Frequency: "1-0-0", Duration: "30 days"},
				},
				Advice: "Low salt diet, daily walk",
			},
		},
	}
}
