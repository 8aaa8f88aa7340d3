// Package prescription records outpatient checkups and the medicines
// prescribed at them.
package prescription

import (
	"time"

	"github.com/google/uuid"
)

const numberPrefix = "RX-"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Medicine is one prescribed drug line.
type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Checkup is a consultation and the prescription written at it.
type Checkup struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Number       string     `db:"number" json:"number"`
	PatientName  string     `db:"patient_name" json:"patient_name"`
	MRNumber     string     `db:"mr_number" json:"mr_number"`
	Age          int        `db:"age" json:"age"`
	Gender       Gender     `db:"gender" json:"gender"`
	Doctor       string     `db:"doctor" json:"doctor"`
	Date         time.Time  `db:"checkup_date" json:"date"`
	Diagnosis    string     `db:"diagnosis" json:"diagnosis"`
	Symptoms     string     `db:"symptoms" json:"symptoms,omitempty"`
	Medicines    []Medicine `db:"medicines" json:"medicines"`
	Advice       string     `db:"advice" json:"advice,omitempty"`
	FollowUpDate *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

func (c *Checkup) clone() *Checkup {
	cp := *c
	cp.Medicines = append([]Medicine(nil), c.Medicines...)
	if c.FollowUpDate != nil {
		f := *c.FollowUpDate
		cp.FollowUpDate = &f
	}
	return &cp
}
