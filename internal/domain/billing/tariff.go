package billing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/admission"
)

// Tariff is the per-tier rate card used for default bill items.
type Tariff struct {
	Tier                  admission.WardTier `json:"tier"`
	RoomRate              decimal.Decimal    `json:"room_rate"`
	DoctorRate            decimal.Decimal    `json:"doctor_rate"`
	DoctorDescription     string             `json:"doctor_description"`
	NursingRate           decimal.Decimal    `json:"nursing_rate"`
	NursingDescription    string             `json:"nursing_description"`
	MedicationRate        decimal.Decimal    `json:"medication_rate"`
	MedicationDescription string             `json:"medication_description"`
}

func standardTariff(tier admission.WardTier, room int64) Tariff {
	return Tariff{
		Tier:                  tier,
		RoomRate:              decimal.NewFromInt(room),
		DoctorRate:            decimal.NewFromInt(500),
		DoctorDescription:     "Doctor Consultation",
		NursingRate:           decimal.NewFromInt(600),
		NursingDescription:    "Nursing Care",
		MedicationRate:        decimal.NewFromInt(1000),
		MedicationDescription: "Basic Medication Package",
	}
}

var tariffs = func() map[admission.WardTier]Tariff {
	icu := Tariff{
		Tier:                  admission.TierICU,
		RoomRate:              decimal.NewFromInt(5000),
		DoctorRate:            decimal.NewFromInt(1000),
		DoctorDescription:     "ICU Specialist Visit",
		NursingRate:           decimal.NewFromInt(1200),
		NursingDescription:    "Special Nursing Care",
		MedicationRate:        decimal.NewFromInt(5000),
		MedicationDescription: "Critical care medications",
	}
	surgical := standardTariff(admission.TierSurgical, 2000)
	surgical.MedicationRate = decimal.NewFromInt(3000)
	surgical.MedicationDescription = "Post-surgery medications"

	return map[admission.WardTier]Tariff{
		admission.TierICU:       icu,
		admission.TierSurgical:  surgical,
		admission.TierPrivate:   standardTariff(admission.TierPrivate, 3500),
		admission.TierPediatric: standardTariff(admission.TierPediatric, 1500),
		admission.TierGeneral:   standardTariff(admission.TierGeneral, 1000),
	}
}()

// TariffFor returns the rate card for a tier, falling back to general.
func TariffFor(tier admission.WardTier) Tariff {
	if t, ok := tariffs[tier]; ok {
		return t
	}
	return tariffs[admission.TierGeneral]
}

// Tariffs lists every rate card, most expensive tier first.
func Tariffs() []Tariff {
	order := []admission.WardTier{
		admission.TierICU, admission.TierSurgical, admission.TierPrivate,
		admission.TierPediatric, admission.TierGeneral,
	}
	out := make([]Tariff, 0, len(order))
	for _, tier := range order {
		out = append(out, tariffs[tier])
	}
	return out
}

// DaysAdmitted counts started days since admission, at least 1.
func DaysAdmitted(admittedAt, now time.Time) int {
	days := int(math.Ceil(now.Sub(admittedAt).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// DefaultItems builds the four standard charges for an admission: room,
// doctor visits and nursing per day, plus one medication package.
func DefaultItems(p *admission.Patient, now time.Time) []*Item {
	t := TariffFor(p.Tier())
	days := DaysAdmitted(p.AdmissionDate, now)
	qty := decimal.NewFromInt(int64(days))

	room := fmt.Sprintf("%s - Room %s", p.WardName, p.RoomNumber)
	if p.RoomNumber == "" {
		room = p.WardName
	}
	items := []*Item{
		{Category: CategoryRoom, Description: room, Quantity: days, Rate: t.RoomRate, Amount: t.RoomRate.Mul(qty)},
		{Category: CategoryDoctor, Description: t.DoctorDescription, Quantity: days, Rate: t.DoctorRate, Amount: t.DoctorRate.Mul(qty)},
		{Category: CategoryNursing, Description: t.NursingDescription, Quantity: days, Rate: t.NursingRate, Amount: t.NursingRate.Mul(qty)},
		{Category: CategoryMedications, Description: t.MedicationDescription, Quantity: 1, Rate: t.MedicationRate, Amount: t.MedicationRate},
	}
	for i, it := range items {
		it.Sequence = i + 1
	}
	return items
}
