package admission

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WardTier is the tariff class of a ward.
type WardTier string

const (
	TierICU       WardTier = "icu"
	TierSurgical  WardTier = "surgical"
	TierPrivate   WardTier = "private"
	TierPediatric WardTier = "pediatric"
	TierGeneral   WardTier = "general"
)

// tierMatchOrder is the order in which ward names are matched. The first hit
// wins, so "Surgical ICU" is an ICU ward.
var tierMatchOrder = []WardTier{TierICU, TierSurgical, TierPrivate, TierPediatric}

// ResolveTier maps a free-text ward name to its tier by case-insensitive
// substring match, defaulting to TierGeneral.
func ResolveTier(wardName string) WardTier {
	name := strings.ToLower(wardName)
	for _, t := range tierMatchOrder {
		if strings.Contains(name, string(t)) {
			return t
		}
	}
	return TierGeneral
}

// ParseWardTier accepts an exact tier name, ignoring case and surrounding space.
func ParseWardTier(s string) (WardTier, error) {
	t := WardTier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierICU, TierSurgical, TierPrivate, TierPediatric, TierGeneral:
		return t, nil
	}
	return "", fmt.Errorf("invalid ward tier: %q", s)
}

// Patient is an admitted in-patient with their ward assignment.
type Patient struct {
	ID              uuid.UUID `json:"id"`
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	MRNumber        string    `json:"mr_number"`
	WardName        string    `json:"ward_name"`
	WardTier        *WardTier `json:"ward_tier,omitempty"`
	RoomNumber      string    `json:"room_number"`
	BedNumber       string    `json:"bed_number"`
	AdmissionDate   time.Time `json:"admission_date"`
	AttendingDoctor string    `json:"attending_doctor"`
	CreatedAt       time.Time `json:"created_at"`
}

// Tier returns the explicit ward tier when set, else the tier resolved from
// the ward name.
func (p *Patient) Tier() WardTier {
	if p.WardTier != nil {
		return *p.WardTier
	}
	return ResolveTier(p.WardName)
}
