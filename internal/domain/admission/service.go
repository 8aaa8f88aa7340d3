package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// SetClock replaces the time source used to reject future admissions.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Admit validates and stores a new admission.
func (s *Service) Admit(ctx context.Context, p *Patient) error {
	p.PatientName = strings.TrimSpace(p.PatientName)
	p.WardName = strings.TrimSpace(p.WardName)
	if p.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if p.MRNumber == "" {
		return fmt.Errorf("mr_number is required")
	}
	if p.WardName == "" {
		return fmt.Errorf("ward_name is required")
	}
	if p.AttendingDoctor == "" {
		return fmt.Errorf("attending_doctor is required")
	}
	if p.AdmissionDate.IsZero() {
		return fmt.Errorf("admission_date is required")
	}
	if p.AdmissionDate.After(s.clock()) {
		return fmt.Errorf("admission_date cannot be in the future")
	}
	if p.WardTier != nil {
		t, err := ParseWardTier(string(*p.WardTier))
		if err != nil {
			return err
		}
		p.WardTier = &t
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAdmissions(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}
