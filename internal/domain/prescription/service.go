package prescription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/sequence"
)

var ErrInvalidInput = errors.New("invalid input")

const numberAttempts = 8

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type Service struct {
	repo    Repository
	numbers sequence.Generator
	clock   func() time.Time
}

func NewService(repo Repository, numbers sequence.Generator) *Service {
	return &Service{repo: repo, numbers: numbers, clock: time.Now}
}

func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Create validates a checkup, assigns its RX number and stores it. A zero
// date means today.
func (s *Service) Create(ctx context.Context, c *Checkup) error {
	c.PatientName = strings.TrimSpace(c.PatientName)
	c.MRNumber = strings.TrimSpace(c.MRNumber)
	c.Doctor = strings.TrimSpace(c.Doctor)
	c.Diagnosis = strings.TrimSpace(c.Diagnosis)
	c.Gender = Gender(strings.ToLower(string(c.Gender)))

	switch {
	case c.PatientName == "":
		return invalid("patient_name is required")
	case c.MRNumber == "":
		return invalid("mr_number is required")
	case c.Doctor == "":
		return invalid("doctor is required")
	case c.Diagnosis == "":
		return invalid("diagnosis is required")
	case c.Age < 0 || c.Age > 150:
		return invalid("age must be between 0 and 150")
	}
	switch c.Gender {
	case "", GenderMale, GenderFemale, GenderOther:
	default:
		return invalid("unknown gender %q", c.Gender)
	}
	if len(c.Medicines) == 0 {
		return invalid("at least one medicine is required")
	}
	for i := range c.Medicines {
		m := &c.Medicines[i]
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return invalid("medicine %d: name is required", i+1)
		}
		if strings.TrimSpace(m.Dosage) == "" || strings.TrimSpace(m.Frequency) == "" {
			return invalid("medicine %d: dosage and frequency are required", i+1)
		}
	}
	if c.Date.IsZero() {
		c.Date = s.clock()
	}
	if c.FollowUpDate != nil && c.FollowUpDate.Before(c.Date) {
		return invalid("follow_up_date is before the checkup date")
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return err
	}
	c.Number = number
	return s.repo.Create(ctx, c)
}

func (s *Service) nextNumber(ctx context.Context) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		n, err := s.numbers.Next(ctx)
		if err != nil {
			return "", fmt.Errorf("next prescription number: %w", err)
		}
		number := fmt.Sprintf("%s%04d", numberPrefix, n)
		exists, err := s.repo.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free prescription number after %d attempts", numberAttempts)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Checkup, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, mrNumber string, limit, offset int) ([]*Checkup, int, error) {
	return s.repo.List(ctx, strings.TrimSpace(mrNumber), limit, offset)
}
