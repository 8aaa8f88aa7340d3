package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEntry(ctx context.Context, e *Entry) error {
	e.Category = strings.TrimSpace(e.Category)
	e.Name = strings.TrimSpace(e.Name)
	if e.Category == "" {
		return fmt.Errorf("category is required")
	}
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if e.Rate.IsNegative() {
		return fmt.Errorf("rate must not be negative")
	}
	if !e.Rate.Equal(e.Rate.Round(2)) {
		return fmt.Errorf("rate must not have more than 2 decimal places")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListEntries(ctx context.Context, category string, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, category, limit, offset)
}
