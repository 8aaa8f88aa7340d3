package admission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no admission matches the lookup.
var ErrNotFound = errors.New("admission not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
