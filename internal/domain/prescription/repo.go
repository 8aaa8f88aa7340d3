package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("checkup not found")

type Repository interface {
	Create(ctx context.Context, c *Checkup) error
	GetByID(ctx context.Context, id uuid.UUID) (*Checkup, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	// List filters by MR number when mrNumber is non-empty.
	List(ctx context.Context, mrNumber string, limit, offset int) ([]*Checkup, int, error)
}
