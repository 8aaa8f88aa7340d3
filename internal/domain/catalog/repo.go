package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("service not found")

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	// List returns entries ordered by category then name. An empty category
	// matches every entry.
	List(ctx context.Context, category string, limit, offset int) ([]*Entry, int, error)
}
