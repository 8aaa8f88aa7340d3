package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("bill not found")
	ErrItemNotFound = errors.New("bill item not found")
)

// Filter narrows ListBills. Query matches bill number, patient name or MR
// number case-insensitively.
type Filter struct {
	Status    Status
	PatientID string
	Query     string
}

type Repository interface {
	Create(ctx context.Context, b *Bill, items []*Item) error
	// Update persists the mutable money fields and status.
	Update(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	GetByNumber(ctx context.Context, number string) (*Bill, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error)

	AddItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, billID, itemID uuid.UUID) error
	GetItems(ctx context.Context, billID uuid.UUID) ([]*Item, error)

	AddPayment(ctx context.Context, p *Payment) error
	GetPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error)
}

// Transactor runs fn atomically against the repository it belongs to.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
