package laborder

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows lab order listings.
type Filter struct {
	Patient  uuid.UUID
	Status   string
	Priority string
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	// SetStatus updates the order state and appends the audit row in one
	// transaction.
	SetStatus(ctx context.Context, id uuid.UUID, from, to, changedBy string) error
	History(ctx context.Context, id uuid.UUID) ([]*StatusChange, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Order, int, error)
}
