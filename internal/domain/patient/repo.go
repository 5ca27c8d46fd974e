package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows List and Stats queries. Zero values mean "no constraint".
type Filter struct {
	Search         string // substring over first/last name, phone, nic, email
	Gender         string
	BloodGroup     string
	Status         string // "active" | "inactive"
	BornFrom       time.Time
	BornTo         time.Time
	RegisteredFrom time.Time
	RegisteredTo   time.Time
	SortBy         string // firstName | lastName | createdAt | dateOfBirth
	SortOrder      string // asc | desc
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNIC(ctx context.Context, nic string) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error)
	Stats(ctx context.Context, f Filter) (*Statistics, error)
}
