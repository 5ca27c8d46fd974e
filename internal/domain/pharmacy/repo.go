package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows pharmacy listings.
type Filter struct {
	Search string // name or license substring
	Status string // "active" | "inactive"
}

// ProductFilter narrows product listings within one pharmacy.
type ProductFilter struct {
	Search   string
	Category string
	LowStock bool
	Status   string
}

type Repository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	GetByLicense(ctx context.Context, licenseNo string) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*Product, error)
	GetBySKU(ctx context.Context, pharmacyID uuid.UUID, sku string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	SetActive(ctx context.Context, pharmacyID, id uuid.UUID, active bool) error
	List(ctx context.Context, pharmacyID uuid.UUID, f ProductFilter, limit, offset int) ([]*Product, int, error)
}
