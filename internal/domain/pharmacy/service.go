package pharmacy

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/respond"
	"github.com/hms/hms/internal/record"
)

const (
	constraintLicense = "pharmacy_license_no_key"
	constraintSKU     = "product_pharmacy_sku_key"
	constraintBarcode = "product_barcode_key"
)

type Service struct {
	repo     Repository
	products ProductRepository
}

func NewService(repo Repository, products ProductRepository) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Create(ctx context.Context, p *Pharmacy, createdBy string) error {
	if err := validateRules(Rules, p.draft()); err != nil {
		return err
	}
	p.normalize()
	if err := s.checkLicense(ctx, p.LicenseNo, uuid.Nil); err != nil {
		return err
	}
	p.Active = true
	p.CreatedBy = createdBy
	if err := s.repo.Create(ctx, p); err != nil {
		if db.IsUniqueViolation(err, constraintLicense) {
			return respond.NewConflictError("licenseNumber", p.LicenseNo)
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("pharmacy", id.String())
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p *Pharmacy) (*Pharmacy, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := validateRules(Rules, p.draft()); err != nil {
		return nil, err
	}
	p.normalize()
	if err := s.checkLicense(ctx, p.LicenseNo, id); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("pharmacy", id.String())
		}
		if db.IsUniqueViolation(err, constraintLicense) {
			return nil, respond.NewConflictError("licenseNumber", p.LicenseNo)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if db.IsNoRows(err) {
			return respond.NewNotFoundError("pharmacy", id.String())
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) checkLicense(ctx context.Context, licenseNo string, self uuid.UUID) error {
	other, err := s.repo.GetByLicense(ctx, licenseNo)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}
	if other.ID == self {
		return nil
	}
	return respond.NewConflictError("licenseNumber", licenseNo)
}

// AddProduct validates and persists a product under the given pharmacy. The
// pharmacy must exist and be active.
func (s *Service) AddProduct(ctx context.Context, pharmacyID uuid.UUID, p *Product) error {
	ph, err := s.Get(ctx, pharmacyID)
	if err != nil {
		return err
	}
	if !ph.Active {
		return respond.NewValidationError(map[string]string{
			"pharmacyId": "pharmacy is inactive",
		})
	}
	if err := validateRules(ProductRules, p.draft()); err != nil {
		return err
	}
	p.normalize()
	p.PharmacyID = pharmacyID
	if err := s.checkProductUnique(ctx, p, uuid.Nil); err != nil {
		return err
	}
	p.Active = true
	if err := s.products.Create(ctx, p); err != nil {
		return mapProductViolation(err, p)
	}
	return nil
}

func (s *Service) GetProduct(ctx context.Context, pharmacyID, id uuid.UUID) (*Product, error) {
	p, err := s.products.GetByID(ctx, pharmacyID, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("product", id.String())
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, pharmacyID, id uuid.UUID, p *Product) (*Product, error) {
	if _, err := s.GetProduct(ctx, pharmacyID, id); err != nil {
		return nil, err
	}
	if err := validateRules(ProductRules, p.draft()); err != nil {
		return nil, err
	}
	p.normalize()
	p.PharmacyID = pharmacyID
	if err := s.checkProductUnique(ctx, p, id); err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.products.Update(ctx, p); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("product", id.String())
		}
		return nil, mapProductViolation(err, p)
	}
	return p, nil
}

func (s *Service) DeactivateProduct(ctx context.Context, pharmacyID, id uuid.UUID) error {
	if err := s.products.SetActive(ctx, pharmacyID, id, false); err != nil {
		if db.IsNoRows(err) {
			return respond.NewNotFoundError("product", id.String())
		}
		return err
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, pharmacyID uuid.UUID, f ProductFilter, limit, offset int) ([]*Product, int, error) {
	if _, err := s.Get(ctx, pharmacyID); err != nil {
		return nil, 0, err
	}
	return s.products.List(ctx, pharmacyID, f, limit, offset)
}

// checkProductUnique enforces SKU uniqueness within the pharmacy and
// barcode uniqueness across all pharmacies.
func (s *Service) checkProductUnique(ctx context.Context, p *Product, self uuid.UUID) error {
	if other, err := s.products.GetBySKU(ctx, p.PharmacyID, p.SKU); err == nil && other.ID != self {
		return respond.NewConflictError("sku", p.SKU)
	} else if err != nil && !db.IsNoRows(err) {
		return err
	}
	if p.Barcode != nil {
		if other, err := s.products.GetByBarcode(ctx, *p.Barcode); err == nil && other.ID != self {
			return respond.NewConflictError("barcode", *p.Barcode)
		} else if err != nil && !db.IsNoRows(err) {
			return err
		}
	}
	return nil
}

func mapProductViolation(err error, p *Product) error {
	switch db.ConstraintName(err) {
	case constraintSKU:
		return respond.NewConflictError("sku", p.SKU)
	case constraintBarcode:
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		return respond.NewConflictError("barcode", barcode)
	}
	return err
}

func validateRules(rules record.RuleSet, draft map[string]string) error {
	if missing := rules.Missing(draft); len(missing) > 0 {
		return respond.MissingFieldsError(missing)
	}
	if fields := rules.Validate(draft); len(fields) > 0 {
		return respond.NewValidationError(fields)
	}
	return nil
}
