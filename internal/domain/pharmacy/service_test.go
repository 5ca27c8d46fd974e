package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/respond"
	"github.com/hms/hms/internal/record"
)

type mockRepo struct {
	pharmacies map[uuid.UUID]*Pharmacy
}

func newMockRepo() *mockRepo {
	return &mockRepo{pharmacies: map[uuid.UUID]*Pharmacy{}}
}

func (m *mockRepo) Create(_ context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.pharmacies[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Pharmacy, error) {
	p, ok := m.pharmacies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByLicense(_ context.Context, licenseNo string) (*Pharmacy, error) {
	for _, p := range m.pharmacies {
		if p.LicenseNo == licenseNo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, p *Pharmacy) error {
	existing, ok := m.pharmacies[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Active = existing.Active
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	cp := *p
	m.pharmacies[p.ID] = &cp
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := m.pharmacies[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Active = active
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error) {
	var all []*Pharmacy
	for _, p := range m.pharmacies {
		all = append(all, p)
	}
	return all, len(all), nil
}

type mockProductRepo struct {
	products map[uuid.UUID]*Product
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: map[uuid.UUID]*Product{}}
}

func (m *mockProductRepo) Create(_ context.Context, p *Product) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, pharmacyID, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok || p.PharmacyID != pharmacyID {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetBySKU(_ context.Context, pharmacyID uuid.UUID, sku string) (*Product, error) {
	for _, p := range m.products {
		if p.PharmacyID == pharmacyID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockProductRepo) GetByBarcode(_ context.Context, barcode string) (*Product, error) {
	for _, p := range m.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockProductRepo) Update(_ context.Context, p *Product) error {
	existing, ok := m.products[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Active = existing.Active
	p.CreatedAt = existing.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepo) SetActive(_ context.Context, pharmacyID, id uuid.UUID, active bool) error {
	p, ok := m.products[id]
	if !ok || p.PharmacyID != pharmacyID {
		return pgx.ErrNoRows
	}
	p.Active = active
	return nil
}

func (m *mockProductRepo) List(_ context.Context, pharmacyID uuid.UUID, f ProductFilter, limit, offset int) ([]*Product, int, error) {
	var all []*Product
	for _, p := range m.products {
		if p.PharmacyID != pharmacyID {
			continue
		}
		if f.LowStock && !p.LowStock() {
			continue
		}
		all = append(all, p)
	}
	return all, len(all), nil
}

func newTestService() (*Service, *mockRepo, *mockProductRepo) {
	repo := newMockRepo()
	products := newMockProductRepo()
	return NewService(repo, products), repo, products
}

func validPharmacy() *Pharmacy {
	return &Pharmacy{
		Name:      "City Pharmacy",
		LicenseNo: "PH-2024-001",
		Phone:     "+94112345678",
	}
}

func validProduct() *Product {
	return &Product{
		Name:     "Paracetamol 500mg",
		SKU:      "PARA-500",
		Category: "MEDICINE",
		Price:    record.NewNumber(2.50),
		Stock:    record.NewNumber(120),
	}
}

func TestCreatePharmacyDuplicateLicense(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Create(context.Background(), validPharmacy(), "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := validPharmacy()
	dup.Name = "Other Pharmacy"
	err := svc.Create(context.Background(), dup, "u1")
	cerr, ok := err.(*respond.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if cerr.Field != "licenseNumber" {
		t.Errorf("conflict field = %q", cerr.Field)
	}
}

func TestCreatePharmacyDropsEmptyContact(t *testing.T) {
	svc, _, _ := newTestService()

	p := validPharmacy()
	p.Contact = &Contact{Name: "", Phone: "+94771112222"}
	if err := svc.Create(context.Background(), p, "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Contact != nil {
		t.Error("contact without name should be dropped")
	}
}

func TestAddProductSKUScopedPerPharmacy(t *testing.T) {
	svc, _, _ := newTestService()

	first := validPharmacy()
	if err := svc.Create(context.Background(), first, "u1"); err != nil {
		t.Fatalf("create pharmacy: %v", err)
	}
	second := validPharmacy()
	second.LicenseNo = "PH-2024-002"
	if err := svc.Create(context.Background(), second, "u1"); err != nil {
		t.Fatalf("create second pharmacy: %v", err)
	}

	if err := svc.AddProduct(context.Background(), first.ID, validProduct()); err != nil {
		t.Fatalf("add product: %v", err)
	}

	// Same SKU in the same pharmacy conflicts.
	err := svc.AddProduct(context.Background(), first.ID, validProduct())
	cerr, ok := err.(*respond.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if cerr.Field != "sku" {
		t.Errorf("conflict field = %q", cerr.Field)
	}

	// Same SKU in another pharmacy is fine.
	if err := svc.AddProduct(context.Background(), second.ID, validProduct()); err != nil {
		t.Errorf("same SKU, other pharmacy: %v", err)
	}
}

func TestAddProductBarcodeGloballyUnique(t *testing.T) {
	svc, _, _ := newTestService()

	first := validPharmacy()
	if err := svc.Create(context.Background(), first, "u1"); err != nil {
		t.Fatal(err)
	}
	second := validPharmacy()
	second.LicenseNo = "PH-2024-002"
	if err := svc.Create(context.Background(), second, "u1"); err != nil {
		t.Fatal(err)
	}

	barcode := "4791234567890"
	p := validProduct()
	p.Barcode = &barcode
	if err := svc.AddProduct(context.Background(), first.ID, p); err != nil {
		t.Fatalf("add product: %v", err)
	}

	other := validProduct()
	other.SKU = "PARA-1000"
	other.Barcode = &barcode
	err := svc.AddProduct(context.Background(), second.ID, other)
	cerr, ok := err.(*respond.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if cerr.Field != "barcode" {
		t.Errorf("conflict field = %q", cerr.Field)
	}
}

func TestAddProductRejectsInactivePharmacy(t *testing.T) {
	svc, repo, _ := newTestService()

	p := validPharmacy()
	if err := svc.Create(context.Background(), p, "u1"); err != nil {
		t.Fatal(err)
	}
	repo.pharmacies[p.ID].Active = false

	if err := svc.AddProduct(context.Background(), p.ID, validProduct()); err == nil {
		t.Error("adding to an inactive pharmacy should fail")
	}
}

func TestAddProductBounds(t *testing.T) {
	svc, _, _ := newTestService()

	ph := validPharmacy()
	if err := svc.Create(context.Background(), ph, "u1"); err != nil {
		t.Fatal(err)
	}

	p := validProduct()
	p.Price = record.NewNumber(-1)
	err := svc.AddProduct(context.Background(), ph.ID, p)
	verr, ok := err.(*respond.ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if _, present := verr.Fields["price"]; !present {
		t.Error("negative price not reported")
	}
}

func TestLowStockFilter(t *testing.T) {
	svc, _, _ := newTestService()

	ph := validPharmacy()
	if err := svc.Create(context.Background(), ph, "u1"); err != nil {
		t.Fatal(err)
	}

	low := validProduct()
	low.Stock = record.NewNumber(3)
	low.ReorderLevel = record.NewNumber(10)
	if err := svc.AddProduct(context.Background(), ph.ID, low); err != nil {
		t.Fatal(err)
	}

	ok := validProduct()
	ok.SKU = "IBU-200"
	ok.Stock = record.NewNumber(90)
	ok.ReorderLevel = record.NewNumber(10)
	if err := svc.AddProduct(context.Background(), ph.ID, ok); err != nil {
		t.Fatal(err)
	}

	products, total, err := svc.ListProducts(context.Background(), ph.ID, ProductFilter{LowStock: true}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("got %d low-stock products", total)
	}
	if products[0].SKU != "PARA-500" {
		t.Errorf("wrong product: %s", products[0].SKU)
	}
}
