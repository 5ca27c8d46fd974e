package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/respond"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: map[uuid.UUID]*Patient{}}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByNIC(_ context.Context, nic string) (*Patient, error) {
	return m.find(func(p *Patient) bool { return p.NIC == nic })
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	return m.find(func(p *Patient) bool { return p.Email != nil && *p.Email == email })
}

func (m *mockRepo) GetByPhone(_ context.Context, phone string) (*Patient, error) {
	return m.find(func(p *Patient) bool { return p.Phone == phone })
}

func (m *mockRepo) find(match func(*Patient) bool) (*Patient, error) {
	for _, p := range m.patients {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	existing, ok := m.patients[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := m.patients[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Active = active
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.patients {
		all = append(all, p)
	}
	total := len(all)
	if offset >= total {
		return []*Patient{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Stats(_ context.Context, f Filter) (*Statistics, error) {
	stats := &Statistics{
		ByGender:     map[string]int{},
		ByBloodGroup: map[string]int{},
		ByAgeGroup:   map[string]int{},
	}
	for _, p := range m.patients {
		stats.Total++
		if p.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByGender[p.Gender]++
	}
	return stats, nil
}

func validPatient() *Patient {
	return &Patient{
		FirstName:   "Nimal",
		LastName:    "Perera",
		Phone:       "+94771234567",
		Gender:      "MALE",
		DateOfBirth: "1985-04-12",
		NIC:         "851234567V",
	}
}

func TestRegisterMissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.Register(context.Background(), &Patient{FirstName: "Nimal"}, "u1")
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr, ok := err.(*respond.ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, f := range []string{"lastName", "phone", "gender", "dateOfBirth", "nic"} {
		if _, present := verr.Fields[f]; !present {
			t.Errorf("missing field %q not reported", f)
		}
	}
	if _, present := verr.Fields["firstName"]; present {
		t.Error("firstName was provided but reported missing")
	}
	if !strings.Contains(verr.Message, "missing required fields") {
		t.Errorf("unexpected message %q", verr.Message)
	}
}

func TestRegisterInvalidFormats(t *testing.T) {
	svc := NewService(newMockRepo())

	p := validPatient()
	p.Phone = "12"
	p.NIC = "not-a-nic"
	err := svc.Register(context.Background(), p, "u1")
	verr, ok := err.(*respond.ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if _, present := verr.Fields["phone"]; !present {
		t.Error("invalid phone not reported")
	}
	if _, present := verr.Fields["nic"]; !present {
		t.Error("invalid nic not reported")
	}
}

func TestRegisterDuplicateNIC(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if err := svc.Register(context.Background(), validPatient(), "u1"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := validPatient()
	dup.Phone = "+94770000000"
	err := svc.Register(context.Background(), dup, "u1")
	cerr, ok := err.(*respond.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if cerr.Field != "NIC" {
		t.Errorf("conflict field = %q, want NIC", cerr.Field)
	}
}

func TestRegisterSetsActiveAndCreatedBy(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validPatient()
	p.Active = false
	if err := svc.Register(context.Background(), p, "reception-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !p.Active {
		t.Error("new patient should be active")
	}
	if p.CreatedBy != "reception-1" {
		t.Errorf("createdBy = %q", p.CreatedBy)
	}
}

func TestRegisterDropsEmptyNestedBlocks(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validPatient()
	p.Address = &Address{Street: "  ", City: "Colombo"}
	p.EmergencyContact = &EmergencyContact{Name: "Kamala", Phone: "+94712223334"}
	if err := svc.Register(context.Background(), p, "u1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Address != nil {
		t.Error("address without street should be dropped")
	}
	if p.EmergencyContact == nil {
		t.Error("anchored emergency contact should survive")
	}
}

func TestUpdateKeepsOwnIdentifiers(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validPatient()
	if err := svc.Register(context.Background(), p, "u1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Re-submitting the same NIC and phone for the same record is not a
	// conflict.
	upd := validPatient()
	upd.LastName = "Pereira"
	got, err := svc.Update(context.Background(), p.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.LastName != "Pereira" {
		t.Errorf("lastName = %q", got.LastName)
	}
	if got.CreatedBy != "u1" {
		t.Errorf("createdBy changed to %q", got.CreatedBy)
	}
}

func TestUpdateConflictsWithOtherRecord(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	first := validPatient()
	if err := svc.Register(context.Background(), first, "u1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := validPatient()
	second.NIC = "199012341234"
	second.Phone = "+94719999999"
	if err := svc.Register(context.Background(), second, "u1"); err != nil {
		t.Fatalf("register second: %v", err)
	}

	upd := validPatient()
	upd.NIC = first.NIC // steal the first patient's NIC
	upd.Phone = second.Phone
	_, err := svc.Update(context.Background(), second.ID, upd)
	cerr, ok := err.(*respond.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if cerr.Field != "NIC" {
		t.Errorf("conflict field = %q", cerr.Field)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Update(context.Background(), uuid.New(), validPatient())
	if !respond.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeactivateReactivate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validPatient()
	if err := svc.Register(context.Background(), p, "u1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Deactivate(context.Background(), p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, _ := svc.Get(context.Background(), p.ID)
	if got.Active {
		t.Error("patient still active after deactivate")
	}
	if err := svc.Reactivate(context.Background(), p.ID); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	got, _ = svc.Get(context.Background(), p.ID)
	if !got.Active {
		t.Error("patient not active after reactivate")
	}
}

func TestCheckAvailability(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := validPatient()
	if err := svc.Register(context.Background(), p, "u1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	available, err := svc.CheckAvailability(context.Background(), "nic", p.NIC)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if available {
		t.Error("taken NIC reported available")
	}

	available, err = svc.CheckAvailability(context.Background(), "nic", "199099901234")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !available {
		t.Error("free NIC reported taken")
	}

	if _, err := svc.CheckAvailability(context.Background(), "nic", "bogus"); err == nil {
		t.Error("malformed NIC should be a validation error")
	}
}
