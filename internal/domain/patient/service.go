package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/respond"
)

// Unique index names on the patient table, used to map insert races back to
// the same conflict the pre-check would have reported.
const (
	constraintNIC   = "patient_nic_key"
	constraintEmail = "patient_email_key"
	constraintPhone = "patient_phone_key"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register validates, normalizes and persists a new patient. New patients
// are always active.
func (s *Service) Register(ctx context.Context, p *Patient, createdBy string) error {
	if err := s.validate(p); err != nil {
		return err
	}
	p.normalize()
	if err := s.checkUnique(ctx, p, uuid.Nil); err != nil {
		return err
	}
	p.Active = true
	p.CreatedBy = createdBy
	if err := s.repo.Create(ctx, p); err != nil {
		return mapUniqueViolation(err, p)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("patient", id.String())
		}
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields of an existing patient. CreatedBy,
// CreatedAt and Active survive the update untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, p *Patient) (*Patient, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(p); err != nil {
		return nil, err
	}
	p.normalize()
	if err := s.checkUnique(ctx, p, id); err != nil {
		return nil, err
	}
	p.ID = id
	p.Active = existing.Active
	if err := s.repo.Update(ctx, p); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("patient", id.String())
		}
		return nil, mapUniqueViolation(err, p)
	}
	return p, nil
}

// Deactivate soft-deletes a patient. The record stays queryable with
// status=inactive and its NIC stays reserved.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

// Reactivate restores a soft-deleted patient.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if db.IsNoRows(err) {
			return respond.NewNotFoundError("patient", id.String())
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Stats(ctx context.Context, f Filter) (*Statistics, error) {
	return s.repo.Stats(ctx, f)
}

// CheckAvailability reports whether the given identifier value is free to
// use. field must be one of nic, email or phone.
func (s *Service) CheckAvailability(ctx context.Context, field, value string) (bool, error) {
	if value == "" {
		return false, respond.NewValidationError(map[string]string{field: "is required"})
	}
	var err error
	switch field {
	case "nic":
		if ferr := Rules.ValidateField("nic", value); ferr != nil {
			return false, respond.NewValidationError(map[string]string{"nic": ferr.Error()})
		}
		_, err = s.repo.GetByNIC(ctx, value)
	case "email":
		_, err = s.repo.GetByEmail(ctx, value)
	case "phone":
		_, err = s.repo.GetByPhone(ctx, value)
	default:
		return false, respond.NewValidationError(map[string]string{"field": fmt.Sprintf("unknown field %q", field)})
	}
	if err != nil {
		if db.IsNoRows(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (s *Service) validate(p *Patient) error {
	draft := p.draft()
	if missing := Rules.Missing(draft); len(missing) > 0 {
		return respond.MissingFieldsError(missing)
	}
	if fields := Rules.Validate(draft); len(fields) > 0 {
		return respond.NewValidationError(fields)
	}
	return nil
}

// checkUnique runs the pre-insert uniqueness queries. self is the id being
// updated, so a record may keep its own identifiers.
func (s *Service) checkUnique(ctx context.Context, p *Patient, self uuid.UUID) error {
	if other, err := s.repo.GetByNIC(ctx, p.NIC); err == nil && other.ID != self {
		return respond.NewConflictError("NIC", p.NIC)
	} else if err != nil && !db.IsNoRows(err) {
		return err
	}
	if p.Email != nil {
		if other, err := s.repo.GetByEmail(ctx, *p.Email); err == nil && other.ID != self {
			return respond.NewConflictError("email", *p.Email)
		} else if err != nil && !db.IsNoRows(err) {
			return err
		}
	}
	if other, err := s.repo.GetByPhone(ctx, p.Phone); err == nil && other.ID != self {
		return respond.NewConflictError("phone", p.Phone)
	} else if err != nil && !db.IsNoRows(err) {
		return err
	}
	return nil
}

// mapUniqueViolation turns an insert-race unique violation into the same
// ConflictError the pre-check produces.
func mapUniqueViolation(err error, p *Patient) error {
	switch db.ConstraintName(err) {
	case constraintNIC:
		return respond.NewConflictError("NIC", p.NIC)
	case constraintEmail:
		email := ""
		if p.Email != nil {
			email = *p.Email
		}
		return respond.NewConflictError("email", email)
	case constraintPhone:
		return respond.NewConflictError("phone", p.Phone)
	}
	return err
}
