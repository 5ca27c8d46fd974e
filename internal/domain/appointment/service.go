package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/respond"
)

// Partial unique index over (doctor_id, scheduled_at) excluding cancelled
// rows. Backstop for the slot pre-check.
const constraintSlot = "appointment_slot_key"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Book validates and persists a new appointment in the REQUESTED state. The
// same doctor cannot hold two live appointments at the same start time.
func (s *Service) Book(ctx context.Context, a *Appointment, createdBy string) error {
	if err := s.validate(a); err != nil {
		return err
	}
	a.normalize()
	if err := s.checkSlot(ctx, a, uuid.Nil); err != nil {
		return err
	}
	a.Status = StatusRequested
	a.CreatedBy = createdBy
	if err := s.repo.Create(ctx, a); err != nil {
		if db.IsUniqueViolation(err, constraintSlot) {
			return slotConflict(a)
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("appointment", id.String())
		}
		return nil, err
	}
	return a, nil
}

// Reschedule replaces the editable fields. Status only moves through
// Transition; terminal appointments cannot be edited.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, a *Appointment) (*Appointment, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusCompleted || existing.Status == StatusCancelled {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("a %s appointment cannot be edited", existing.Status),
		})
	}
	if err := s.validate(a); err != nil {
		return nil, err
	}
	a.normalize()
	if err := s.checkSlot(ctx, a, id); err != nil {
		return nil, err
	}
	a.ID = id
	if err := s.repo.Update(ctx, a); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("appointment", id.String())
		}
		if db.IsUniqueViolation(err, constraintSlot) {
			return nil, slotConflict(a)
		}
		return nil, err
	}
	return a, nil
}

// Transition moves an appointment through its lifecycle.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Appointment, error) {
	if !ValidStatus(to) {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("unknown status %q", to),
		})
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("cannot move from %s to %s", a.Status, to),
		})
	}
	if err := s.repo.SetStatus(ctx, id, to); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("appointment", id.String())
		}
		return nil, err
	}
	a.Status = to
	return a, nil
}

// Cancel removes an appointment. A REQUESTED appointment that nobody acted
// on is hard-deleted; anything later flips to CANCELLED so the history
// stays intact.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (deleted bool, err error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if a.Status == StatusRequested {
		if err := s.repo.Delete(ctx, id); err != nil && !db.IsNoRows(err) {
			return false, err
		}
		return true, nil
	}
	if a.Status == StatusCancelled {
		return false, nil
	}
	if err := s.repo.SetStatus(ctx, id, StatusCancelled); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) validate(a *Appointment) error {
	draft := a.draft()
	if missing := Rules.Missing(draft); len(missing) > 0 {
		return respond.MissingFieldsError(missing)
	}
	if fields := Rules.Validate(draft); len(fields) > 0 {
		return respond.NewValidationError(fields)
	}
	return nil
}

func (s *Service) checkSlot(ctx context.Context, a *Appointment, self uuid.UUID) error {
	other, err := s.repo.GetBySlot(ctx, a.DoctorID, a.ScheduledAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil
		}
		return err
	}
	if other.ID == self {
		return nil
	}
	return slotConflict(a)
}

func slotConflict(a *Appointment) error {
	return respond.NewConflictError("scheduledAt", a.ScheduledAt.Format(time.RFC3339))
}
