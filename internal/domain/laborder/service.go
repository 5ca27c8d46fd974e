package laborder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/respond"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Place validates and persists a new lab order in the ORDERED state.
func (s *Service) Place(ctx context.Context, o *Order, orderedBy string) error {
	if o.OrderedBy == "" {
		o.OrderedBy = orderedBy
	}
	if err := s.validate(o); err != nil {
		return err
	}
	o.normalize()
	o.Status = StatusOrdered
	return s.repo.Create(ctx, o)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("lab order", id.String())
		}
		return nil, err
	}
	return o, nil
}

// Amend updates the editable fields of an open order. Terminal orders are
// read-only.
func (s *Service) Amend(ctx context.Context, id uuid.UUID, o *Order) (*Order, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusCompleted || existing.Status == StatusCancelled {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("a %s order cannot be edited", existing.Status),
		})
	}
	o.PatientID = existing.PatientID
	o.OrderedBy = existing.OrderedBy
	if err := s.validate(o); err != nil {
		return nil, err
	}
	o.normalize()
	o.ID = id
	if err := s.repo.Update(ctx, o); err != nil {
		if db.IsNoRows(err) {
			return nil, respond.NewNotFoundError("lab order", id.String())
		}
		return nil, err
	}
	return o, nil
}

// Transition moves the order one step along its lifecycle and records who
// made the change.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to, changedBy string) (*Order, error) {
	if !ValidStatus(to) {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("unknown status %q", to),
		})
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, respond.NewValidationError(map[string]string{
			"status": fmt.Sprintf("cannot move from %s to %s", o.Status, to),
		})
	}
	if err := s.repo.SetStatus(ctx, id, o.Status, to, changedBy); err != nil {
		if db.IsNoRows(err) {
			// Lost a race with a concurrent transition.
			return nil, respond.NewValidationError(map[string]string{
				"status": "order state changed, reload and retry",
			})
		}
		return nil, err
	}
	o.Status = to
	return o, nil
}

// Cancel is a convenience transition to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, changedBy string) (*Order, error) {
	return s.Transition(ctx, id, StatusCancelled, changedBy)
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Order, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) validate(o *Order) error {
	draft := o.draft()
	if missing := Rules.Missing(draft); len(missing) > 0 {
		return respond.MissingFieldsError(missing)
	}
	if fields := Rules.Validate(draft); len(fields) > 0 {
		return respond.NewValidationError(fields)
	}
	return nil
}
