package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Zero values mean "no constraint".
type Filter struct {
	Status   string
	DoctorID string
	Patient  uuid.UUID
	DateFrom time.Time
	DateTo   time.Time
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetBySlot finds a non-cancelled appointment for the doctor at the
	// exact start time.
	GetBySlot(ctx context.Context, doctorID string, at time.Time) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
}
