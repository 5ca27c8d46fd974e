package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/record"
)

// Appointment lifecycle. REQUESTED is the only state that allows a hard
// delete; COMPLETED and CANCELLED are terminal.
const (
	StatusRequested = "REQUESTED"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// transitions lists the allowed next states per current state.
var transitions = map[string][]string{
	StatusRequested: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether status may move from one state to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s string) bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	PatientID   uuid.UUID     `db:"patient_id" json:"patientId"`
	DoctorID    string        `db:"doctor_id" json:"doctorId"`
	ScheduledAt time.Time     `db:"scheduled_at" json:"scheduledAt"`
	DurationMin record.Number `db:"duration_min" json:"durationMinutes"`
	Reason      string        `db:"reason" json:"reason"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	Status      string        `db:"status" json:"status"`
	CreatedBy   string        `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

var Rules = record.RuleSet{
	Required: []string{"patientId", "doctorId", "scheduledAt", "reason"},
	Formats: record.FieldRules{
		"reason":          {record.MaxLen(500)},
		"durationMinutes": {record.Range(5, 480)},
	},
}

func (a *Appointment) draft() map[string]string {
	d := map[string]string{
		"doctorId":        a.DoctorID,
		"reason":          a.Reason,
		"durationMinutes": a.DurationMin.String(),
	}
	if a.PatientID != uuid.Nil {
		d["patientId"] = a.PatientID.String()
	}
	if !a.ScheduledAt.IsZero() {
		d["scheduledAt"] = a.ScheduledAt.Format(time.RFC3339)
	}
	return d
}

func (a *Appointment) normalize() {
	trim := func(s string) string {
		t := record.TrimString(&s)
		if t == nil {
			return ""
		}
		return *t
	}
	a.DoctorID = trim(a.DoctorID)
	a.Reason = trim(a.Reason)
	a.Notes = record.TrimString(a.Notes)
	a.ScheduledAt = a.ScheduledAt.UTC().Truncate(time.Minute)
	if !a.DurationMin.Valid {
		a.DurationMin = record.NewNumber(30)
	}
}
