package laborder

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/record"
)

// Lab order lifecycle. CANCELLED may be entered from any non-terminal state;
// COMPLETED and CANCELLED are terminal.
const (
	StatusOrdered    = "ORDERED"
	StatusCollected  = "COLLECTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

const (
	PriorityRoutine = "ROUTINE"
	PriorityUrgent  = "URGENT"
	PriorityStat    = "STAT"
)

var transitions = map[string][]string{
	StatusOrdered:    {StatusCollected, StatusCancelled},
	StatusCollected:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOrdered, StatusCollected, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patientId"`
	OrderedBy string    `db:"ordered_by" json:"orderedBy"`
	TestName  string    `db:"test_name" json:"testName"`
	TestCode  *string   `db:"test_code" json:"testCode,omitempty"`
	Priority  string    `db:"priority" json:"priority"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Result    *string   `db:"result" json:"result,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// StatusChange is one row of the order's audit trail.
type StatusChange struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"orderId"`
	From      string    `db:"from_status" json:"from"`
	To        string    `db:"to_status" json:"to"`
	ChangedBy string    `db:"changed_by" json:"changedBy"`
	ChangedAt time.Time `db:"changed_at" json:"changedAt"`
}

var Rules = record.RuleSet{
	Required: []string{"patientId", "orderedBy", "testName"},
	Formats: record.FieldRules{
		"testName": {record.MaxLen(200)},
		"priority": {record.OneOf(PriorityRoutine, PriorityUrgent, PriorityStat)},
	},
}

func (o *Order) draft() map[string]string {
	d := map[string]string{
		"orderedBy": o.OrderedBy,
		"testName":  o.TestName,
		"priority":  o.Priority,
	}
	if o.PatientID != uuid.Nil {
		d["patientId"] = o.PatientID.String()
	}
	return d
}

func (o *Order) normalize() {
	trim := func(s string) string {
		t := record.TrimString(&s)
		if t == nil {
			return ""
		}
		return *t
	}
	o.OrderedBy = trim(o.OrderedBy)
	o.TestName = trim(o.TestName)
	o.TestCode = record.TrimString(o.TestCode)
	o.Notes = record.TrimString(o.Notes)
	o.Priority = strings.ToUpper(trim(o.Priority))
	if o.Priority == "" {
		o.Priority = PriorityRoutine
	}
}
