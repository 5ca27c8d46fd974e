package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/record"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const apptCols = `id, patient_id, doctor_id, scheduled_at, duration_min, reason, notes,
	status, created_by, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointment (
			id, patient_id, doctor_id, scheduled_at, duration_min, reason, notes,
			status, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.ScheduledAt, a.DurationMin.Ptr(), a.Reason, a.Notes,
		a.Status, a.CreatedBy,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) GetBySlot(ctx context.Context, doctorID string, at time.Time) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment
		 WHERE doctor_id = $1 AND scheduled_at = $2 AND status <> $3`,
		doctorID, at, StatusCancelled))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		UPDATE appointment SET
			patient_id=$2, doctor_id=$3, scheduled_at=$4, duration_min=$5,
			reason=$6, notes=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING status, created_by, created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.ScheduledAt, a.DurationMin.Ptr(),
		a.Reason, a.Notes,
	).Scan(&a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var conds []string
	var args []interface{}
	idx := 1

	add := func(cond string, val interface{}) {
		conds = append(conds, fmt.Sprintf(cond, idx))
		args = append(args, val)
		idx++
	}
	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.DoctorID != "" {
		add(`doctor_id = $%d`, f.DoctorID)
	}
	if f.Patient != uuid.Nil {
		add(`patient_id = $%d`, f.Patient)
	}
	if !f.DateFrom.IsZero() {
		add(`scheduled_at >= $%d`, f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add(`scheduled_at <= $%d`, f.DateTo)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptCols + ` FROM appointment` + where +
		fmt.Sprintf(` ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appts := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointmentRows(rows)
		if err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	return scanAppointmentRows(row)
}

func scanAppointmentRows(row rowScanner) (*Appointment, error) {
	a := &Appointment{}
	var duration *float64
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledAt, &duration, &a.Reason, &a.Notes,
		&a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.DurationMin = record.FromPtr(duration)
	return a, nil
}
