package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) DoctorStats(ctx context.Context, from, to time.Time) ([]*DoctorStats, error) {
	var conds []string
	args := []interface{}{}
	if !from.IsZero() {
		args = append(args, from)
		conds = append(conds, `scheduled_at >= $1`)
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 2 {
			conds = append(conds, `scheduled_at <= $2`)
		} else {
			conds = append(conds, `scheduled_at <= $1`)
		}
	}
	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, status, COUNT(*)
		FROM appointment`+where+`
		GROUP BY doctor_id, status
		ORDER BY doctor_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDoctor := map[string]*DoctorStats{}
	var order []string
	for rows.Next() {
		var doctorID, status string
		var count int
		if err := rows.Scan(&doctorID, &status, &count); err != nil {
			return nil, err
		}
		ds, ok := byDoctor[doctorID]
		if !ok {
			ds = &DoctorStats{DoctorID: doctorID, ByStatus: map[string]int{}}
			byDoctor[doctorID] = ds
			order = append(order, doctorID)
		}
		ds.Total += count
		ds.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Distinct patients spans statuses, so it needs its own pass.
	prows, err := r.pool.Query(ctx, `
		SELECT doctor_id, COUNT(DISTINCT patient_id)
		FROM appointment`+where+`
		GROUP BY doctor_id`, args...)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var doctorID string
		var distinct int
		if err := prows.Scan(&doctorID, &distinct); err != nil {
			return nil, err
		}
		if ds, ok := byDoctor[doctorID]; ok {
			ds.DistinctPatients = distinct
		}
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	stats := make([]*DoctorStats, 0, len(order))
	for _, id := range order {
		stats = append(stats, byDoctor[id])
	}
	return stats, nil
}

func (r *repoPG) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: time.Now().UTC()}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE active),
		       COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE)
		FROM patient`,
	).Scan(&d.Patients.Total, &d.Patients.Active, &d.Patients.NewToday); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE scheduled_at::date = CURRENT_DATE),
		       COUNT(*) FILTER (WHERE status IN ('REQUESTED','CONFIRMED')),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED')
		FROM appointment`,
	).Scan(&d.Appointments.Today, &d.Appointments.Pending, &d.Appointments.Completed); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status NOT IN ('COMPLETED','CANCELLED')),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED')
		FROM lab_order`,
	).Scan(&d.LabOrders.Open, &d.LabOrders.Completed); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pharmacy WHERE active`,
	).Scan(&d.Pharmacies.Active); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM product WHERE active AND stock <= reorder_level`,
	).Scan(&d.Pharmacies.LowStock); err != nil {
		return nil, err
	}

	return d, nil
}
