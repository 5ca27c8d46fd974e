package patient

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

const patientCols = `id, first_name, last_name, phone, email, gender, date_of_birth, nic,
	blood_group, height_cm, weight_kg, address, emergency_contact, insurance,
	active, created_by, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient (
			id, first_name, last_name, phone, email, gender, date_of_birth, nic,
			blood_group, height_cm, weight_kg, address, emergency_contact, insurance,
			active, created_by
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,
			$9,$10,$11,$12,$13,$14,
			$15,$16
		) RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.Gender, p.DateOfBirth, p.NIC,
		p.BloodGroup, p.HeightCM.Ptr(), p.WeightKG.Ptr(), p.Address, p.EmergencyContact, p.Insurance,
		p.Active, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByNIC(ctx context.Context, nic string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE nic = $1`, nic))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE email = $1`, email))
}

func (r *repoPG) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE phone = $1`, phone))
}

// Update never touches created_by or created_at; an unchanged PUT is
// idempotent apart from updated_at.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, phone=$4, email=$5, gender=$6, date_of_birth=$7, nic=$8,
			blood_group=$9, height_cm=$10, weight_kg=$11, address=$12, emergency_contact=$13, insurance=$14,
			active=$15, updated_at=NOW()
		WHERE id = $1
		RETURNING created_by, created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Phone, p.Email, p.Gender, p.DateOfBirth, p.NIC,
		p.BloodGroup, p.HeightCM.Ptr(), p.WeightKG.Ptr(), p.Address, p.EmergencyContact, p.Insurance,
		p.Active,
	).Scan(&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE patient SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// buildWhere translates a Filter into a WHERE clause with positional args.
func buildWhere(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	idx := 1

	add := func(cond string, vals ...interface{}) {
		for range vals {
			cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", idx), 1)
			idx++
		}
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if f.Search != "" {
		pat := "%" + f.Search + "%"
		add(`(first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ? OR nic ILIKE ? OR email ILIKE ?)`,
			pat, pat, pat, pat, pat)
	}
	if f.Gender != "" {
		add(`gender = ?`, f.Gender)
	}
	if f.BloodGroup != "" {
		add(`blood_group = ?`, f.BloodGroup)
	}
	switch f.Status {
	case "active":
		conds = append(conds, `active = TRUE`)
	case "inactive":
		conds = append(conds, `active = FALSE`)
	}
	if !f.BornFrom.IsZero() {
		add(`date_of_birth >= ?`, f.BornFrom)
	}
	if !f.BornTo.IsZero() {
		add(`date_of_birth <= ?`, f.BornTo)
	}
	if !f.RegisteredFrom.IsZero() {
		add(`created_at >= ?`, f.RegisteredFrom)
	}
	if !f.RegisteredTo.IsZero() {
		add(`created_at <= ?`, f.RegisteredTo)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var sortColumns = map[string]string{
	"firstName":   "first_name",
	"lastName":    "last_name",
	"createdAt":   "created_at",
	"dateOfBirth": "date_of_birth",
}

func orderClause(f Filter) string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	where, args := buildWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + patientCols + ` FROM patient` + where + orderClause(f) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatientRows(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) Stats(ctx context.Context, f Filter) (*Statistics, error) {
	where, args := buildWhere(f)

	stats := &Statistics{
		ByGender:     map[string]int{},
		ByBloodGroup: map[string]int{},
		ByAgeGroup:   map[string]int{},
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE active),
		       COUNT(*) FILTER (WHERE NOT active)
		FROM patient`+where, args...,
	).Scan(&stats.Total, &stats.Active, &stats.Inactive); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `gender`, where, args, stats.ByGender); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, `blood_group`, where, args, stats.ByBloodGroup); err != nil {
		return nil, err
	}

	// Age buckets share the boundaries in stats.go.
	ageExpr := `CASE
		WHEN date_of_birth > CURRENT_DATE - INTERVAL '18 years' THEN 'CHILD'
		WHEN date_of_birth > CURRENT_DATE - INTERVAL '35 years' THEN 'YOUNG_ADULT'
		WHEN date_of_birth > CURRENT_DATE - INTERVAL '50 years' THEN 'ADULT'
		WHEN date_of_birth > CURRENT_DATE - INTERVAL '65 years' THEN 'MIDDLE_AGED'
		ELSE 'SENIOR'
	END`
	if err := r.groupCount(ctx, ageExpr, where, args, stats.ByAgeGroup); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *repoPG) groupCount(ctx context.Context, expr, where string, args []interface{}, out map[string]int) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expr+` AS k, COUNT(*) FROM patient`+where+` GROUP BY k`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k *string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		if k == nil {
			continue
		}
		out[*k] = n
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row pgx.Row) (*Patient, error) {
	return scanPatientRows(row)
}

func scanPatientRows(row rowScanner) (*Patient, error) {
	p := &Patient{}
	var dob time.Time
	var height, weight *float64
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Phone, &p.Email, &p.Gender, &dob, &p.NIC,
		&p.BloodGroup, &height, &weight, &p.Address, &p.EmergencyContact, &p.Insurance,
		&p.Active, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.DateOfBirth = dob.Format("2006-01-02")
	p.HeightCM = record.FromPtr(height)
	p.WeightKG = record.FromPtr(weight)
	return p, nil
}
