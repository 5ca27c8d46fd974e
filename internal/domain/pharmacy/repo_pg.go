package pharmacy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const pharmacyCols = `id, name, license_no, phone, email, address, contact,
	active, created_by, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO pharmacy (id, name, license_no, phone, email, address, contact, active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.LicenseNo, p.Phone, p.Email, p.Address, p.Contact, p.Active, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.pool.QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *repoPG) GetByLicense(ctx context.Context, licenseNo string) (*Pharmacy, error) {
	return scanPharmacy(r.pool.QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE license_no = $1`, licenseNo))
}

func (r *repoPG) Update(ctx context.Context, p *Pharmacy) error {
	return r.pool.QueryRow(ctx, `
		UPDATE pharmacy SET
			name=$2, license_no=$3, phone=$4, email=$5, address=$6, contact=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING active, created_by, created_at, updated_at`,
		p.ID, p.Name, p.LicenseNo, p.Phone, p.Email, p.Address, p.Contact,
	).Scan(&p.Active, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pharmacy SET active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Pharmacy, int, error) {
	var conds []string
	var args []interface{}
	idx := 1

	if f.Search != "" {
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d OR license_no ILIKE $%d)`, idx, idx+1))
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
		idx += 2
	}
	switch f.Status {
	case "active":
		conds = append(conds, `active = TRUE`)
	case "inactive":
		conds = append(conds, `active = FALSE`)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + pharmacyCols + ` FROM pharmacy` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	pharmacies := []*Pharmacy{}
	for rows.Next() {
		p := &Pharmacy{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.LicenseNo, &p.Phone, &p.Email, &p.Address, &p.Contact,
			&p.Active, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		pharmacies = append(pharmacies, p)
	}
	return pharmacies, total, rows.Err()
}

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	p := &Pharmacy{}
	err := row.Scan(
		&p.ID, &p.Name, &p.LicenseNo, &p.Phone, &p.Email, &p.Address, &p.Contact,
		&p.Active, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
