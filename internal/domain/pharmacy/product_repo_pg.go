package pharmacy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/record"
)

type productRepoPG struct {
	pool *pgxpool.Pool
}

func NewProductRepoPG(pool *pgxpool.Pool) ProductRepository {
	return &productRepoPG{pool: pool}
}

const productCols = `id, pharmacy_id, name, sku, barcode, description, category,
	price, stock, reorder_level, active, created_at, updated_at`

func (r *productRepoPG) Create(ctx context.Context, p *Product) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO product (
			id, pharmacy_id, name, sku, barcode, description, category,
			price, stock, reorder_level, active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.PharmacyID, p.Name, p.SKU, p.Barcode, p.Description, p.Category,
		p.Price.Ptr(), p.Stock.Ptr(), p.ReorderLevel.Ptr(), p.Active,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepoPG) GetByID(ctx context.Context, pharmacyID, id uuid.UUID) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productCols+` FROM product WHERE pharmacy_id = $1 AND id = $2`, pharmacyID, id))
}

func (r *productRepoPG) GetBySKU(ctx context.Context, pharmacyID uuid.UUID, sku string) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productCols+` FROM product WHERE pharmacy_id = $1 AND sku = $2`, pharmacyID, sku))
}

func (r *productRepoPG) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productCols+` FROM product WHERE barcode = $1`, barcode))
}

func (r *productRepoPG) Update(ctx context.Context, p *Product) error {
	return r.pool.QueryRow(ctx, `
		UPDATE product SET
			name=$3, sku=$4, barcode=$5, description=$6, category=$7,
			price=$8, stock=$9, reorder_level=$10, updated_at=NOW()
		WHERE pharmacy_id = $1 AND id = $2
		RETURNING active, created_at, updated_at`,
		p.PharmacyID, p.ID, p.Name, p.SKU, p.Barcode, p.Description, p.Category,
		p.Price.Ptr(), p.Stock.Ptr(), p.ReorderLevel.Ptr(),
	).Scan(&p.Active, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepoPG) SetActive(ctx context.Context, pharmacyID, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product SET active=$3, updated_at=NOW() WHERE pharmacy_id = $1 AND id = $2`,
		pharmacyID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepoPG) List(ctx context.Context, pharmacyID uuid.UUID, f ProductFilter, limit, offset int) ([]*Product, int, error) {
	conds := []string{`pharmacy_id = $1`}
	args := []interface{}{pharmacyID}
	idx := 2

	if f.Search != "" {
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d OR sku ILIKE $%d)`, idx, idx+1))
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
		idx += 2
	}
	if f.Category != "" {
		conds = append(conds, fmt.Sprintf(`category = $%d`, idx))
		args = append(args, f.Category)
		idx++
	}
	if f.LowStock {
		conds = append(conds, `stock <= reorder_level`)
	}
	switch f.Status {
	case "active":
		conds = append(conds, `active = TRUE`)
	case "inactive":
		conds = append(conds, `active = FALSE`)
	}

	where := " WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productCols + ` FROM product` + where +
		fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProductRows(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func scanProduct(row pgx.Row) (*Product, error) {
	return scanProductRows(row)
}

func scanProductRows(row interface{ Scan(dest ...interface{}) error }) (*Product, error) {
	p := &Product{}
	var price, stock, reorder *float64
	err := row.Scan(
		&p.ID, &p.PharmacyID, &p.Name, &p.SKU, &p.Barcode, &p.Description, &p.Category,
		&price, &stock, &reorder, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Price = record.FromPtr(price)
	p.Stock = record.FromPtr(stock)
	p.ReorderLevel = record.FromPtr(reorder)
	return p, nil
}
