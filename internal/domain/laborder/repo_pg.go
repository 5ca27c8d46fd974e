package laborder

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

const orderCols = `id, patient_id, ordered_by, test_name, test_code, priority, notes, result,
	status, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	o.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO lab_order (
			id, patient_id, ordered_by, test_name, test_code, priority, notes, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		o.ID, o.PatientID, o.OrderedBy, o.TestName, o.TestCode, o.Priority, o.Notes, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM lab_order WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *Order) error {
	return r.pool.QueryRow(ctx, `
		UPDATE lab_order SET
			test_name=$2, test_code=$3, priority=$4, notes=$5, result=$6, updated_at=NOW()
		WHERE id = $1
		RETURNING patient_id, ordered_by, status, created_at, updated_at`,
		o.ID, o.TestName, o.TestCode, o.Priority, o.Notes, o.Result,
	).Scan(&o.PatientID, &o.OrderedBy, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

// SetStatus flips the order state and records the change in the history
// table within one transaction, so the trail never misses a hop.
func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, from, to, changedBy string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE lab_order SET status=$2, updated_at=NOW() WHERE id = $1 AND status = $3`,
		id, to, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lab_order_status_history (id, order_id, from_status, to_status, changed_by)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.New(), id, from, to, changedBy,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) History(ctx context.Context, id uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, from_status, to_status, changed_by, changed_at
		FROM lab_order_status_history
		WHERE order_id = $1
		ORDER BY changed_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []*StatusChange{}
	for rows.Next() {
		ch := &StatusChange{}
		if err := rows.Scan(&ch.ID, &ch.OrderID, &ch.From, &ch.To, &ch.ChangedBy, &ch.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Order, int, error) {
	var conds []string
	var args []interface{}
	idx := 1

	if f.Patient != uuid.Nil {
		conds = append(conds, fmt.Sprintf(`patient_id = $%d`, idx))
		args = append(args, f.Patient)
		idx++
	}
	if f.Status != "" {
		conds = append(conds, fmt.Sprintf(`status = $%d`, idx))
		args = append(args, f.Status)
		idx++
	}
	if f.Priority != "" {
		conds = append(conds, fmt.Sprintf(`priority = $%d`, idx))
		args = append(args, f.Priority)
		idx++
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lab_order`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderCols + ` FROM lab_order` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o := &Order{}
		if err := rows.Scan(
			&o.ID, &o.PatientID, &o.OrderedBy, &o.TestName, &o.TestCode, &o.Priority,
			&o.Notes, &o.Result, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	o := &Order{}
	err := row.Scan(
		&o.ID, &o.PatientID, &o.OrderedBy, &o.TestName, &o.TestCode, &o.Priority,
		&o.Notes, &o.Result, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}
