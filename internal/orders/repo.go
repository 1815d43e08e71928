package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/delmas-dev/bartab/internal/apperr"
	"github.com/delmas-dev/bartab/internal/catalog"
)

// Repo implements Store on Postgres. Every lifecycle mutation commits in one
// transaction: order row (version-guarded), item set and stock decrements
// land together or not at all.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Drink(ctx context.Context, id string) (*catalog.Drink, error) {
	return (&catalog.Repo{DB: r.DB}).Drink(ctx, id)
}

const orderColumns = `id, customer_name, created_at, accepted_at, ready_at, completed_at,
	status, total_amount, is_partially_modified, modification_reason, last_modified_at, version`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.CreatedAt, &o.AcceptedAt, &o.ReadyAt,
		&o.CompletedAt, &o.Status, &o.TotalAmount, &o.PartiallyModified,
		&o.ModificationReason, &o.LastModifiedAt, &o.Version)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) Order(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, map[string]*Order{o.ID: o}, []string{o.ID}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) OrdersByStatus(ctx context.Context, st Status) ([]*Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 ORDER BY created_at`, st)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	byID := map[string]*Order{}
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, byID, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) loadItems(ctx context.Context, byID map[string]*Order, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, drink_id, drink_name, quantity, unit_price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.DrinkID, &it.DrinkName, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *Repo) AddOrder(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_name, created_at, accepted_at, ready_at, completed_at,
			status, total_amount, is_partially_modified, modification_reason, last_modified_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.CustomerName, o.CreatedAt, o.AcceptedAt, o.ReadyAt, o.CompletedAt,
		o.Status, o.TotalAmount, o.PartiallyModified, o.ModificationReason, o.LastModifiedAt, o.Version)
	if err != nil {
		return err
	}
	if err := insertItems(ctx, tx, o.Items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) SaveOrder(ctx context.Context, o *Order, dec []StockDecrement) ([]StockLevel, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current int
	err = tx.QueryRow(ctx, `SELECT version FROM orders WHERE id=$1 FOR UPDATE`, o.ID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order", o.ID)
	}
	if err != nil {
		return nil, err
	}
	if current != o.Version {
		return nil, apperr.Conflict("order", o.ID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET customer_name=$2, accepted_at=$3, ready_at=$4, completed_at=$5, status=$6,
			total_amount=$7, is_partially_modified=$8, modification_reason=$9,
			last_modified_at=$10, version=version+1
		WHERE id=$1`,
		o.ID, o.CustomerName, o.AcceptedAt, o.ReadyAt, o.CompletedAt, o.Status,
		o.TotalAmount, o.PartiallyModified, o.ModificationReason, o.LastModifiedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, o.ID); err != nil {
		return nil, err
	}
	if err := insertItems(ctx, tx, o.Items); err != nil {
		return nil, err
	}

	levels, err := applyDecrements(ctx, tx, dec)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	o.Version++
	return levels, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, items []OrderItem) error {
	for _, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, drink_id, drink_name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			it.ID, it.OrderID, it.DrinkID, it.DrinkName, it.Quantity, it.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

// applyDecrements locks each drink row, refuses to drive stock negative and
// returns the post-decrement levels. A drink deleted from the catalog since
// the availability check is skipped, matching the lenient snapshot path.
func applyDecrements(ctx context.Context, tx pgx.Tx, dec []StockDecrement) ([]StockLevel, error) {
	var levels []StockLevel
	for _, d := range dec {
		var qty decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT quantity FROM drinks WHERE id=$1 FOR UPDATE`, d.DrinkID).Scan(&qty)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if qty.LessThan(decimal.NewFromInt(int64(d.Quantity))) {
			return nil, apperr.BusinessRule("insufficient stock to accept this order")
		}
		var newQty decimal.Decimal
		err = tx.QueryRow(ctx, `
			UPDATE drinks SET quantity = quantity - $2, updated_at = now(), version = version + 1
			WHERE id=$1 RETURNING quantity`, d.DrinkID, d.Quantity).Scan(&newQty)
		if err != nil {
			return nil, err
		}
		levels = append(levels, StockLevel{DrinkID: d.DrinkID, Quantity: newQty})
	}
	return levels, nil
}
