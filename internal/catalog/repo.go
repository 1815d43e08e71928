package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/delmas-dev/bartab/internal/apperr"
)

// Repo implements Store on Postgres.
type Repo struct{ DB *pgxpool.Pool }

const drinkColumns = `id, name, quantity, category, description, price, created_at, updated_at, version`

func scanDrink(row pgx.Row) (*Drink, error) {
	var d Drink
	err := row.Scan(&d.ID, &d.Name, &d.Quantity, &d.Category, &d.Description,
		&d.Price, &d.CreatedAt, &d.UpdatedAt, &d.Version)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) Drink(ctx context.Context, id string) (*Drink, error) {
	d, err := scanDrink(r.DB.QueryRow(ctx, `SELECT `+drinkColumns+` FROM drinks WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("drink", id)
	}
	return d, err
}

func (r *Repo) Drinks(ctx context.Context) ([]*Drink, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+drinkColumns+` FROM drinks ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Drink
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) DrinksByCategory(ctx context.Context, c Category) ([]*Drink, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+drinkColumns+` FROM drinks WHERE category=$1 ORDER BY name`, c)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Drink
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) AddDrink(ctx context.Context, d *Drink) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO drinks(id, name, quantity, category, description, price, created_at, updated_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.Name, d.Quantity, d.Category, d.Description, d.Price, d.CreatedAt, d.UpdatedAt, d.Version)
	return err
}

// SaveDrink writes the drink back, guarded by the optimistic version column.
func (r *Repo) SaveDrink(ctx context.Context, d *Drink) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE drinks
		SET name=$2, quantity=$3, category=$4, description=$5, price=$6, updated_at=$7, version=version+1
		WHERE id=$1 AND version=$8`,
		d.ID, d.Name, d.Quantity, d.Category, d.Description, d.Price, d.UpdatedAt, d.Version)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		// row gone or version stale; distinguish for the caller
		if _, err := r.Drink(ctx, d.ID); err != nil {
			return err
		}
		return apperr.Conflict("drink", d.ID)
	}
	d.Version++
	return nil
}

func (r *Repo) RemoveDrink(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM drinks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("drink", id)
	}
	return nil
}
