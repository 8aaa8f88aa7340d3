package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type pgRepo struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &pgRepo{pool: pool} }

func (r *pgRepo) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const entryCols = `id, category, name, rate, description, created_at`

func (r *pgRepo) scan(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.Category, &e.Name, &e.Rate, &e.Description, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgRepo) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO service_catalog (id, category, name, rate, description)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		e.ID, e.Category, e.Name, e.Rate, e.Description).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+entryCols+` FROM service_catalog WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *pgRepo) List(ctx context.Context, category string, limit, offset int) ([]*Entry, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM service_catalog WHERE $1 = '' OR lower(category) = lower($1)`,
		category).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+entryCols+` FROM service_catalog
		WHERE $1 = '' OR lower(category) = lower($1)
		ORDER BY category, name LIMIT $2 OFFSET $3`, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
