package prescription

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

const checkupCols = `id, number, patient_name, mr_number, age, gender, doctor, checkup_date,
	diagnosis, symptoms, medicines, advice, follow_up_date, created_at`

// medicines is stored as jsonb; pgx encodes and decodes the slice directly.
func (r *pgRepo) scan(row pgx.Row) (*Checkup, error) {
	var c Checkup
	err := row.Scan(&c.ID, &c.Number, &c.PatientName, &c.MRNumber, &c.Age, &c.Gender, &c.Doctor, &c.Date,
		&c.Diagnosis, &c.Symptoms, &c.Medicines, &c.Advice, &c.FollowUpDate, &c.CreatedAt)
	return &c, err
}

func (r *pgRepo) Create(ctx context.Context, c *Checkup) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO checkup (id, number, patient_name, mr_number, age, gender, doctor, checkup_date,
			diagnosis, symptoms, medicines, advice, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at`,
		c.ID, c.Number, c.PatientName, c.MRNumber, c.Age, c.Gender, c.Doctor, c.Date,
		c.Diagnosis, c.Symptoms, c.Medicines, c.Advice, c.FollowUpDate).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert checkup: %w", err)
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Checkup, error) {
	c, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+checkupCols+` FROM checkup WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM checkup WHERE number = $1)`, number).Scan(&exists)
	return exists, err
}

func (r *pgRepo) List(ctx context.Context, mrNumber string, limit, offset int) ([]*Checkup, int, error) {
	where := ""
	args := []interface{}{}
	if mrNumber != "" {
		where = " WHERE mr_number = $1"
		args = append(args, mrNumber)
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM checkup`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(`SELECT `+checkupCols+` FROM checkup`+where+
		` ORDER BY checkup_date DESC, number DESC LIMIT $%d OFFSET $%d`, n+1, n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Checkup
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
