package admission

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

const admissionCols = `id, patient_id, patient_name, mr_number, ward_name, ward_tier,
	room_number, bed_number, admission_date, attending_doctor, created_at`

func (r *pgRepo) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	var tier *string
	err := row.Scan(&p.ID, &p.PatientID, &p.PatientName, &p.MRNumber, &p.WardName, &tier,
		&p.RoomNumber, &p.BedNumber, &p.AdmissionDate, &p.AttendingDoctor, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if tier != nil {
		t := WardTier(*tier)
		p.WardTier = &t
	}
	return &p, nil
}

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	var tier *string
	if p.WardTier != nil {
		s := string(*p.WardTier)
		tier = &s
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO admission (id, patient_id, patient_name, mr_number, ward_name, ward_tier,
			room_number, bed_number, admission_date, attending_doctor)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		p.ID, p.PatientID, p.PatientName, p.MRNumber, p.WardName, tier,
		p.RoomNumber, p.BedNumber, p.AdmissionDate, p.AttendingDoctor).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admission: %w", err)
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+admissionCols+` FROM admission WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *pgRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM admission`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+admissionCols+`
		FROM admission ORDER BY admission_date DESC, patient_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
