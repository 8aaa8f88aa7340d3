package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

// PGStore persists bills in Postgres. Work inside InTx shares one transaction.
type PGStore struct {
	pool *pgxpool.Pool
	tx   *db.Transactor
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, tx: db.NewTransactor(pool)}
}

func (r *PGStore) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *PGStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.tx.InTx(ctx, fn)
}

const billCols = `id, bill_number, admission_id, patient_id, patient_name, mr_number,
	admission_date, discharge_date, ward_name, room_number, bed_number, doctor_name,
	total_amount, discount_percent, discount, paid_amount, status, generated_date,
	created_at, updated_at`

func (r *PGStore) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.BillNumber, &b.AdmissionID, &b.PatientID, &b.PatientName, &b.MRNumber,
		&b.AdmissionDate, &b.DischargeDate, &b.WardName, &b.RoomNumber, &b.BedNumber, &b.DoctorName,
		&b.TotalAmount, &b.DiscountPercent, &b.Discount, &b.PaidAmount, &b.Status, &b.GeneratedDate,
		&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *PGStore) Create(ctx context.Context, b *Bill, items []*Item) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bill (id, bill_number, admission_id, patient_id, patient_name, mr_number,
			admission_date, discharge_date, ward_name, room_number, bed_number, doctor_name,
			total_amount, discount_percent, discount, paid_amount, status, generated_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING created_at, updated_at`,
		b.ID, b.BillNumber, b.AdmissionID, b.PatientID, b.PatientName, b.MRNumber,
		b.AdmissionDate, b.DischargeDate, b.WardName, b.RoomNumber, b.BedNumber, b.DoctorName,
		b.TotalAmount, b.DiscountPercent, b.Discount, b.PaidAmount, b.Status, b.GeneratedDate,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	for _, it := range items {
		it.BillID = b.ID
		if err := r.AddItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGStore) Update(ctx context.Context, b *Bill) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE bill SET total_amount = $2, discount_percent = $3, discount = $4,
			paid_amount = $5, status = $6, discharge_date = $7, updated_at = now()
		WHERE id = $1`,
		b.ID, b.TotalAmount, b.DiscountPercent, b.Discount, b.PaidAmount, b.Status, b.DischargeDate)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE id = $1`, id))
}

func (r *PGStore) GetByNumber(ctx context.Context, number string) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bill WHERE bill_number = $1`, number))
}

func (r *PGStore) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bill WHERE bill_number = $1)`, number).Scan(&exists)
	return exists, err
}

// buildFilter renders f as a WHERE clause with positional args.
func buildFilter(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PatientID != "" {
		args = append(args, f.PatientID)
		conds = append(conds, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+strings.ToLower(f.Query)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(lower(bill_number) LIKE $%d OR lower(patient_name) LIKE $%d OR lower(mr_number) LIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PGStore) List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bill`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM bill%s ORDER BY generated_date DESC, bill_number DESC LIMIT $%d OFFSET $%d`,
		billCols, where, len(args)-1, len(args))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

const itemCols = `id, bill_id, sequence, catalog_id, category, description, quantity, rate, amount, created_at`

func (r *PGStore) AddItem(ctx context.Context, it *Item) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bill_item (id, bill_id, sequence, catalog_id, category, description, quantity, rate, amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		it.ID, it.BillID, it.Sequence, it.CatalogID, it.Category, it.Description, it.Quantity, it.Rate, it.Amount,
	).Scan(&it.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bill item: %w", err)
	}
	return nil
}

func (r *PGStore) DeleteItem(ctx context.Context, billID, itemID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM bill_item WHERE bill_id = $1 AND id = $2`, billID, itemID)
	if err != nil {
		return fmt.Errorf("delete bill item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PGStore) GetItems(ctx context.Context, billID uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM bill_item WHERE bill_id = $1 ORDER BY sequence`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BillID, &it.Sequence, &it.CatalogID, &it.Category, &it.Description,
			&it.Quantity, &it.Rate, &it.Amount, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *PGStore) AddPayment(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill_payment (id, bill_id, amount, method, reference, recorded_by, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.BillID, p.Amount, p.Method, p.Reference, p.RecordedBy, p.PaidAt)
	if err != nil {
		return fmt.Errorf("insert bill payment: %w", err)
	}
	return nil
}

func (r *PGStore) GetPayments(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, amount, method, reference, recorded_by, paid_at
		FROM bill_payment WHERE bill_id = $1 ORDER BY paid_at`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.BillID, &p.Amount, &p.Method, &p.Reference, &p.RecordedBy, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
