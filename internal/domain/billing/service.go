package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/platform/sequence"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrBillSettled rejects changes that would reopen or overpay a paid bill.
	ErrBillSettled = errors.New("bill is already settled")
	ErrOverpayment = errors.New("payment exceeds balance due")
	// ErrBillLocked rejects item removal once a payment has been recorded.
	ErrBillLocked = errors.New("bill has payments and its items can no longer be removed")
)

const numberAttempts = 8

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// AdmissionLookup resolves the admission a bill is generated for.
type AdmissionLookup interface {
	GetAdmission(ctx context.Context, id uuid.UUID) (*admission.Patient, error)
}

// CatalogLookup resolves catalog references on line items.
type CatalogLookup interface {
	GetEntry(ctx context.Context, id uuid.UUID) (*catalog.Entry, error)
}

// Service owns every bill mutation. One mutex serializes writers so that a
// read-modify-write of a bill never interleaves with another.
type Service struct {
	mu         sync.Mutex
	bills      Repository
	tx         Transactor
	admissions AdmissionLookup
	catalog    CatalogLookup
	numbers    sequence.Generator
	clock      func() time.Time
}

func NewService(bills Repository, tx Transactor, admissions AdmissionLookup, cat CatalogLookup, numbers sequence.Generator) *Service {
	return &Service{
		bills:      bills,
		tx:         tx,
		admissions: admissions,
		catalog:    cat,
		numbers:    numbers,
		clock:      time.Now,
	}
}

// SetClock replaces the time source used for day counts and timestamps.
func (s *Service) SetClock(clock func() time.Time) {
	s.clock = clock
}

// ItemInput describes a line item. With CatalogID set, empty category,
// description and a zero rate are filled from the catalog entry.
type ItemInput struct {
	CatalogID   *uuid.UUID      `json:"catalog_id,omitempty"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type CreateBillInput struct {
	AdmissionID     uuid.UUID
	Items           []ItemInput
	DiscountPercent decimal.Decimal
	GeneratedDate   *time.Time
	DischargeDate   *time.Time
}

type PaymentInput struct {
	Amount     decimal.Decimal
	Method     string
	Reference  string
	RecordedBy string
	PaidAt     *time.Time
}

func (s *Service) resolveItem(ctx context.Context, in ItemInput) (*Item, error) {
	it := &Item{
		CatalogID:   in.CatalogID,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		Rate:        in.Rate,
	}
	if in.CatalogID != nil {
		entry, err := s.catalog.GetEntry(ctx, *in.CatalogID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, invalid("catalog service %s not found", *in.CatalogID)
		}
		if err != nil {
			return nil, err
		}
		if it.Category == "" {
			it.Category = entry.Category
		}
		if it.Description == "" {
			it.Description = entry.Name
		}
		if it.Rate.IsZero() {
			it.Rate = entry.Rate
		}
	}
	if it.Category == "" {
		return nil, invalid("category is required")
	}
	if it.Description == "" {
		return nil, invalid("description is required")
	}
	if it.Quantity <= 0 {
		return nil, invalid("quantity must be positive")
	}
	if it.Rate.IsNegative() {
		return nil, invalid("rate must not be negative")
	}
	if !wholePaise(it.Rate) {
		return nil, invalid("rate must not have more than 2 decimal places")
	}
	it.Amount = it.Rate.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return it, nil
}

func validateDiscount(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return invalid("discount_percent must be between 0 and 100")
	}
	return nil
}

func (s *Service) nextNumber(ctx context.Context) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		n, err := s.numbers.Next(ctx)
		if err != nil {
			return "", fmt.Errorf("next bill number: %w", err)
		}
		number := fmt.Sprintf("%s%d", billNumberPrefix, n)
		exists, err := s.bills.NumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free bill number after %d attempts", numberAttempts)
}

// CreateBill generates a bill for an admission. Without explicit items it
// bills the tariff defaults for the admission's ward tier.
func (s *Service) CreateBill(ctx context.Context, in CreateBillInput) (*Detail, error) {
	if err := validateDiscount(in.DiscountPercent); err != nil {
		return nil, err
	}
	adm, err := s.admissions.GetAdmission(ctx, in.AdmissionID)
	if errors.Is(err, admission.ErrNotFound) {
		return nil, invalid("admission %s not found", in.AdmissionID)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var items []*Item
	if len(in.Items) == 0 {
		items = DefaultItems(adm, now)
	} else {
		for i, raw := range in.Items {
			it, err := s.resolveItem(ctx, raw)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			it.Sequence = i + 1
			items = append(items, it)
		}
	}

	generated := now
	if in.GeneratedDate != nil {
		generated = *in.GeneratedDate
	}
	if in.DischargeDate != nil && in.DischargeDate.Before(adm.AdmissionDate) {
		return nil, invalid("discharge_date is before admission_date")
	}

	admissionID := adm.ID
	b := &Bill{
		AdmissionID:     &admissionID,
		PatientID:       adm.PatientID,
		PatientName:     adm.PatientName,
		MRNumber:        adm.MRNumber,
		AdmissionDate:   adm.AdmissionDate,
		DischargeDate:   in.DischargeDate,
		WardName:        adm.WardName,
		RoomNumber:      adm.RoomNumber,
		BedNumber:       adm.BedNumber,
		DoctorName:      adm.AttendingDoctor,
		DiscountPercent: in.DiscountPercent,
		PaidAmount:      decimal.Zero,
		GeneratedDate:   generated,
	}
	recompute(b, items)

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		number, err := s.nextNumber(ctx)
		if err != nil {
			return err
		}
		b.BillNumber = number
		return s.bills.Create(ctx, b, items)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, b.ID)
}

// AddItem appends a line item and recomputes totals and status. Bills whose
// payments have cleared the balance are closed to new charges.
func (s *Service) AddItem(ctx context.Context, billID uuid.UUID, in ItemInput) (*Detail, error) {
	it, err := s.resolveItem(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		if b.PaidAmount.IsPositive() && !BalanceDue(b.TotalAmount, b.Discount, b.PaidAmount).IsPositive() {
			return ErrBillSettled
		}
		items, err := s.bills.GetItems(ctx, billID)
		if err != nil {
			return err
		}
		it.BillID = billID
		it.Sequence = nextSequence(items)
		if err := s.bills.AddItem(ctx, it); err != nil {
			return err
		}
		recompute(b, append(items, it))
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, billID)
}

func nextSequence(items []*Item) int {
	last := 0
	for _, it := range items {
		if it.Sequence > last {
			last = it.Sequence
		}
	}
	return last + 1
}

// RemoveItem deletes a line item while the bill has no payments.
func (s *Service) RemoveItem(ctx context.Context, billID, itemID uuid.UUID) (*Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		payments, err := s.bills.GetPayments(ctx, billID)
		if err != nil {
			return err
		}
		if len(payments) > 0 || b.PaidAmount.IsPositive() {
			return ErrBillLocked
		}
		if err := s.bills.DeleteItem(ctx, billID, itemID); err != nil {
			return err
		}
		items, err := s.bills.GetItems(ctx, billID)
		if err != nil {
			return err
		}
		recompute(b, items)
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, billID)
}

// RecordPayment stores a payment of at most the balance due and re-derives
// the bill status.
func (s *Service) RecordPayment(ctx context.Context, billID uuid.UUID, in PaymentInput) (*Detail, error) {
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be positive")
	}
	if !wholePaise(in.Amount) {
		return nil, invalid("amount must not have more than 2 decimal places")
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = MethodCash
	}
	if !validMethods[method] {
		return nil, invalid("unsupported payment method %q", in.Method)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		b, err := s.bills.GetByID(ctx, billID)
		if err != nil {
			return err
		}
		balance := BalanceDue(b.TotalAmount, b.Discount, b.PaidAmount)
		if !balance.IsPositive() {
			return ErrBillSettled
		}
		if in.Amount.GreaterThan(balance) {
			return fmt.Errorf("%w: %s requested, %s due", ErrOverpayment, in.Amount.StringFixed(2), balance.StringFixed(2))
		}
		paidAt := s.clock()
		if in.PaidAt != nil {
			paidAt = *in.PaidAt
		}
		p := &Payment{
			BillID:     billID,
			Amount:     in.Amount,
			Method:     method,
			Reference:  strings.TrimSpace(in.Reference),
			RecordedBy: in.RecordedBy,
			PaidAt:     paidAt,
		}
		if err := s.bills.AddPayment(ctx, p); err != nil {
			return err
		}
		b.PaidAmount = b.PaidAmount.Add(in.Amount)
		b.Status = DeriveStatus(b.TotalAmount, b.Discount, b.PaidAmount)
		return s.bills.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, billID)
}

func (s *Service) detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.bills.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })
	payments, err := s.bills.GetPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Bill: b, Items: items, Payments: payments, Summary: Summarize(b, items)}, nil
}

func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Detail, error) {
	return s.detail(ctx, id)
}

func (s *Service) GetBillByNumber(ctx context.Context, number string) (*Detail, error) {
	b, err := s.bills.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, b.ID)
}

func (s *Service) GetItems(ctx context.Context, id uuid.UUID) ([]*Item, error) {
	if _, err := s.bills.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.bills.GetItems(ctx, id)
}

func (s *Service) GetPayments(ctx context.Context, id uuid.UUID) ([]*Payment, error) {
	if _, err := s.bills.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.bills.GetPayments(ctx, id)
}

func (s *Service) ListBills(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, invalid("unknown status %q", f.Status)
	}
	return s.bills.List(ctx, f, limit, offset)
}

func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d.Summary, nil
}

// PaymentDraft returns the values the payment dialog opens with. The
// balance already accounts for the discount.
func (s *Service) PaymentDraft(ctx context.Context, id uuid.UUID) (*PaymentDraft, error) {
	b, err := s.bills.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	balance := BalanceDue(b.TotalAmount, b.Discount, b.PaidAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return &PaymentDraft{
		BillID:      b.ID,
		BillNumber:  b.BillNumber,
		PatientName: b.PatientName,
		Balance:     balance,
		Method:      MethodCash,
		Methods:     []string{MethodCash, MethodCard, MethodUPI, MethodInsurance, MethodBankTransfer},
	}, nil
}

// DefaultItemsPreview shows what CreateBill would charge for an admission.
type DefaultItemsPreview struct {
	AdmissionID  uuid.UUID          `json:"admission_id"`
	WardTier     admission.WardTier `json:"ward_tier"`
	DaysAdmitted int                `json:"days_admitted"`
	Items        []*Item            `json:"items"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
}

func (s *Service) PreviewDefaultItems(ctx context.Context, admissionID uuid.UUID) (*DefaultItemsPreview, error) {
	adm, err := s.admissions.GetAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	items := DefaultItems(adm, now)
	return &DefaultItemsPreview{
		AdmissionID:  adm.ID,
		WardTier:     adm.Tier(),
		DaysAdmitted: DaysAdmitted(adm.AdmissionDate, now),
		Items:        items,
		Subtotal:     Subtotal(items),
	}, nil
}
