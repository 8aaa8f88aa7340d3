package billing

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps bills in process memory. It implements both Repository
// and Transactor; a failed InTx restores the state captured when it began.
type MemoryStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	bills    map[uuid.UUID]*Bill
	items    map[uuid.UUID][]*Item
	payments map[uuid.UUID][]*Payment
	clock    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bills:    make(map[uuid.UUID]*Bill),
		items:    make(map[uuid.UUID][]*Item),
		payments: make(map[uuid.UUID][]*Payment),
		clock:    time.Now,
	}
}

type memorySnapshot struct {
	bills    map[uuid.UUID]*Bill
	items    map[uuid.UUID][]*Item
	payments map[uuid.UUID][]*Payment
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		bills:    make(map[uuid.UUID]*Bill, len(s.bills)),
		items:    make(map[uuid.UUID][]*Item, len(s.items)),
		payments: make(map[uuid.UUID][]*Payment, len(s.payments)),
	}
	for k, v := range s.bills {
		snap.bills[k] = v.clone()
	}
	for k, v := range s.items {
		snap.items[k] = append([]*Item(nil), v...)
	}
	for k, v := range s.payments {
		snap.payments[k] = append([]*Payment(nil), v...)
	}
	return snap
}

// InTx serializes transactions; writes made outside one are not isolated.
func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.bills, s.items, s.payments = snap.bills, snap.items, snap.payments
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Create(_ context.Context, b *Bill, items []*Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt, b.UpdatedAt = now, now
	s.bills[b.ID] = b.clone()
	stored := make([]*Item, 0, len(items))
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		it.BillID = b.ID
		it.CreatedAt = now
		stored = append(stored, it.clone())
	}
	s.items[b.ID] = stored
	return nil
}

func (s *MemoryStore) Update(_ context.Context, b *Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bills[b.ID]
	if !ok {
		return ErrNotFound
	}
	b.UpdatedAt = s.clock()
	next := cur.clone()
	next.TotalAmount = b.TotalAmount
	next.DiscountPercent = b.DiscountPercent
	next.Discount = b.Discount
	next.PaidAmount = b.PaidAmount
	next.Status = b.Status
	if b.DischargeDate != nil {
		d := *b.DischargeDate
		next.DischargeDate = &d
	}
	next.UpdatedAt = b.UpdatedAt
	s.bills[b.ID] = next
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bills[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

func (s *MemoryStore) GetByNumber(_ context.Context, number string) (*Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bills {
		if b.BillNumber == number {
			return b.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) NumberExists(ctx context.Context, number string) (bool, error) {
	_, err := s.GetByNumber(ctx, number)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func matchesFilter(b *Bill, f Filter) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.PatientID != "" && b.PatientID != f.PatientID {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(b.BillNumber), q) &&
			!strings.Contains(strings.ToLower(b.PatientName), q) &&
			!strings.Contains(strings.ToLower(b.MRNumber), q) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) List(_ context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	s.mu.RLock()
	var all []*Bill
	for _, b := range s.bills {
		if matchesFilter(b, f) {
			all = append(all, b.clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].GeneratedDate.Equal(all[j].GeneratedDate) {
			return all[i].GeneratedDate.After(all[j].GeneratedDate)
		}
		return all[i].BillNumber > all[j].BillNumber
	})
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) AddItem(_ context.Context, it *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[it.BillID]; !ok {
		return ErrNotFound
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.CreatedAt = s.clock()
	s.items[it.BillID] = append(s.items[it.BillID], it.clone())
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, billID, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[billID]
	for i, it := range items {
		if it.ID == itemID {
			next := make([]*Item, 0, len(items)-1)
			next = append(next, items[:i]...)
			s.items[billID] = append(next, items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *MemoryStore) GetItems(_ context.Context, billID uuid.UUID) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Item, 0, len(s.items[billID]))
	for _, it := range s.items[billID] {
		out = append(out, it.clone())
	}
	return out, nil
}

func (s *MemoryStore) AddPayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bills[p.BillID]; !ok {
		return ErrNotFound
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	s.payments[p.BillID] = append(s.payments[p.BillID], &cp)
	return nil
}

func (s *MemoryStore) GetPayments(_ context.Context, billID uuid.UUID) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Payment, 0, len(s.payments[billID]))
	for _, p := range s.payments[billID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}
