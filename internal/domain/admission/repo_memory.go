package admission

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Patient
}

// NewMemoryRepo returns a process-local repository used when no database is
// configured.
func NewMemoryRepo() Repository {
	return &memoryRepo{items: make(map[uuid.UUID]*Patient)}
}

func (r *memoryRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	all := make([]*Patient, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].AdmissionDate.Equal(all[j].AdmissionDate) {
			return all[i].PatientName < all[j].PatientName
		}
		return all[i].AdmissionDate.After(all[j].AdmissionDate)
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
