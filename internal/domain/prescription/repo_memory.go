package prescription

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Checkup
}

func NewMemoryRepo() Repository {
	return &memoryRepo{items: make(map[uuid.UUID]*Checkup)}
}

func (r *memoryRepo) Create(_ context.Context, c *Checkup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.items[c.ID] = c.clone()
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Checkup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

func (r *memoryRepo) NumberExists(_ context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(_ context.Context, mrNumber string, limit, offset int) ([]*Checkup, int, error) {
	r.mu.RLock()
	var all []*Checkup
	for _, c := range r.items {
		if mrNumber == "" || c.MRNumber == mrNumber {
			all = append(all, c.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].Number > all[j].Number
		}
		return all[i].Date.After(all[j].Date)
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
