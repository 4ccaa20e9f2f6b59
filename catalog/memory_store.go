package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps products in a map guarded by a mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewMemoryStore creates a store holding the given products, with ids
// assigned from 1 in order.
func NewMemoryStore(seed ...Product) *MemoryStore {
	s := &MemoryStore{products: make(map[int64]Product), nextID: 1}
	for _, p := range seed {
		p.ID = s.nextID
		s.products[p.ID] = p
		s.nextID++
	}
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) Create(_ context.Context, p Product) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	s.products[p.ID] = p
	return &p, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, upd ProductUpdate) (*Product, *Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.products[id]
	if !ok {
		return nil, nil, ErrProductNotFound
	}
	after := before
	upd.apply(&after)
	s.products[id] = after
	return &before, &after, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	delete(s.products, id)
	return &p, nil
}
