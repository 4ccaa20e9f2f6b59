package orders

import (
	"context"
	"sync"
)

// MemoryStore keeps orders in insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	orders  []Order
	intents map[string]struct{}
	nextID  int64
}

// NewMemoryStore creates an empty store. Order ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{intents: make(map[string]struct{}), nextID: 1}
}

func (s *MemoryStore) Create(_ context.Context, o Order) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.PaymentIntentID != "" {
		if _, used := s.intents[o.PaymentIntentID]; used {
			return nil, ErrDuplicatePaymentIntent
		}
		s.intents[o.PaymentIntentID] = struct{}{}
	}

	o.OrderID = s.nextID
	s.nextID++
	o.LineItems = append([]LineItem(nil), o.LineItems...)
	s.orders = append(s.orders, o)

	out := o
	out.LineItems = append([]LineItem(nil), o.LineItems...)
	return &out, nil
}

// ListByUser returns the user's orders, newest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID int64) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if o.UserID != userID {
			continue
		}
		o.LineItems = append([]LineItem(nil), o.LineItems...)
		out = append(out, o)
	}
	return out, nil
}
