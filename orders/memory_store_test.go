package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAssignsIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.Create(ctx, Order{UserID: 1, Total: decimal.NewFromInt(5)})
	require.NoError(t, err)
	second, err := s.Create(ctx, Order{UserID: 1, Total: decimal.NewFromInt(6)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.OrderID)
	assert.Equal(t, int64(2), second.OrderID)
}

func TestMemoryStore_PaymentIntentBacksOneOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, Order{UserID: 1, PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, Order{UserID: 2, PaymentIntentID: "pi_1"})
	assert.ErrorIs(t, err, ErrDuplicatePaymentIntent)

	// Orders without an intent never collide.
	_, err = s.Create(ctx, Order{UserID: 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, Order{UserID: 1})
	require.NoError(t, err)
}

func TestMemoryStore_ListByUserNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, uid := range []int64{1, 2, 1, 1} {
		_, err := s.Create(ctx, Order{UserID: uid})
		require.NoError(t, err)
	}

	orders, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int64{4, 3, 1}, []int64{orders[0].OrderID, orders[1].OrderID, orders[2].OrderID})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	items := []LineItem{{ProductID: 1, Name: "A", Price: decimal.NewFromInt(10)}}
	created, err := s.Create(ctx, Order{UserID: 1, LineItems: items})
	require.NoError(t, err)

	items[0].Name = "mutated"
	created.LineItems[0].Name = "mutated too"

	orders, err := s.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", orders[0].LineItems[0].Name)
}
