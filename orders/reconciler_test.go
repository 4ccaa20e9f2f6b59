package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/payment"
)

func newTestReconciler(gw *mockGateway, requireConfirmation bool, n Notifier) (*Reconciler, *MemoryStore) {
	store := NewMemoryStore()
	r := NewReconciler(testCatalog(), gw, store, Options{
		Currency:            "USD",
		RequireConfirmation: requireConfirmation,
		Notifier:            n,
	}, discardLogger())
	return r, store
}

func TestCreatePaymentIntent_UsesCatalogPrices(t *testing.T) {
	gw := &mockGateway{}
	r, _ := newTestReconciler(gw, true, nil)

	intent, err := r.CreatePaymentIntent(context.Background(), 7, []CartLine{{ID: 1}, {ID: 2}})
	require.NoError(t, err)
	assert.Equal(t, "pi_test_secret", intent.ClientSecret)

	require.Len(t, gw.created, 1)
	req := gw.created[0]
	assert.Equal(t, int64(1501), req.Amount)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, int64(7), req.UserID)
	assert.NotEmpty(t, req.IdempotencyKey)
}

func TestCreatePaymentIntent_RepeatedLinesCountEachUnit(t *testing.T) {
	gw := &mockGateway{}
	r, _ := newTestReconciler(gw, true, nil)

	_, err := r.CreatePaymentIntent(context.Background(), 7, []CartLine{{ID: 1}, {ID: 1}, {ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), gw.created[0].Amount)
}

func TestCreatePaymentIntent_InvalidCart(t *testing.T) {
	tests := []struct {
		name     string
		cart     []CartLine
		wantCode string
		wantMsg  string
	}{
		{"nil cart", nil, apperror.CodeInvalidCart, "Cart is empty or invalid."},
		{"empty cart", []CartLine{}, apperror.CodeInvalidCart, "Cart is empty or invalid."},
		{"zero id", []CartLine{{ID: 0}}, apperror.CodeUnknownProduct, "Product with ID 0 not found."},
		{"negative id", []CartLine{{ID: -3}}, apperror.CodeUnknownProduct, "Product with ID -3 not found."},
		{"unknown product", []CartLine{{ID: 1}, {ID: 999}}, apperror.CodeUnknownProduct, "Product with ID 999 not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			r, _ := newTestReconciler(gw, true, nil)

			_, err := r.CreatePaymentIntent(context.Background(), 7, tt.cart)
			require.Error(t, err)
			ae, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, 400, ae.StatusCode())
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantMsg, ae.Message)
			assert.Empty(t, gw.created, "gateway must not be called")
		})
	}
}

func TestCreatePaymentIntent_GatewayFailure(t *testing.T) {
	gw := &mockGateway{
		CreateFunc: func(payment.IntentRequest) (*payment.Intent, error) {
			return nil, &payment.Error{Message: "Your card was declined."}
		},
	}
	r, _ := newTestReconciler(gw, true, nil)

	_, err := r.CreatePaymentIntent(context.Background(), 7, []CartLine{{ID: 1}})
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 500, ae.StatusCode())
	assert.Equal(t, apperror.CodeGatewayFailure, ae.Code)
	assert.Equal(t, "Your card was declined.", ae.Message)

	gw.CreateFunc = func(payment.IntentRequest) (*payment.Intent, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	_, err = r.CreatePaymentIntent(context.Background(), 7, []CartLine{{ID: 1}})
	ae, ok = apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, "Payment provider unavailable.", ae.Message)
}

func TestRecordOrder_Confirmed(t *testing.T) {
	gw := &mockGateway{
		GetFunc: func(id string) (*payment.Intent, error) { return succeededIntent(id, 1501, "7"), nil },
	}
	notifier := &recordingNotifier{}
	r, _ := newTestReconciler(gw, true, notifier)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.WithClock(func() time.Time { return fixed })

	order, err := r.RecordOrder(context.Background(), 7, []CartLine{{ID: 1}, {ID: 2}}, "pi_1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), order.OrderID)
	assert.Equal(t, int64(7), order.UserID)
	assert.True(t, decimal.RequireFromString("15.005").Equal(order.Total))
	assert.Equal(t, "pi_1", order.PaymentIntentID)
	assert.Equal(t, fixed, order.CreatedAt)
	require.Len(t, order.LineItems, 2)
	assert.Equal(t, "A", order.LineItems[0].Name)
	assert.Equal(t, "B", order.LineItems[1].Name)
	assert.Equal(t, []string{"pi_1"}, gw.fetched)

	require.Len(t, notifier.orders, 1)
	assert.Equal(t, order.OrderID, notifier.orders[0].OrderID)
}

func TestRecordOrder_ConfirmationFailures(t *testing.T) {
	cart := []CartLine{{ID: 1}, {ID: 2}}

	tests := []struct {
		name     string
		intentID string
		intent   *payment.Intent
		wantMsg  string
	}{
		{"missing intent id", "", nil, "paymentIntentId is required."},
		{"not succeeded", "pi_1", &payment.Intent{ID: "pi_1", Amount: 1501, Currency: "usd", Status: "requires_payment_method",
			Metadata: map[string]string{payment.MetadataUserID: "7"}}, "Payment has not succeeded."},
		{"amount too low", "pi_1", succeededIntent("pi_1", 1, "7"), "Payment amount does not match the cart total."},
		{"wrong currency", "pi_1", &payment.Intent{ID: "pi_1", Amount: 1501, Currency: "eur", Status: payment.StatusSucceeded,
			Metadata: map[string]string{payment.MetadataUserID: "7"}}, "Payment amount does not match the cart total."},
		{"other user's intent", "pi_1", succeededIntent("pi_1", 1501, "8"), "Payment does not belong to this account."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{
				GetFunc: func(string) (*payment.Intent, error) { return tt.intent, nil },
			}
			notifier := &recordingNotifier{}
			r, store := newTestReconciler(gw, true, notifier)

			_, err := r.RecordOrder(context.Background(), 7, cart, tt.intentID)
			require.Error(t, err)
			ae, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, 400, ae.StatusCode())
			assert.Equal(t, apperror.CodePaymentNotConfirmed, ae.Code)
			assert.Equal(t, tt.wantMsg, ae.Message)

			orders, err := store.ListByUser(context.Background(), 7)
			require.NoError(t, err)
			assert.Empty(t, orders)
			assert.Empty(t, notifier.orders)
		})
	}
}

func TestRecordOrder_UnknownIntent(t *testing.T) {
	r, _ := newTestReconciler(&mockGateway{}, true, nil)

	_, err := r.RecordOrder(context.Background(), 7, []CartLine{{ID: 1}}, "pi_missing")
	assert.True(t, apperror.HasCode(err, apperror.CodeGatewayFailure))
}

func TestRecordOrder_DuplicateIntent(t *testing.T) {
	gw := &mockGateway{
		GetFunc: func(id string) (*payment.Intent, error) { return succeededIntent(id, 1000, "7"), nil },
	}
	r, _ := newTestReconciler(gw, true, nil)
	ctx := context.Background()

	_, err := r.RecordOrder(ctx, 7, []CartLine{{ID: 1}}, "pi_once")
	require.NoError(t, err)

	_, err = r.RecordOrder(ctx, 7, []CartLine{{ID: 1}}, "pi_once")
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 409, ae.StatusCode())
	assert.Equal(t, apperror.CodePaymentAlreadyRecorded, ae.Code)
}

func TestRecordOrder_WithoutConfirmation(t *testing.T) {
	gw := &mockGateway{}
	r, _ := newTestReconciler(gw, false, nil)
	ctx := context.Background()

	order, err := r.RecordOrder(ctx, 7, []CartLine{{ID: 2}}, "")
	require.NoError(t, err)
	assert.Empty(t, order.PaymentIntentID)
	assert.Empty(t, gw.fetched)

	_, err = r.RecordOrder(ctx, 7, []CartLine{{ID: 999}}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownProduct))
}

func TestListOrdersForUser_Isolation(t *testing.T) {
	r, _ := newTestReconciler(&mockGateway{}, false, nil)
	ctx := context.Background()

	_, err := r.RecordOrder(ctx, 1, []CartLine{{ID: 1}}, "")
	require.NoError(t, err)
	_, err = r.RecordOrder(ctx, 2, []CartLine{{ID: 2}}, "")
	require.NoError(t, err)
	_, err = r.RecordOrder(ctx, 1, []CartLine{{ID: 2}}, "")
	require.NoError(t, err)

	mine, err := r.ListOrdersForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, int64(1), o.UserID)
	}
	assert.Greater(t, mine[0].OrderID, mine[1].OrderID)

	none, err := r.ListOrdersForUser(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
