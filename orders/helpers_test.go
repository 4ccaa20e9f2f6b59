package orders

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/user/storefront-go/catalog"
	"github.com/user/storefront-go/payment"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockGateway records calls; behaviour is set per test through the func fields.
type mockGateway struct {
	mu         sync.Mutex
	created    []payment.IntentRequest
	fetched    []string
	CreateFunc func(req payment.IntentRequest) (*payment.Intent, error)
	GetFunc    func(id string) (*payment.Intent, error)
}

func (m *mockGateway) CreateIntent(_ context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(req)
	}
	return &payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Amount: req.Amount, Currency: req.Currency}, nil
}

func (m *mockGateway) GetIntent(_ context.Context, id string) (*payment.Intent, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, id)
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return nil, &payment.Error{Message: "No such payment_intent: '" + id + "'"}
}

// recordingNotifier collects published orders.
type recordingNotifier struct {
	mu     sync.Mutex
	orders []Order
}

func (n *recordingNotifier) OrderCreated(_ context.Context, o Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

// testCatalog has A at 10.00 and B at 5.005.
func testCatalog() *catalog.MemoryStore {
	return catalog.NewMemoryStore(
		catalog.Product{Name: "A", Price: decimal.RequireFromString("10.00")},
		catalog.Product{Name: "B", Price: decimal.RequireFromString("5.005")},
	)
}

// succeededIntent is what the gateway reports for a paid cart.
func succeededIntent(id string, amount int64, userID string) *payment.Intent {
	return &payment.Intent{
		ID:       id,
		Amount:   amount,
		Currency: "usd",
		Status:   payment.StatusSucceeded,
		Metadata: map[string]string{payment.MetadataUserID: userID},
	}
}
