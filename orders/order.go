// Package orders prices carts against the catalog, creates payment intents
// and records orders once payment is confirmed.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/user/storefront-go/catalog"
)

var ErrDuplicatePaymentIntent = errors.New("payment intent already backs an order")

// CartLine is one unit of a product. Anything else the client sends with
// it (price, name) is ignored.
type CartLine struct {
	ID int64 `json:"id" example:"1"`
}

// LineItem is a product as it was priced when the order was placed.
type LineItem struct {
	ProductID int64           `json:"productId" example:"1"`
	Name      string          `json:"name" example:"Laptop Pro"`
	Price     decimal.Decimal `json:"price" swaggertype:"number" example:"1200"`
}

// Order is an immutable record of a checkout.
type Order struct {
	OrderID         int64           `json:"orderId" example:"1"`
	UserID          int64           `json:"userId" example:"2"`
	LineItems       []LineItem      `json:"lineItems"`
	Total           decimal.Decimal `json:"total" swaggertype:"number" example:"1225"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty" example:"pi_3Nx..."`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Store persists orders. Create assigns OrderID; a payment intent id may
// back at most one order.
type Store interface {
	Create(ctx context.Context, o Order) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}

// ProductLookup resolves cart lines against the trusted catalog.
type ProductLookup interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
}

// Notifier is told about every recorded order.
type Notifier interface {
	OrderCreated(ctx context.Context, o Order)
}
