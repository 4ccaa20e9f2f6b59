package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/catalog"
	"github.com/user/storefront-go/payment"
)

// Reconciler turns a client cart into a trusted total, a payment intent and
// finally an order. Every price comes from the catalog; the caller id
// always comes from the verified token.
type Reconciler struct {
	products            ProductLookup
	gateway             payment.Gateway
	store               Store
	notifier            Notifier
	currency            string
	requireConfirmation bool
	now                 func() time.Time
	logger              *slog.Logger
}

// Options configures a Reconciler.
type Options struct {
	Currency string
	// RequireConfirmation makes RecordOrder fetch the payment intent and
	// check that it succeeded for the recomputed amount and this caller.
	RequireConfirmation bool
	Notifier            Notifier
}

// NewReconciler creates a Reconciler.
func NewReconciler(products ProductLookup, gateway payment.Gateway, store Store, opts Options, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		products:            products,
		gateway:             gateway,
		store:               store,
		notifier:            opts.Notifier,
		currency:            strings.ToLower(opts.Currency),
		requireConfirmation: opts.RequireConfirmation,
		now:                 time.Now,
		logger:              logger,
	}
}

// WithClock replaces the time source; used by tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// pricedCart is a cart resolved against the catalog.
type pricedCart struct {
	items  []LineItem
	total  decimal.Decimal
	amount int64
}

func invalidCart(msg string) error {
	return apperror.NewValidationError(msg, nil).WithCode(apperror.CodeInvalidCart)
}

func unknownProduct(id int64) error {
	return apperror.NewValidationError(fmt.Sprintf("Product with ID %d not found.", id), nil).
		WithCode(apperror.CodeUnknownProduct)
}

// price resolves every line through the catalog. It stops at the first
// unknown product.
func (r *Reconciler) price(ctx context.Context, cart []CartLine) (*pricedCart, error) {
	if len(cart) == 0 {
		return nil, invalidCart("Cart is empty or invalid.")
	}

	pc := &pricedCart{items: make([]LineItem, 0, len(cart)), total: decimal.Zero}
	for _, line := range cart {
		// Ids are never issued below 1.
		if line.ID <= 0 {
			return nil, unknownProduct(line.ID)
		}
		p, err := r.products.Get(ctx, line.ID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, unknownProduct(line.ID)
			}
			return nil, apperror.NewDatabaseError("Catalog lookup failed.", err)
		}
		pc.items = append(pc.items, LineItem{ProductID: p.ID, Name: p.Name, Price: p.Price})
		pc.total = pc.total.Add(p.Price)
	}
	pc.amount = ToMinorUnits(pc.total)
	return pc, nil
}

// CreatePaymentIntent prices the cart and asks the gateway for an intent.
// Nothing is stored.
func (r *Reconciler) CreatePaymentIntent(ctx context.Context, callerID int64, cart []CartLine) (*payment.Intent, error) {
	pc, err := r.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	intent, err := r.gateway.CreateIntent(ctx, payment.IntentRequest{
		Amount:         pc.amount,
		Currency:       r.currency,
		UserID:         callerID,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, gatewayFailure(err)
	}
	return intent, nil
}

// RecordOrder recomputes the cart, optionally confirms the payment and
// stores the order.
func (r *Reconciler) RecordOrder(ctx context.Context, callerID int64, cart []CartLine, paymentIntentID string) (*Order, error) {
	pc, err := r.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if r.requireConfirmation {
		if err := r.confirm(ctx, callerID, pc, paymentIntentID); err != nil {
			return nil, err
		}
	}

	order, err := r.store.Create(ctx, Order{
		UserID:          callerID,
		LineItems:       pc.items,
		Total:           pc.total,
		PaymentIntentID: paymentIntentID,
		CreatedAt:       r.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePaymentIntent) {
			return nil, apperror.NewConflictError("An order for this payment already exists.", err).
				WithCode(apperror.CodePaymentAlreadyRecorded)
		}
		return nil, apperror.NewDatabaseError("Failed to record order.", err)
	}

	r.logger.InfoContext(ctx, "order recorded",
		"order_id", order.OrderID,
		"user_id", callerID,
		"total", order.Total.String(),
		"payment_intent_id", order.PaymentIntentID,
	)
	if r.notifier != nil {
		r.notifier.OrderCreated(ctx, *order)
	}
	return order, nil
}

// confirm checks that the intent was paid, by this caller, for exactly the
// recomputed amount.
func (r *Reconciler) confirm(ctx context.Context, callerID int64, pc *pricedCart, intentID string) error {
	notConfirmed := func(msg string) error {
		return apperror.NewValidationError(msg, nil).WithCode(apperror.CodePaymentNotConfirmed)
	}

	if intentID == "" {
		return notConfirmed("paymentIntentId is required.")
	}

	intent, err := r.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return gatewayFailure(err)
	}

	switch {
	case intent.Status != payment.StatusSucceeded:
		return notConfirmed("Payment has not succeeded.")
	case intent.Amount != pc.amount || !strings.EqualFold(intent.Currency, r.currency):
		r.logger.WarnContext(ctx, "payment amount mismatch",
			"payment_intent_id", intentID,
			"paid", intent.Amount,
			"expected", pc.amount,
			"currency", intent.Currency,
		)
		return notConfirmed("Payment amount does not match the cart total.")
	case intent.Metadata[payment.MetadataUserID] != strconv.FormatInt(callerID, 10):
		return notConfirmed("Payment does not belong to this account.")
	}
	return nil
}

// ListOrdersForUser returns the caller's orders, newest first.
func (r *Reconciler) ListOrdersForUser(ctx context.Context, callerID int64) ([]Order, error) {
	orders, err := r.store.ListByUser(ctx, callerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("Failed to load orders.", err)
	}
	return orders, nil
}

func gatewayFailure(err error) error {
	if pe, ok := payment.AsError(err); ok {
		return apperror.NewGatewayError(pe.Message, err)
	}
	return apperror.NewGatewayError("Payment provider unavailable.", err)
}
