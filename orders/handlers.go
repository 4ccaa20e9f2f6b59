package orders

import (
	"net/http"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// Handlers exposes checkout and order history. All routes require a bearer token.
type Handlers struct {
	reconciler *Reconciler
}

// NewHandlers creates new Handlers.
func NewHandlers(reconciler *Reconciler) *Handlers {
	return &Handlers{reconciler: reconciler}
}

// decodeCart reads a JSON body; an undecodable body is reported as an invalid cart.
func decodeCart(r *http.Request, dst any) error {
	if err := auth.DecodeJSON(r, dst); err != nil {
		if ae, ok := apperror.FromError(err); ok {
			return apperror.NewValidationError("Cart is empty or invalid.", ae).WithCode(apperror.CodeInvalidCart)
		}
		return err
	}
	return nil
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewInternalError("identity missing from request context", nil))
	}
	return id, ok
}

// HandleCreatePaymentIntent godoc
// @Summary Create a payment intent
// @Description Prices the cart from the catalog and creates a payment intent for the total.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param body body orders.CreatePaymentIntentRequest true "Cart"
// @Success 200 {object} orders.PaymentIntentResponse
// @Failure 400 {object} apperror.ErrorResponse "Empty cart or unknown product"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse "Payment provider failure"
// @Security BearerAuth
// @Router /create-payment-intent [post]
func (h *Handlers) HandleCreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req CreatePaymentIntentRequest
		if err := decodeCart(r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		intent, err := h.reconciler.CreatePaymentIntent(r.Context(), userID, req.Cart)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, PaymentIntentResponse{
			ClientSecret:    intent.ClientSecret,
			PaymentIntentID: intent.ID,
		})
	}
}

// HandleCreateOrder godoc
// @Summary Record an order
// @Description Recomputes the cart from the catalog, confirms the payment and stores the order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param body body orders.CreateOrderRequest true "Cart and payment intent"
// @Success 201 {object} orders.CreateOrderResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Payment already recorded"
// @Security BearerAuth
// @Router /orders [post]
func (h *Handlers) HandleCreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req CreateOrderRequest
		if err := decodeCart(r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		order, err := h.reconciler.RecordOrder(r.Context(), userID, req.Cart, req.PaymentIntentID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, CreateOrderResponse{
			Message: "Order created successfully",
			Order:   order,
		})
	}
}

// HandleListOrders godoc
// @Summary Order history
// @Description The caller's orders, newest first.
// @Tags Orders
// @Produce json
// @Success 200 {array} orders.Order
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /orders [get]
func (h *Handlers) HandleListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		orders, err := h.reconciler.ListOrdersForUser(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, orders)
	}
}
