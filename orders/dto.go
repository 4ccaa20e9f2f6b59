package orders

// CreatePaymentIntentRequest is the body of POST /api/create-payment-intent.
type CreatePaymentIntentRequest struct {
	Cart []CartLine `json:"cart"`
}

// PaymentIntentResponse hands the browser what it needs to confirm payment.
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret" example:"pi_3Nx_secret_abc"`
	PaymentIntentID string `json:"paymentIntentId" example:"pi_3Nx"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Cart            []CartLine `json:"cart"`
	PaymentIntentID string     `json:"paymentIntentId" example:"pi_3Nx"`
}

// CreateOrderResponse wraps the recorded order.
type CreateOrderResponse struct {
	Message string `json:"message" example:"Order created successfully"`
	Order   *Order `json:"order"`
}
