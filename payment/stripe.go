package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway implements Gateway with the Stripe PaymentIntents API.
type StripeGateway struct {
	client paymentintent.Client
	logger *slog.Logger
}

// NewStripeGateway creates a client authenticated with secretKey. apiURL
// overrides the Stripe endpoint (stripe-mock, tests); empty keeps the default.
// Requests are never retried.
func NewStripeGateway(secretKey, apiURL string, logger *slog.Logger) *StripeGateway {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &leveledLogger{logger: logger},
	}
	if apiURL != "" {
		cfg.URL = stripe.String(apiURL)
	}

	return &StripeGateway{
		client: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
			Key: secretKey,
		},
		logger: logger,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, strconv.FormatInt(req.UserID, 10))
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.client.New(params)
	if err != nil {
		return nil, g.wrap("create payment intent", err)
	}

	g.logger.InfoContext(ctx, "payment intent created",
		"payment_intent_id", pi.ID,
		"amount", pi.Amount,
		"currency", pi.Currency,
		"user_id", req.UserID,
	)
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.client.Get(id, params)
	if err != nil {
		return nil, g.wrap("get payment intent", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) wrap(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = fmt.Sprintf("payment provider error (%s)", se.Type)
		}
		return &Error{Message: msg, Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &Error{Message: "Payment provider unavailable.", Err: fmt.Errorf("%s: %w", op, err)}
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}

// leveledLogger routes stripe-go's own logging into slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "stripe")
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "stripe")
}
