// Package payment talks to the payment provider. The rest of the
// application only sees the Gateway interface.
package payment

import (
	"context"
	"errors"
)

// StatusSucceeded is the provider status of a captured payment.
const StatusSucceeded = "succeeded"

// MetadataUserID tags each intent with the account that created it.
const MetadataUserID = "user_id"

// IntentRequest describes a payment intent to create. Amount is in the
// currency's minor unit (cents).
type IntentRequest struct {
	Amount         int64
	Currency       string
	UserID         int64
	IdempotencyKey string
}

// Intent is the provider's view of a payment.
// ClientSecret is handed to the browser once and never logged.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// Gateway creates and reads payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// Error is a failure reported by the provider. Message is the provider's
// own text and is safe to show to the client.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// AsError returns the provider error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
