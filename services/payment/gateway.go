package payment

import (
	"brandconnect/models"
	"context"
	"errors"
	"fmt"
)

// ErrMethodTokenRequired is returned before any charge is attempted when the
// method carries no processor token. Every method type needs one: the client
// collects card, mobile money and bank details through the processor's SDK.
var ErrMethodTokenRequired = errors.New("payment method token required")

// GatewayIntent is the gateway's view of a freshly created intent.
type GatewayIntent struct {
	Ref          string
	ClientSecret string
}

// PaymentGateway is the external processor. Implementations must treat the
// intent id as the idempotency key for every call about that intent.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, intentID string, amount int64, currency string) (GatewayIntent, error)
	// ConfirmIntent returns the gateway transaction id of a successful charge,
	// a *DeclinedError for a definitive decline, ErrMethodTokenRequired when
	// nothing was attempted, or any other error when the outcome is unknown.
	ConfirmIntent(ctx context.Context, intent models.PaymentIntent, method models.PaymentMethod) (string, error)
	// Refund returns the gateway reference of the refund.
	Refund(ctx context.Context, original models.Payment, amount int64, idempotencyKey string) (string, error)
}

// DeclinedError is a definitive rejection by the processor.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("declined: %s", e.Reason)
}
