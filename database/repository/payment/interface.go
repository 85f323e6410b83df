package paymentRepo

import (
	"brandconnect/models"
	"context"
	"errors"
)

// ErrIntentFinalized is returned when an intent already carries a payment.
var ErrIntentFinalized = errors.New("payment intent already finalized")

// ErrAlreadyAttached is returned when a payment belongs to another booking.
var ErrAlreadyAttached = errors.New("payment already belongs to a booking")

// PaymentRepository stores intents and the append-only payment history.
type PaymentRepository interface {
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error)
	// SetIntentStatus moves an intent that has no payment yet. It returns
	// ErrIntentFinalized once a payment is linked.
	SetIntentStatus(ctx context.Context, id string, status models.IntentStatus) error
	// FinalizeIntent stores the terminal payment of an intent and links it,
	// atomically. It fails if the intent already has a payment.
	FinalizeIntent(ctx context.Context, intentID string, status models.IntentStatus, payment *models.Payment) error
	// CreatePayment appends a record that is not tied to intent finalization (refunds).
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	// ListByBooking returns a booking's payments oldest first.
	ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error)
	// RefundedTotal sums the refunds recorded against paymentID.
	RefundedTotal(ctx context.Context, paymentID string) (int64, error)
	// AttachBooking claims the payment for bookingID. It is a no-op when the
	// payment already points at bookingID and fails with ErrAlreadyAttached
	// when it points elsewhere.
	AttachBooking(ctx context.Context, paymentID, bookingID string) error
	// DetachBooking releases a claim made for bookingID.
	DetachBooking(ctx context.Context, paymentID, bookingID string) error
}
