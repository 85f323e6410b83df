package models

import "time"

type PaymentMethodType string

const (
	MethodCard         PaymentMethodType = "card"
	MethodMobileMoney  PaymentMethodType = "mobile_money"
	MethodBankTransfer PaymentMethodType = "bank_transfer"
)

// PaymentStatus of a stored record. Records are written once the outcome is
// known; the in-flight part of an attempt lives on the intent.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// IntentStatus follows requires_payment_method -> processing -> succeeded |
// canceled. A confirm whose outcome is unknown leaves the intent at
// requires_confirmation so it can be confirmed again.
type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentProcessing            IntentStatus = "processing"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentCanceled              IntentStatus = "canceled"
)

// PaymentIntent is an opaque token for a charge that has not been finalized.
type PaymentIntent struct {
	ID           string       `bson:"id" json:"id"`
	PayerID      string       `bson:"payer_id" json:"payerId"`
	Amount       int64        `bson:"amount" json:"amount"`
	Currency     string       `bson:"currency" json:"currency"`
	Status       IntentStatus `bson:"status" json:"status"`
	ClientSecret string       `bson:"client_secret" json:"clientSecret"`
	GatewayRef   string       `bson:"gateway_ref,omitempty" json:"-"`
	PaymentID    string       `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	CreatedAt    time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updatedAt"`
}

// PaymentMethod is a tagged variant; only the fields of Type are meaningful.
type PaymentMethod struct {
	Type        PaymentMethodType `json:"type" binding:"required"`
	Last4       string            `json:"last4,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	BankName    string            `json:"bankName,omitempty"`

	// GatewayToken is the gateway's reference for the method collected client-side.
	GatewayToken string `json:"gatewayToken,omitempty"`
}

// Payment is a terminal record of a charge or refund. Records are never
// mutated once terminal, except for attaching the booking id.
type Payment struct {
	ID            string            `bson:"id" json:"id"`
	IntentID      string            `bson:"intent_id" json:"intentId"`
	BookingID     string            `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	PayerID       string            `bson:"payer_id" json:"payerId"`
	Amount        int64             `bson:"amount" json:"amount"`
	Currency      string            `bson:"currency" json:"currency"`
	Method        PaymentMethodType `bson:"method" json:"method"`
	Status        PaymentStatus     `bson:"status" json:"status"`
	TransactionID string            `bson:"transaction_id" json:"transactionId"`
	RefundOf      string            `bson:"refund_of,omitempty" json:"refundOf,omitempty"`
	FailureReason string            `bson:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updatedAt"`
}
