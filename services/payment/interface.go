package payment

import (
	"context"
	"fmt"
	"time"

	paymentRepo "brandconnect/database/repository/payment"
	"brandconnect/models"
	"brandconnect/utils"

	"go.uber.org/zap"
)

// PaymentService drives the intent, confirm and refund flow.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, payerID string, amount int64, currency string) (*models.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string, method models.PaymentMethod) (*models.Payment, error)
	ProcessRefund(ctx context.Context, paymentID string, amount *int64) (*models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	AttachBooking(ctx context.Context, paymentID, bookingID string) error
	DetachBooking(ctx context.Context, paymentID, bookingID string) error
	ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error)
}

// BookingPayments lets a refund move the paid booking to refunded.
type BookingPayments interface {
	SetPaymentStatus(ctx context.Context, bookingID string, status models.BookingPaymentStatus) (*models.Booking, error)
}

// Options bound outbound calls.
type Options struct {
	DefaultCurrency string
	CallTimeout     time.Duration
	ConfirmTimeout  time.Duration
}

// DefaultPaymentService is the production implementation.
type DefaultPaymentService struct {
	Repo     paymentRepo.PaymentRepository
	Gateway  PaymentGateway
	Locker   utils.Locker
	Logger   *zap.Logger
	Options  Options
	// Bookings is optional; without it refunds leave bookings untouched.
	Bookings BookingPayments

	now func() time.Time
}

func NewDefaultPaymentService(
	repo paymentRepo.PaymentRepository,
	gateway PaymentGateway,
	locker utils.Locker,
	logger *zap.Logger,
	opts Options,
) (*DefaultPaymentService, error) {
	if repo == nil || gateway == nil || locker == nil {
		return nil, fmt.Errorf("payment service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "TZS"
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 30 * time.Second
	}
	return &DefaultPaymentService{
		Repo:    repo,
		Gateway: gateway,
		Locker:  locker,
		Logger:  logger,
		Options: opts,
		now:     time.Now,
	}, nil
}
