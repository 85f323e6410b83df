package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "brandconnect/database/repository/booking"
	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"
	"brandconnect/utils"

	"go.uber.org/zap"
)

// BookingService owns the booking lifecycle.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	MarkPaid(ctx context.Context, id, paymentID string) (*models.Booking, error)
	SetPaymentStatus(ctx context.Context, id string, status models.BookingPaymentStatus) (*models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	AvailableSlots(ctx context.Context, creativeID, date string) ([]models.TimeSlot, error)
}

// PaymentLookup is the part of the payment service a booking needs.
type PaymentLookup interface {
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	// AttachBooking claims the payment for the booking and fails when another
	// booking holds it.
	AttachBooking(ctx context.Context, paymentID, bookingID string) error
	DetachBooking(ctx context.Context, paymentID, bookingID string) error
}

// Notifier is the part of the notification service a booking needs.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking models.Booking, creative, client models.User) models.DispatchResult
	CreateNotification(ctx context.Context, userID, notificationType, title, message string, data map[string]any) (*models.Notification, error)
}

// ReminderScheduler enqueues the pre-appointment reminder.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking models.Booking) error
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Users     userRepo.UserRepository
	Payments  PaymentLookup
	Notifier  Notifier
	Reminders ReminderScheduler
	Locker    utils.Locker
	Logger    *zap.Logger

	now func() time.Time
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	users userRepo.UserRepository,
	payments PaymentLookup,
	notifier Notifier,
	reminders ReminderScheduler,
	locker utils.Locker,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if repo == nil || users == nil || locker == nil {
		return nil, fmt.Errorf("booking service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:      repo,
		Users:     users,
		Payments:  payments,
		Notifier:  notifier,
		Reminders: reminders,
		Locker:    locker,
		Logger:    logger,
		now:       time.Now,
	}, nil
}
