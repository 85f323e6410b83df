package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "brandconnect/database/repository/notification"
	userRepo "brandconnect/database/repository/user"
	"brandconnect/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// NotificationService dispatches email, SMS, push and in-app notifications.
// Channel failures are logged and reported as false; they never propagate.
type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, content string) bool
	SendSMS(ctx context.Context, to, message string) bool
	SendBookingConfirmation(ctx context.Context, booking models.Booking, creative, client models.User) models.DispatchResult
	SendPaymentReceipt(ctx context.Context, payment models.Payment, client models.User) bool
	SendReminder(ctx context.Context, booking models.Booking, creative, client models.User) bool
	CreateNotification(ctx context.Context, userID, notificationType, title, message string, data map[string]any) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (*models.Notification, error)
}

// EmailSender is satisfied by *ses.Client.
type EmailSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by *sns.Client.
type SMSSender interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Pusher is satisfied by *messaging.Client.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Options struct {
	EmailFrom   string
	SMSSenderID string
	Timeout     time.Duration
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo   notificationRepo.NotificationRepository
	users  userRepo.UserRepository
	email  EmailSender
	sms    SMSSender
	push   Pusher
	logger *zap.Logger
	opts   Options

	now func() time.Time
}

// NewDefaultNotificationService builds the service. push may be nil, in
// which case in-app notifications are stored without a device push.
func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
	email EmailSender,
	sms SMSSender,
	push Pusher,
	logger *zap.Logger,
	opts Options,
) (*DefaultNotificationService, error) {
	if repo == nil || users == nil || email == nil || sms == nil {
		return nil, fmt.Errorf("notification service initialization error: one or more dependencies are nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.EmailFrom == "" {
		opts.EmailFrom = "noreply@brandconnect.co.tz"
	}
	if opts.SMSSenderID == "" {
		opts.SMSSenderID = "BrandConnect"
	}
	return &DefaultNotificationService{
		repo:   repo,
		users:  users,
		email:  email,
		sms:    sms,
		push:   push,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}, nil
}
